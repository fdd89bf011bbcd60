package model

import (
	"encoding/json"
	"strings"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority accepts any casing of low, medium or urgent.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityUrgent:
		return p, nil
	}
	return "", ErrInvalidPriority
}

// Category of a task.
type Category string

const (
	CategoryTechnicalTask Category = "technical task"
	CategoryUserStory     Category = "user story"
)

// ParseCategory accepts the stored value or the display label.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryTechnicalTask, CategoryUserStory:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// Label is the human readable form of the category.
func (c Category) Label() string {
	switch c {
	case CategoryTechnicalTask:
		return "Technical Task"
	case CategoryUserStory:
		return "User Story"
	}
	return ""
}

// UnmarshalJSON normalises the category, so "User Story" and "user story"
// decode to the same value.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*c = CategoryUserStory
		return nil
	}
	parsed, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalJSON normalises the priority; a missing value means medium.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*p = PriorityMedium
		return nil
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
