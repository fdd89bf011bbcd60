package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hiroki-koketsu/kanban-board/internal/identity"
)

// Task is a unit of work on the board.
type Task struct {
	ID          string    `json:"guid" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	DueDate     Date      `json:"duedate"`
	Category    Category  `json:"category" validate:"oneof='technical task' 'user story'"`
	Priority    Priority  `json:"prio" validate:"oneof=low medium urgent"`
	State       State     `json:"state" validate:"oneof=ToDo InProgress AwaitFeedback Done"`
	AssignedTo  []string  `json:"assignedto" validate:"unique"`
	Subtasks    []Subtask `json:"subtasks" validate:"unique=ID"`
}

// Subtask is a checklist item owned by exactly one task.
type Subtask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// NewTask returns an empty task with a fresh id and the board defaults.
func NewTask() *Task {
	return &Task{
		ID:         identity.NewID(),
		Category:   CategoryUserStory,
		Priority:   PriorityMedium,
		State:      StateToDo,
		AssignedTo: []string{},
		Subtasks:   []Subtask{},
	}
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.AssignedTo = append([]string{}, t.AssignedTo...)
	c.Subtasks = append([]Subtask{}, t.Subtasks...)
	return &c
}

// Empty reports whether t carries nothing a repository could store.
func (t *Task) Empty() bool {
	return t == nil || t.ID == ""
}

// SetCategory changes the category. The display label is always derived
// from it via Category.Label.
func (t *Task) SetCategory(c Category) {
	t.Category = c
}

// IsAssigned reports whether contactID is assigned to t.
func (t *Task) IsAssigned(contactID string) bool {
	for _, id := range t.AssignedTo {
		if id == contactID {
			return true
		}
	}
	return false
}

// ToggleAssignee removes contactID if present, otherwise appends it.
func (t *Task) ToggleAssignee(contactID string) {
	for i, id := range t.AssignedTo {
		if id == contactID {
			t.AssignedTo = append(t.AssignedTo[:i:i], t.AssignedTo[i+1:]...)
			return
		}
	}
	t.AssignedTo = append(t.AssignedTo, contactID)
}

// AddSubtask appends an open subtask and returns it.
func (t *Task) AddSubtask(title string) Subtask {
	st := Subtask{ID: identity.NewID(), Title: title}
	t.Subtasks = append(t.Subtasks, st)
	return st
}

// DeleteSubtask removes the subtask at index. Later subtasks move down one
// position, so indices held by callers are stale afterwards.
func (t *Task) DeleteSubtask(index int) error {
	if index < 0 || index >= len(t.Subtasks) {
		return ErrSubtaskIndex
	}
	t.Subtasks = append(t.Subtasks[:index:index], t.Subtasks[index+1:]...)
	return nil
}

// RenameSubtask sets the title of the subtask at index. An empty title
// leaves the subtask unchanged.
func (t *Task) RenameSubtask(index int, title string) error {
	if index < 0 || index >= len(t.Subtasks) {
		return ErrSubtaskIndex
	}
	if title != "" {
		t.Subtasks[index].Title = title
	}
	return nil
}

// ToggleSubtask flips the done flag of the subtask at index.
func (t *Task) ToggleSubtask(index int) error {
	if index < 0 || index >= len(t.Subtasks) {
		return ErrSubtaskIndex
	}
	t.Subtasks[index].Done = !t.Subtasks[index].Done
	return nil
}

// FillSubtaskIDs gives every subtask without an id a fresh one. Documents
// written before subtasks carried ids decode with blank ids.
func (t *Task) FillSubtaskIDs() {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == "" {
			t.Subtasks[i].ID = identity.NewID()
		}
	}
}

// SubtaskProgress returns the number of finished subtasks and the total.
func (t *Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Done {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// Matches reports whether filter occurs in the title or description,
// ignoring case. An empty filter matches every task.
func (t *Task) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	haystack := strings.ToLower(t.Title + t.Description)
	return strings.Contains(haystack, strings.ToLower(filter))
}

var validate = validator.New()

// Validate checks the fields the task form enforces.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if err := validate.Struct(t); err != nil {
		return TaskError{Message: err.Error()}
	}
	return nil
}

// UnmarshalJSON fills in defaults for fields older documents leave out.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	p := plain{
		Category: CategoryUserStory,
		Priority: PriorityMedium,
		State:    StateToDo,
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.AssignedTo = dedupe(p.AssignedTo)
	if p.Subtasks == nil {
		p.Subtasks = []Subtask{}
	}
	*t = Task(p)
	return nil
}

// dedupe drops repeated ids, keeping the first occurrence. The result is
// never nil.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// UnmarshalJSON accepts done as a boolean or as the strings "true"/"false".
func (s *Subtask) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    string          `json:"id"`
		Title string          `json:"title"`
		Done  json.RawMessage `json:"done"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ID = raw.ID
	s.Title = raw.Title
	s.Done = false
	switch d := bytes.TrimSpace(raw.Done); {
	case len(d) == 0, bytes.Equal(d, []byte("null")):
	case d[0] == '"':
		var str string
		if err := json.Unmarshal(d, &str); err != nil {
			return err
		}
		s.Done = str == "true"
	default:
		if err := json.Unmarshal(d, &s.Done); err != nil {
			return err
		}
	}
	return nil
}

// TaskError represents a domain error for tasks.
type TaskError struct {
	Message string
}

func (e TaskError) Error() string {
	return e.Message
}

var (
	ErrTaskNotFound    = TaskError{Message: "task not found"}
	ErrTitleRequired   = TaskError{Message: "title is required"}
	ErrInvalidState    = TaskError{Message: "invalid task state"}
	ErrInvalidPriority = TaskError{Message: "invalid priority"}
	ErrInvalidCategory = TaskError{Message: "invalid category"}
	ErrSubtaskIndex    = TaskError{Message: "subtask index out of range"}
)
