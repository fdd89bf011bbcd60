package model

import (
	"strings"

	"github.com/hiroki-koketsu/kanban-board/internal/identity"
)

// Contact is a person tasks can be assigned to. Contacts are owned by the
// contact directory; the board reads them and can only add new ones.
type Contact struct {
	ID        string `json:"guid"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Color     string `json:"color"`
	IsGuest   bool   `json:"isguest"`
}

// NewContact returns a contact with a fresh id and a random avatar colour.
func NewContact(first, last string) *Contact {
	return &Contact{
		ID:        identity.NewID(),
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
		Color:     identity.RandomColor(),
	}
}

// Name is the full display name.
func (c *Contact) Name() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Initials for the avatar circle.
func (c *Contact) Initials() string {
	if c == nil {
		return "??"
	}
	return identity.Initials(c.FirstName, c.LastName, c.IsGuest)
}

// AvatarColor returns the stored colour, or a stable palette colour for
// contacts saved without one.
func (c *Contact) AvatarColor() string {
	if c.Color != "" {
		return c.Color
	}
	return identity.ColorFor(c.ID)
}
