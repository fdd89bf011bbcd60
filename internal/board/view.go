package board

import (
	"github.com/hiroki-koketsu/kanban-board/internal/model"
)

// MaxAvatars is how many assignee avatars a card shows before collapsing
// the rest into an overflow marker.
const MaxAvatars = 3

// View is one rendering of the board. Column membership is computed from
// task state every time a View is built; nothing else records it.
type View struct {
	Filter  string   `json:"filter"`
	Columns []Column `json:"columns"`
}

// Column holds the cards of one workflow state, in collection order.
type Column struct {
	State model.State `json:"state"`
	Label string      `json:"label"`
	Cards []Card      `json:"cards"`
}

// Card is the board projection of a task.
type Card struct {
	Task          model.Task `json:"task"`
	CategoryLabel string     `json:"category_label"`
	Avatars       []Avatar   `json:"avatars"`
	Overflow      bool       `json:"overflow"`
	SubtasksDone  int        `json:"subtasks_done"`
	SubtasksTotal int        `json:"subtasks_total"`
	CanAdvance    bool       `json:"can_advance"`
	CanRetreat    bool       `json:"can_retreat"`
}

// Avatar is an assignee circle.
type Avatar struct {
	ContactID string `json:"contact_id"`
	Initials  string `json:"initials"`
	Color     string `json:"color"`
}

// Column returns the column for state s.
func (v View) Column(s model.State) Column {
	for _, c := range v.Columns {
		if c.State == s {
			return c
		}
	}
	return Column{State: s, Label: s.Label(), Cards: []Card{}}
}

// Partition splits tasks into the four workflow columns. Assignees are
// resolved against contacts; ids with no matching contact are skipped.
func Partition(tasks []model.Task, contacts []model.Contact, filter string) View {
	byID := make(map[string]*model.Contact, len(contacts))
	for i := range contacts {
		byID[contacts[i].ID] = &contacts[i]
	}

	v := View{Filter: filter, Columns: make([]Column, len(model.States))}
	for i, s := range model.States {
		v.Columns[i] = Column{State: s, Label: s.Label(), Cards: []Card{}}
	}
	for _, t := range tasks {
		i := t.State.Index()
		if i < 0 {
			continue
		}
		v.Columns[i].Cards = append(v.Columns[i].Cards, newCard(t, byID))
	}
	return v
}

func newCard(t model.Task, contacts map[string]*model.Contact) Card {
	done, total := t.SubtaskProgress()
	c := Card{
		Task:          t,
		CategoryLabel: t.Category.Label(),
		Avatars:       []Avatar{},
		SubtasksDone:  done,
		SubtasksTotal: total,
		CanAdvance:    t.State.HasNext(),
		CanRetreat:    t.State.HasPrev(),
	}
	for _, id := range t.AssignedTo {
		contact, ok := contacts[id]
		if !ok {
			continue
		}
		if len(c.Avatars) == MaxAvatars {
			c.Overflow = true
			break
		}
		c.Avatars = append(c.Avatars, Avatar{
			ContactID: id,
			Initials:  contact.Initials(),
			Color:     contact.AvatarColor(),
		})
	}
	return c
}
