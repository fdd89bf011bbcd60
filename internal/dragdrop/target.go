package dragdrop

import (
	"strings"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
)

// Kind tells what sort of element a drop target is.
type Kind int

const (
	// KindNone is not a drop target.
	KindNone Kind = iota
	// KindColumn is a board column.
	KindColumn
	// KindTask is a card already on the board. Dropping onto it places the
	// dragged task in the card's column.
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindColumn:
		return "column"
	case KindTask:
		return "task"
	}
	return "none"
}

// TaskElementPrefix starts the identity of every card element.
const TaskElementPrefix = "task-"

// Target is a resolved drop target. The column it stands for is fixed when
// the target is created, so a drop never inspects element identities.
type Target struct {
	Kind   Kind
	State  model.State
	TaskID string
}

// Column returns the target for a board column.
func Column(s model.State) Target {
	return Target{Kind: KindColumn, State: s}
}

// Valid reports whether a drop onto t is allowed.
func (t Target) Valid() bool {
	return t.Kind != KindNone
}

// ParseTarget resolves an element identity, optionally followed by its
// parent's identity, into a Target. Column identities name their column
// ("container-column-done"). Card identities start with "task-"; a card
// resolves to the column named in the rest of the identity, or ToDo.
// Anything else is not a drop target.
func ParseTarget(identity string) Target {
	if state, ok := model.MatchTarget(identity); ok && !strings.HasPrefix(identity, TaskElementPrefix) {
		return Column(state)
	}
	if rest, ok := strings.CutPrefix(identity, TaskElementPrefix); ok {
		id, _, _ := strings.Cut(rest, "container")
		return Target{Kind: KindTask, State: model.ResolveTarget(rest), TaskID: id}
	}
	if strings.Contains(identity, TaskElementPrefix) {
		return Target{Kind: KindTask, State: model.ResolveTarget(identity)}
	}
	return Target{}
}
