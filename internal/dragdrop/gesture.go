// Package dragdrop implements the drag gesture that moves a task card
// between board columns.
package dragdrop

import (
	"context"
	"errors"
	"fmt"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
)

// Phase is where a gesture is in its lifecycle.
type Phase int

const (
	Idle Phase = iota
	Dragging
	HoverValid
	HoverInvalid
	Dropped
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case HoverValid:
		return "hover-valid"
	case HoverInvalid:
		return "hover-invalid"
	case Dropped:
		return "dropped"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

var (
	ErrNoGesture     = errors.New("no drag gesture in progress")
	ErrGestureActive = errors.New("a drag gesture is already in progress")
)

// Point is a pointer position in page coordinates.
type Point struct {
	X, Y int
}

// GhostOffset keeps the drag image just below and right of the pointer.
var GhostOffset = Point{X: 5, Y: 5}

// Ghost is the synthetic full-size drag image.
type Ghost interface {
	MoveTo(p Point)
}

// Surface is the display the gesture draws on.
type Surface interface {
	// Ghost creates the drag image for a card.
	Ghost(taskID string) Ghost
	// Remove takes a drag image off the display.
	Remove(g Ghost)
	// SetOpacity fades the source card out while it is dragged.
	SetOpacity(taskID string, opacity float64)
}

// Mover persists the result of a gesture.
type Mover interface {
	MoveTo(ctx context.Context, id string, state model.State) (*model.Task, error)
	Refresh(ctx context.Context) error
}

// Outcome reports how a gesture ended.
type Outcome struct {
	Phase  Phase
	TaskID string
	State  model.State
}

// Gesture tracks one drag from pick-up to release. Events must arrive in
// order from one pointer; a Gesture is not safe for concurrent use.
type Gesture struct {
	mover   Mover
	surface Surface

	phase    Phase
	taskID   string
	target   Target
	ghost    Ghost
	dropDone bool
}

// NewGesture creates an idle gesture.
func NewGesture(m Mover, s Surface) *Gesture {
	return &Gesture{mover: m, surface: s}
}

// Phase returns the current phase.
func (g *Gesture) Phase() Phase {
	return g.phase
}

// TaskID returns the id carried by the drag payload.
func (g *Gesture) TaskID() string {
	return g.taskID
}

func (g *Gesture) active() bool {
	switch g.phase {
	case Dragging, HoverValid, HoverInvalid:
		return true
	}
	return false
}

// Start picks up the card of taskID.
func (g *Gesture) Start(taskID string) error {
	if g.active() {
		return ErrGestureActive
	}
	g.phase = Dragging
	g.taskID = taskID
	g.target = Target{}
	g.dropDone = false
	g.ghost = g.surface.Ghost(taskID)
	g.surface.SetOpacity(taskID, 0)
	return nil
}

// Move keeps the drag image under the pointer.
func (g *Gesture) Move(p Point) error {
	if !g.active() {
		return ErrNoGesture
	}
	if g.ghost != nil {
		g.ghost.MoveTo(Point{X: p.X + GhostOffset.X, Y: p.Y + GhostOffset.Y})
	}
	return nil
}

// Hover records the element under the pointer.
func (g *Gesture) Hover(t Target) error {
	if !g.active() {
		return ErrNoGesture
	}
	g.target = t
	if t.Valid() {
		g.phase = HoverValid
	} else {
		g.phase = HoverInvalid
	}
	return nil
}

// Release ends the gesture. Over a valid target the task is moved to the
// target's column; otherwise, or if saving fails, the gesture is cancelled.
// Cleanup always runs afterwards and leaves the gesture idle. The returned
// error is the save failure, if any.
func (g *Gesture) Release(ctx context.Context) (Outcome, error) {
	if !g.active() {
		return Outcome{}, ErrNoGesture
	}
	defer g.finish(ctx)

	if g.phase != HoverValid {
		g.phase = Cancelled
		return Outcome{Phase: Cancelled, TaskID: g.taskID}, nil
	}

	if _, err := g.mover.MoveTo(ctx, g.taskID, g.target.State); err != nil {
		g.phase = Cancelled
		return Outcome{Phase: Cancelled, TaskID: g.taskID}, err
	}
	g.phase = Dropped
	g.dropDone = true
	return Outcome{Phase: Dropped, TaskID: g.taskID, State: g.target.State}, nil
}

// Abort cancels the gesture, as when the drag is interrupted from outside.
func (g *Gesture) Abort(ctx context.Context) (Outcome, error) {
	if !g.active() {
		return Outcome{}, ErrNoGesture
	}
	defer g.finish(ctx)
	g.phase = Cancelled
	return Outcome{Phase: Cancelled, TaskID: g.taskID}, nil
}

// finish is the terminal step of every gesture. Without a completed drop
// the card is made visible again and the board is redrawn from the store,
// so the display never keeps a position the store does not have.
func (g *Gesture) finish(ctx context.Context) {
	if g.ghost != nil {
		g.surface.Remove(g.ghost)
		g.ghost = nil
	}
	if !g.dropDone {
		g.surface.SetOpacity(g.taskID, 1)
		// A failed redraw was already reported by the renderer.
		_ = g.mover.Refresh(ctx)
	}
	g.dropDone = false
	g.phase = Idle
	g.target = Target{}
}

// Run performs one complete gesture: pick up taskID, hover the element
// named identity and release.
func Run(ctx context.Context, m Mover, s Surface, taskID, identity string) (Outcome, error) {
	g := NewGesture(m, s)
	if err := g.Start(taskID); err != nil {
		return Outcome{}, err
	}
	if err := g.Hover(ParseTarget(identity)); err != nil {
		return Outcome{}, err
	}
	return g.Release(ctx)
}

// Headless is a Surface for gestures without a display, such as drops
// arriving over the API.
type Headless struct{}

type headlessGhost struct{}

func (headlessGhost) MoveTo(Point) {}

func (Headless) Ghost(string) Ghost         { return headlessGhost{} }
func (Headless) Remove(Ghost)               {}
func (Headless) SetOpacity(string, float64) {}
