// Package session holds the task being created or edited by one user.
//
// Each form gets its own Session, so two forms (or two tests) never share
// a draft.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/markusmobius/go-dateparser"
)

// Mode tells whether Submit adds a new task or replaces a stored one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Tasks is where a session saves its draft.
type Tasks interface {
	Add(ctx context.Context, task *model.Task) (bool, error)
	Replace(ctx context.Context, task *model.Task) (bool, error)
}

// Session is an edit context around one draft task.
type Session struct {
	tasks Tasks
	draft *model.Task
	mode  Mode
	now   func() time.Time
}

// New starts a session for a new task.
func New(tasks Tasks) *Session {
	return &Session{tasks: tasks, draft: model.NewTask(), mode: ModeCreate, now: time.Now}
}

// Edit starts a session on a copy of a stored task.
func Edit(tasks Tasks, task *model.Task) *Session {
	return &Session{tasks: tasks, draft: task.Clone(), mode: ModeEdit, now: time.Now}
}

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.mode }

// Task returns a copy of the draft.
func (s *Session) Task() *model.Task { return s.draft.Clone() }

func (s *Session) SetTitle(title string) {
	s.draft.Title = strings.TrimSpace(title)
}

func (s *Session) SetDescription(description string) {
	s.draft.Description = description
}

// SetCategory accepts the stored value or the display label.
func (s *Session) SetCategory(category string) error {
	c, err := model.ParseCategory(category)
	if err != nil {
		return err
	}
	s.draft.SetCategory(c)
	return nil
}

func (s *Session) SetPriority(priority string) error {
	p, err := model.ParsePriority(priority)
	if err != nil {
		return err
	}
	s.draft.Priority = p
	return nil
}

// SetState presets the column, as when a task is added from a column
// header.
func (s *Session) SetState(state model.State) error {
	if !state.Valid() {
		return model.ErrInvalidState
	}
	s.draft.State = state
	return nil
}

// SetDueDate parses yyyy-mm-dd, dd/mm/yyyy or a natural language date such
// as "next friday". An empty string clears the due date.
func (s *Session) SetDueDate(text string) error {
	text = strings.TrimSpace(text)
	if d, err := model.ParseDate(text); err == nil {
		s.draft.DueDate = d
		return nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: s.now(),
	}
	result, err := dateparser.Parse(cfg, text)
	if err != nil || result.Time.IsZero() {
		return fmt.Errorf("could not parse due date %q", text)
	}
	s.draft.DueDate = model.NewDate(result.Time)
	return nil
}

func (s *Session) ToggleAssignee(contactID string) {
	s.draft.ToggleAssignee(contactID)
}

// AddSubtask appends a subtask. Blank titles are ignored.
func (s *Session) AddSubtask(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	s.draft.AddSubtask(title)
}

func (s *Session) DeleteSubtask(index int) error {
	return s.draft.DeleteSubtask(index)
}

func (s *Session) RenameSubtask(index int, title string) error {
	return s.draft.RenameSubtask(index, strings.TrimSpace(title))
}

// ToggleSubtask flips a subtask. In edit mode the task is saved at once,
// as the preview checkbox does.
func (s *Session) ToggleSubtask(ctx context.Context, index int) error {
	if err := s.draft.ToggleSubtask(index); err != nil {
		return err
	}
	if s.mode != ModeEdit {
		return nil
	}
	ok, err := s.tasks.Replace(ctx, s.draft)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrTaskNotFound
	}
	return nil
}

// Submit validates the draft and saves it. Subtasks without an id get one
// first. After a successful create the session switches to edit mode.
func (s *Session) Submit(ctx context.Context) (*model.Task, error) {
	s.draft.FillSubtaskIDs()
	if err := s.draft.Validate(); err != nil {
		return nil, err
	}

	var ok bool
	var err error
	if s.mode == ModeCreate {
		ok, err = s.tasks.Add(ctx, s.draft)
	} else {
		ok, err = s.tasks.Replace(ctx, s.draft)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrTaskNotFound
	}

	s.mode = ModeEdit
	return s.draft.Clone(), nil
}
