// Package board runs the workflow transitions of the task board and keeps
// the rendered board in step with the store.
package board

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/kanban-board/internal/board")

// MovedMessage is the notification sent after every transition.
const MovedMessage = "Task moved"

// TaskStore is the part of the task repository the board needs.
type TaskStore interface {
	LoadAll(ctx context.Context) ([]model.Task, error)
	LoadFiltered(ctx context.Context, text string) ([]model.Task, error)
	GetByID(ctx context.Context, id string) (*model.Task, error)
	Replace(ctx context.Context, task *model.Task) (bool, error)
}

// Directory resolves assignee ids to people.
type Directory interface {
	LoadAll(ctx context.Context) ([]model.Contact, error)
}

// Renderer draws the board. The board asks for a full redraw after every
// change.
type Renderer interface {
	RenderBoard(ctx context.Context, v View) error
	// ReportError shows a failed store operation to the user.
	ReportError(ctx context.Context, err error)
}

// Event describes a completed transition.
type Event struct {
	Message string      `json:"message"`
	TaskID  string      `json:"task_id"`
	From    model.State `json:"from"`
	State   model.State `json:"state"`
	At      time.Time   `json:"at"`
}

// Notifier delivers transient notifications such as "Task moved".
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Service applies transitions to tasks and redraws the board.
type Service struct {
	tasks       TaskStore
	contacts    Directory
	renderer    Renderer
	notifier    Notifier
	logger      *slog.Logger
	transitions metric.Int64Counter
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets where the board is drawn.
func WithRenderer(r Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// WithNotifier sets where transition notifications go.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTransitionCounter counts transitions by target state.
func WithTransitionCounter(c metric.Int64Counter) Option {
	return func(s *Service) { s.transitions = c }
}

// NewService creates a Service. Without options the board renders and
// notifies nowhere.
func NewService(tasks TaskStore, contacts Directory, opts ...Option) *Service {
	s := &Service{
		tasks:    tasks,
		contacts: contacts,
		renderer: nopRenderer{},
		notifier: nopNotifier{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	s.transitions, _ = noop.NewMeterProvider().Meter("board").Int64Counter("noop")
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View builds the board for tasks matching filter.
func (s *Service) View(ctx context.Context, filter string) (View, error) {
	ctx, span := tracer.Start(ctx, "board.View",
		trace.WithAttributes(attribute.String("board.filter", filter)),
	)
	defer span.End()

	tasks, err := s.tasks.LoadFiltered(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return View{}, err
	}
	contacts, err := s.contacts.LoadAll(ctx)
	if err != nil {
		span.RecordError(err)
		return View{}, err
	}
	return Partition(tasks, contacts, filter), nil
}

// Refresh redraws the board from the persisted state.
func (s *Service) Refresh(ctx context.Context) error {
	if _, ok := s.renderer.(nopRenderer); ok {
		return nil
	}
	v, err := s.View(ctx, "")
	if err != nil {
		s.renderer.ReportError(ctx, err)
		return err
	}
	return s.renderer.RenderBoard(ctx, v)
}

// Summary loads every task and counts them.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	tasks, err := s.tasks.LoadAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(tasks), nil
}

// MoveToNext advances the task one column. A task already in Done is
// returned unchanged and nothing is written.
func (s *Service) MoveToNext(ctx context.Context, id string) (*model.Task, error) {
	return s.transition(ctx, "board.MoveToNext", id, model.State.Next)
}

// MoveToPrev moves the task back one column. A task in ToDo is returned
// unchanged and nothing is written.
func (s *Service) MoveToPrev(ctx context.Context, id string) (*model.Task, error) {
	return s.transition(ctx, "board.MoveToPrev", id, model.State.Prev)
}

// MoveTo places the task directly in state, as a drop onto a column does.
func (s *Service) MoveTo(ctx context.Context, id string, state model.State) (*model.Task, error) {
	if !state.Valid() {
		return nil, model.ErrInvalidState
	}
	return s.transition(ctx, "board.MoveTo", id, func(model.State) model.State { return state })
}

func (s *Service) transition(ctx context.Context, name, id string, next func(model.State) model.State) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, name,
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "failed to load task", id, err)
	}

	from := task.State
	to := next(from)
	span.SetAttributes(
		attribute.String("task.from", string(from)),
		attribute.String("task.to", string(to)),
	)
	if to == from {
		return task, nil
	}

	task.State = to
	ok, err := s.tasks.Replace(ctx, task)
	if err != nil {
		return nil, s.fail(ctx, span, "failed to persist transition", id, err)
	}
	if !ok {
		// Deleted by another client between read and write.
		return nil, s.fail(ctx, span, "task vanished during transition", id, model.ErrTaskNotFound)
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("task.state", string(to))))
	s.logger.InfoContext(ctx, "task moved",
		slog.String("id", id),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)

	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to redraw board", slog.Any("error", err))
	}
	event := Event{Message: MovedMessage, TaskID: id, From: from, State: to, At: s.now()}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to send notification", slog.Any("error", err))
	}
	return task, nil
}

// ToggleSubtask flips the done flag of one subtask and saves the task
// right away.
func (s *Service) ToggleSubtask(ctx context.Context, id string, index int) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "board.ToggleSubtask",
		trace.WithAttributes(
			attribute.String("task.id", id),
			attribute.Int("subtask.index", index),
		),
	)
	defer span.End()

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "failed to load task", id, err)
	}
	if err := task.ToggleSubtask(index); err != nil {
		return nil, err
	}
	ok, err := s.tasks.Replace(ctx, task)
	if err != nil {
		return nil, s.fail(ctx, span, "failed to persist subtask", id, err)
	}
	if !ok {
		return nil, s.fail(ctx, span, "task vanished during subtask update", id, model.ErrTaskNotFound)
	}
	return task, nil
}

// fail records err and, for store failures, reports it to the user.
func (s *Service) fail(ctx context.Context, span trace.Span, msg, id string, err error) error {
	span.RecordError(err)
	if errors.Is(err, model.ErrTaskNotFound) {
		s.logger.WarnContext(ctx, msg, slog.String("id", id), slog.Any("error", err))
		return err
	}
	s.logger.ErrorContext(ctx, msg, slog.String("id", id), slog.Any("error", err))
	s.renderer.ReportError(ctx, err)
	return err
}

type nopRenderer struct{}

func (nopRenderer) RenderBoard(context.Context, View) error { return nil }
func (nopRenderer) ReportError(context.Context, error)      {}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }
