package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/hiroki-koketsu/kanban-board/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/kanban-board/internal/repository")

// TasksPath is the store document holding every task.
const TasksPath = "/tasks"

// TaskRepository keeps the task collection in the document store.
//
// Every mutation reads the whole collection, changes it in memory and
// writes the whole collection back. Nothing is cached between calls. Two
// clients mutating concurrently race: whichever writes last wins, and the
// other client's change is lost. That is the accepted consistency model.
type TaskRepository struct {
	store store.Client
}

// NewTaskRepository creates a TaskRepository backed by s.
func NewTaskRepository(s store.Client) *TaskRepository {
	return &TaskRepository{store: s}
}

func (r *TaskRepository) load(ctx context.Context) ([]model.Task, error) {
	raw, err := r.store.Read(ctx, TasksPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	tasks := []model.Task{}
	if raw == nil {
		return tasks, nil
	}
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	// Sparse arrays in the store decode as zero tasks.
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != "" {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

func (r *TaskRepository) save(ctx context.Context, tasks []model.Task) error {
	if err := r.store.Replace(ctx, TasksPath, tasks); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

// LoadAll returns every task. The result is empty, never nil, when the
// store has no tasks.
func (r *TaskRepository) LoadAll(ctx context.Context) ([]model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.LoadAll")
	defer span.End()

	tasks, err := r.load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// LoadFiltered returns the tasks whose title or description contains text,
// ignoring case.
func (r *TaskRepository) LoadFiltered(ctx context.Context, text string) ([]model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.LoadFiltered",
		trace.WithAttributes(attribute.String("task.filter", text)),
	)
	defer span.End()

	tasks, err := r.load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Matches(text) {
			filtered = append(filtered, t)
		}
	}

	span.SetAttributes(attribute.Int("task.count", len(filtered)))
	return filtered, nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	if id == "" {
		return nil, model.ErrTaskNotFound
	}

	tasks, err := r.load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for i := range tasks {
		if tasks[i].ID == id {
			span.SetAttributes(attribute.Bool("task.found", true))
			return &tasks[i], nil
		}
	}

	span.SetAttributes(attribute.Bool("task.found", false))
	return nil, model.ErrTaskNotFound
}

// Add appends task to the collection. It reports false without touching
// the store when task is nil or has no id.
func (r *TaskRepository) Add(ctx context.Context, task *model.Task) (bool, error) {
	if task.Empty() {
		return false, nil
	}
	ctx, span := tracer.Start(ctx, "TaskRepository.Add",
		trace.WithAttributes(attribute.String("task.id", task.ID)),
	)
	defer span.End()

	tasks, err := r.load(ctx)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	tasks = append(tasks, *task)
	if err := r.save(ctx, tasks); err != nil {
		span.RecordError(err)
		return false, err
	}
	return true, nil
}

// Replace overwrites the stored task that has task's id. It reports false
// when no stored task matches or task is invalid.
func (r *TaskRepository) Replace(ctx context.Context, task *model.Task) (bool, error) {
	if task.Empty() {
		return false, nil
	}
	ctx, span := tracer.Start(ctx, "TaskRepository.Replace",
		trace.WithAttributes(attribute.String("task.id", task.ID)),
	)
	defer span.End()

	tasks, err := r.load(ctx)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	for i := range tasks {
		if tasks[i].ID != task.ID {
			continue
		}
		tasks[i] = *task
		if err := r.save(ctx, tasks); err != nil {
			span.RecordError(err)
			return false, err
		}
		span.SetAttributes(attribute.Bool("task.found", true))
		return true, nil
	}

	span.SetAttributes(attribute.Bool("task.found", false))
	return false, nil
}

// Delete removes the task with task's id. When the collection becomes
// empty the collection path itself is deleted from the store.
func (r *TaskRepository) Delete(ctx context.Context, task *model.Task) (bool, error) {
	if task.Empty() {
		return false, nil
	}
	ctx, span := tracer.Start(ctx, "TaskRepository.Delete",
		trace.WithAttributes(attribute.String("task.id", task.ID)),
	)
	defer span.End()

	tasks, err := r.load(ctx)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	remaining := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != task.ID {
			remaining = append(remaining, t)
		}
	}
	if len(remaining) == len(tasks) {
		span.SetAttributes(attribute.Bool("task.found", false))
		return false, nil
	}

	if len(remaining) == 0 {
		err = r.store.Delete(ctx, TasksPath)
	} else {
		err = r.save(ctx, remaining)
	}
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return true, nil
}

// Count returns the current number of tasks.
func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	tasks, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(tasks)), nil
}
