package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hiroki-koketsu/kanban-board/internal/board"
	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/hiroki-koketsu/kanban-board/internal/repository"
	"github.com/hiroki-koketsu/kanban-board/internal/session"
	"github.com/hiroki-koketsu/kanban-board/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/kanban-board/internal/handler")

// TaskHandler handles HTTP requests for tasks and the board.
type TaskHandler struct {
	repo    *repository.TaskRepository
	board   *board.Service
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(repo *repository.TaskRepository, svc *board.Service, logger *slog.Logger, metrics *telemetry.Metrics) *TaskHandler {
	return &TaskHandler{
		repo:    repo,
		board:   svc,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes returns the chi router with task routes.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Post("/{id}/next", h.MoveNext)
	r.Post("/{id}/prev", h.MovePrev)
	r.Post("/{id}/drop", h.Drop)
	r.Post("/{id}/subtasks/{index}/toggle", h.ToggleSubtask)

	return r
}

// taskRequest is the body of a create request. It carries what the add
// task form collects.
type taskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"duedate"`
	Category    string   `json:"category"`
	Priority    string   `json:"prio"`
	State       string   `json:"state"`
	AssignedTo  []string `json:"assignedto"`
	Subtasks    []string `json:"subtasks"`
}

// draft fills a create session from req.
func (req *taskRequest) draft(s *session.Session) error {
	s.SetTitle(req.Title)
	s.SetDescription(req.Description)
	if req.DueDate != "" {
		if err := s.SetDueDate(req.DueDate); err != nil {
			return model.TaskError{Message: err.Error()}
		}
	}
	if req.Category != "" {
		if err := s.SetCategory(req.Category); err != nil {
			return err
		}
	}
	if req.Priority != "" {
		if err := s.SetPriority(req.Priority); err != nil {
			return err
		}
	}
	if req.State != "" {
		state, err := model.ParseState(req.State)
		if err != nil {
			return err
		}
		if err := s.SetState(state); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(req.AssignedTo))
	for _, id := range req.AssignedTo {
		if !seen[id] {
			seen[id] = true
			s.ToggleAssignee(id)
		}
	}
	for _, title := range req.Subtasks {
		s.AddSubtask(title)
	}
	return nil
}

// List returns all tasks, or those whose title or description contains q.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	filter := r.URL.Query().Get("q")

	ctx, span := tracer.Start(ctx, "TaskHandler.List",
		trace.WithAttributes(attribute.String("task.filter", filter)),
	)
	defer span.End()

	tasks, err := h.repo.LoadFiltered(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "GET", "/api/v1/tasks", start, "failed to list tasks", err)
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("count", len(tasks)), slog.String("filter", filter))

	h.respondJSON(w, http.StatusOK, tasks)
	h.recordMetrics(ctx, "GET", "/api/v1/tasks", http.StatusOK, start)
}

// Create adds a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Create")
	defer span.End()

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordMetrics(ctx, "POST", "/api/v1/tasks", http.StatusBadRequest, start)
		return
	}

	s := session.New(h.repo)
	if err := req.draft(s); err != nil {
		h.fail(ctx, w, "POST", "/api/v1/tasks", start, "invalid task", err)
		return
	}

	task, err := s.Submit(ctx)
	if err != nil {
		h.fail(ctx, w, "POST", "/api/v1/tasks", start, "failed to create task", err)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created", slog.String("id", task.ID), slog.String("title", task.Title))

	h.respondJSON(w, http.StatusCreated, task)
	h.recordMetrics(ctx, "POST", "/api/v1/tasks", http.StatusCreated, start)
}

// GetByID returns a task by ID.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	task, err := h.repo.GetByID(ctx, id)
	if err != nil {
		h.fail(ctx, w, "GET", "/api/v1/tasks/{id}", start, "failed to get task", err)
		return
	}

	h.respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, "GET", "/api/v1/tasks/{id}", http.StatusOK, start)
}

// Update replaces a task with the document in the body. The id in the
// path wins over one in the body. Repeated assignees collapse to one and
// subtasks without an id are given one.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var task model.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordMetrics(ctx, "PUT", "/api/v1/tasks/{id}", http.StatusBadRequest, start)
		return
	}
	task.ID = id

	updated, err := session.Edit(h.repo, &task).Submit(ctx)
	if err != nil {
		h.fail(ctx, w, "PUT", "/api/v1/tasks/{id}", start, "failed to update task", err)
		return
	}

	h.logger.InfoContext(ctx, "task updated", slog.String("id", id))

	h.respondJSON(w, http.StatusOK, updated)
	h.recordMetrics(ctx, "PUT", "/api/v1/tasks/{id}", http.StatusOK, start)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	ok, err := h.repo.Delete(ctx, &model.Task{ID: id})
	if err == nil && !ok {
		err = model.ErrTaskNotFound
	}
	if err != nil {
		h.fail(ctx, w, "DELETE", "/api/v1/tasks/{id}", start, "failed to delete task", err)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.String("id", id))

	w.WriteHeader(http.StatusNoContent)
	h.recordMetrics(ctx, "DELETE", "/api/v1/tasks/{id}", http.StatusNoContent, start)
}

// Health returns a health check response.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an error to the response status: unknown tasks are 404,
// rejected input is 400 and anything else is a store failure.
func statusFor(err error) int {
	var te model.TaskError
	switch {
	case errors.Is(err, model.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.As(err, &te):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// fail logs err and writes the matching error response.
func (h *TaskHandler) fail(ctx context.Context, w http.ResponseWriter, method, route string, start time.Time, msg string, err error) {
	status := statusFor(err)
	trace.SpanFromContext(ctx).RecordError(err)

	switch status {
	case http.StatusBadGateway:
		h.logger.ErrorContext(ctx, msg, slog.Any("error", err))
		h.respondError(w, status, msg)
	default:
		h.logger.WarnContext(ctx, msg, slog.Any("error", err))
		h.respondError(w, status, err.Error())
	}
	h.recordMetrics(ctx, method, route, status, start)
}

func (h *TaskHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *TaskHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *TaskHandler) recordMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
