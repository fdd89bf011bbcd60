package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hiroki-koketsu/kanban-board/internal/dragdrop"
	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BoardRoutes returns the chi router with the column view routes.
func (h *TaskHandler) BoardRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Board)
	r.Get("/summary", h.Summary)

	return r
}

// Board returns the four columns for tasks matching q.
func (h *TaskHandler) Board(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	filter := r.URL.Query().Get("q")

	ctx, span := tracer.Start(ctx, "TaskHandler.Board",
		trace.WithAttributes(attribute.String("task.filter", filter)),
	)
	defer span.End()

	view, err := h.board.View(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "GET", "/api/v1/board", start, "failed to build board", err)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
	h.recordMetrics(ctx, "GET", "/api/v1/board", http.StatusOK, start)
}

// Summary returns the task counts shown on the summary page.
func (h *TaskHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Summary")
	defer span.End()

	summary, err := h.board.Summary(ctx)
	if err != nil {
		h.fail(ctx, w, "GET", "/api/v1/board/summary", start, "failed to summarize board", err)
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
	h.recordMetrics(ctx, "GET", "/api/v1/board/summary", http.StatusOK, start)
}

// MoveNext moves a task one column to the right.
func (h *TaskHandler) MoveNext(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "next", h.board.MoveToNext)
}

// MovePrev moves a task one column to the left.
func (h *TaskHandler) MovePrev(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "prev", h.board.MoveToPrev)
}

func (h *TaskHandler) move(w http.ResponseWriter, r *http.Request, direction string, step func(ctx context.Context, id string) (*model.Task, error)) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")
	route := "/api/v1/tasks/{id}/" + direction

	ctx, span := tracer.Start(ctx, "TaskHandler.Move",
		trace.WithAttributes(
			attribute.String("task.id", id),
			attribute.String("move.direction", direction),
		),
	)
	defer span.End()

	task, err := step(ctx, id)
	if err != nil {
		h.fail(ctx, w, "POST", route, start, "failed to move task", err)
		return
	}

	h.respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, "POST", route, http.StatusOK, start)
}

type dropRequest struct {
	// Target is the identity of the element the card was released over,
	// such as "container-column-done".
	Target string `json:"target"`
}

type dropResponse struct {
	Phase string      `json:"phase"`
	Task  *model.Task `json:"task"`
}

// Drop runs a complete drag gesture for a task released over the element
// named in the body. A release outside any drop zone cancels the gesture
// and leaves the task where it was.
func (h *TaskHandler) Drop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Drop",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordMetrics(ctx, "POST", "/api/v1/tasks/{id}/drop", http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.String("drop.target", req.Target))

	outcome, err := dragdrop.Run(ctx, h.board, dragdrop.Headless{}, id, req.Target)
	if err != nil {
		h.fail(ctx, w, "POST", "/api/v1/tasks/{id}/drop", start, "failed to drop task", err)
		return
	}

	task, err := h.repo.GetByID(ctx, id)
	if err != nil {
		h.fail(ctx, w, "POST", "/api/v1/tasks/{id}/drop", start, "failed to drop task", err)
		return
	}

	h.logger.InfoContext(ctx, "drop finished",
		slog.String("id", id),
		slog.String("phase", outcome.Phase.String()),
		slog.String("state", string(task.State)),
	)

	h.respondJSON(w, http.StatusOK, dropResponse{Phase: outcome.Phase.String(), Task: task})
	h.recordMetrics(ctx, "POST", "/api/v1/tasks/{id}/drop", http.StatusOK, start)
}

// ToggleSubtask flips one subtask's done flag and saves the task.
func (h *TaskHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")
	route := "/api/v1/tasks/{id}/subtasks/{index}/toggle"

	ctx, span := tracer.Start(ctx, "TaskHandler.ToggleSubtask",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.fail(ctx, w, "POST", route, start, "invalid subtask index", model.ErrSubtaskIndex)
		return
	}

	task, err := h.board.ToggleSubtask(ctx, id, index)
	if err != nil {
		h.fail(ctx, w, "POST", route, start, "failed to toggle subtask", err)
		return
	}

	h.respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, "POST", route, http.StatusOK, start)
}
