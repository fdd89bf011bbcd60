package render

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hiroki-koketsu/kanban-board/internal/board"
	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalRenderBoard(t *testing.T) {
	task := model.NewTask()
	task.Title = "Ship"
	task.State = model.StateInProgress
	task.Priority = model.PriorityUrgent
	task.AddSubtask("a")
	task.AddSubtask("b")
	require.NoError(t, task.ToggleSubtask(0))
	task.ToggleAssignee("c1")

	contacts := []model.Contact{{ID: "c1", FirstName: "Ada", LastName: "Lovelace"}}
	v := board.Partition([]model.Task{*task}, contacts, "")

	var buf bytes.Buffer
	require.NoError(t, NewTerminal(&buf).RenderBoard(context.Background(), v))

	out := buf.String()
	assert.Contains(t, out, "Ship")
	assert.Contains(t, out, "1/2 Subtasks")
	assert.Contains(t, out, "AL")
	assert.Contains(t, out, "urgent")
	assert.Contains(t, out, "No tasks to do")
	assert.Contains(t, out, "In progress (1)")
}

func TestTerminalReportError(t *testing.T) {
	var buf bytes.Buffer
	NewTerminal(&buf).ReportError(context.Background(), errors.New("store down"))
	assert.Contains(t, buf.String(), "error: store down")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b c", truncate("a  b c", 6))
	assert.Equal(t, "1 2 3 4 5 6 ...", truncate("1 2 3 4 5 6 7 8", 6))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[#####-----]", progressBar(1, 2, 10))
	assert.Equal(t, "[----------]", progressBar(0, 0, 10))
}

func TestTerminalNotify(t *testing.T) {
	var buf bytes.Buffer
	err := NewTerminal(&buf).Notify(context.Background(), board.Event{
		Message: board.MovedMessage,
		From:    model.StateToDo,
		State:   model.StateInProgress,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Task moved: To do -> In progress")
}

func TestTerminalRenderSummary(t *testing.T) {
	urgent := model.NewTask()
	urgent.Title = "u"
	urgent.Priority = model.PriorityUrgent
	urgent.DueDate = model.NewDate(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, NewTerminal(&buf).RenderSummary(board.Summarize([]model.Task{*urgent})))

	out := buf.String()
	assert.Contains(t, out, "Tasks on board: 1")
	assert.Contains(t, out, "Next due  March 9, 2024")
}
