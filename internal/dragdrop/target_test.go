package dragdrop

import (
	"testing"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		identity string
		want     Target
	}{
		{"container-column-todo", Column(model.StateToDo)},
		{"container-column-inprogress", Column(model.StateInProgress)},
		{"container-column-awaitfeedback", Column(model.StateAwaitFeedback)},
		{"container-column-done", Column(model.StateDone)},
		{"task-abc123container-column-done", Target{Kind: KindTask, State: model.StateDone, TaskID: "abc123"}},
		{"task-abc123", Target{Kind: KindTask, State: model.StateToDo, TaskID: "abc123"}},
		{"board-header", Target{}},
		{"", Target{}},
	}
	for _, tt := range tests {
		t.Run(tt.identity, func(t *testing.T) {
			got := ParseTarget(tt.identity)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Kind != KindNone, got.Valid())
		})
	}
}

func TestParseTargetAlwaysYieldsWorkflowState(t *testing.T) {
	for _, id := range []string{"container-column-inprogress", "task-1", "x", "task-2container-column-awaitfeedback"} {
		got := ParseTarget(id)
		if got.Valid() {
			assert.True(t, got.State.Valid(), id)
		}
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "column", KindColumn.String())
	assert.Equal(t, "task", KindTask.String())
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "hover-valid", HoverValid.String())
}
