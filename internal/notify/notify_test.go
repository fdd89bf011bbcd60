package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hiroki-koketsu/kanban-board/internal/board"
	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func event() board.Event {
	return board.Event{
		Message: board.MovedMessage,
		TaskID:  "t1",
		From:    model.StateToDo,
		State:   model.StateInProgress,
		At:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNATSNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATSNotifier(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, n.Notify(context.Background(), event()))

	require.Equal(t, []string{"board.events.t1"}, pub.subjects)
	var got board.Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &got))
	assert.Equal(t, event(), got)
}

func TestNATSNotifierPublishError(t *testing.T) {
	boom := errors.New("no responders")
	n := NewNATSNotifier(&fakePublisher{err: boom}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.ErrorIs(t, n.Notify(context.Background(), event()), boom)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), event()))
	assert.Contains(t, buf.String(), "Task moved")
	assert.Contains(t, buf.String(), "task_id=t1")
	assert.Contains(t, buf.String(), "state=InProgress")
}
