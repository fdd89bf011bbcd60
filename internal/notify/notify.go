// Package notify delivers board notifications such as "Task moved".
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hiroki-koketsu/kanban-board/internal/board"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix starts the subject of every board event.
const SubjectPrefix = "board.events"

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, e board.Event) error {
	n.logger.InfoContext(ctx, e.Message,
		slog.String("task_id", e.TaskID),
		slog.String("from", string(e.From)),
		slog.String("state", string(e.State)),
	)
	return nil
}

// Publisher is the part of a NATS connection the notifier uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes notifications as JSON on board.events.<task id>.
type NATSNotifier struct {
	pub    Publisher
	logger *slog.Logger
}

// NewNATSNotifier publishes through pub, usually a *nats.Conn.
func NewNATSNotifier(pub Publisher, logger *slog.Logger) *NATSNotifier {
	return &NATSNotifier{
		pub:    pub,
		logger: logger.With("component", "nats_notifier"),
	}
}

// Connect dials the NATS server at url for use with NewNATSNotifier.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("kanban-board"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns the subject events for taskID are published on.
func Subject(taskID string) string {
	return SubjectPrefix + "." + taskID
}

func (n *NATSNotifier) Notify(ctx context.Context, e board.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.pub.Publish(Subject(e.TaskID), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	n.logger.DebugContext(ctx, "event published",
		slog.String("task_id", e.TaskID),
		slog.String("state", string(e.State)),
	)
	return nil
}

var (
	_ board.Notifier = (*LogNotifier)(nil)
	_ board.Notifier = (*NATSNotifier)(nil)
	_ Publisher      = (*nats.Conn)(nil)
)
