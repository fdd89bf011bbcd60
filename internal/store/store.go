// Package store talks to the path-addressed JSON document store that backs
// the board. The store holds a JSON tree: "tasks/0" addresses the first
// element of the tasks document. The board itself has no per-record
// operations and always replaces whole documents.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hiroki-koketsu/kanban-board/internal/jsontree"
)

// Client is the set of primitives the document store offers.
type Client interface {
	// Read returns the document at path, or nil if the store holds nothing
	// there.
	Read(ctx context.Context, path string) (json.RawMessage, error)
	// Replace writes data as the complete document at path.
	Replace(ctx context.Context, path string, data any) error
	// Delete removes path and everything below it.
	Delete(ctx context.Context, path string) error
	// Append adds data as a new child of the collection at path and returns
	// the child's name.
	Append(ctx context.Context, path string, data any) (string, error)
}

// ErrUnavailable wraps transport failures reaching the store.
var ErrUnavailable = errors.New("document store unavailable")

// StatusError is returned when the store answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// CleanPath strips surrounding slashes and a trailing ".json" so "/tasks",
// "tasks" and "tasks.json" all address the same document.
func CleanPath(path string) string {
	path = strings.Trim(path, "/")
	return strings.TrimSuffix(path, ".json")
}

// IsNull reports whether raw is empty or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	return jsontree.IsNull(raw)
}
