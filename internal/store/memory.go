package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/hiroki-koketsu/kanban-board/internal/jsontree"
)

// Memory is an in-process Client. Documents are stored encoded, so callers
// never share memory with the store. Like the document store, it keeps one
// document per root name and resolves deeper paths inside it.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage

	// Err, when set, is returned by every operation.
	Err error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]json.RawMessage)}
}

// Read returns a copy of the value at path.
func (m *Memory) Read(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	root, rest := jsontree.Split(CleanPath(path))
	doc, err := jsontree.Lookup(m.docs[root], rest)
	if err != nil || doc == nil {
		return nil, err
	}
	return append(json.RawMessage(nil), doc...), nil
}

// Replace stores data at path. Writing null removes the path.
func (m *Memory) Replace(_ context.Context, path string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	return m.assign(path, raw)
}

// Delete removes path and everything below it.
func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	return m.assign(path, nil)
}

// Append adds data to the array at path, creating it if needed. The child
// name is the new element's index.
func (m *Memory) Append(_ context.Context, path string, data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	root, rest := jsontree.Split(CleanPath(path))
	current, err := jsontree.Lookup(m.docs[root], rest)
	if err != nil {
		return "", err
	}
	var items []json.RawMessage
	if current != nil {
		if err := json.Unmarshal(current, &items); err != nil {
			return "", fmt.Errorf("document at %s is not a collection: %w", CleanPath(path), err)
		}
	}
	items = append(items, raw)
	encoded, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	if err := m.assign(path, encoded); err != nil {
		return "", err
	}
	return strconv.Itoa(len(items) - 1), nil
}

// assign writes raw at path, or removes it when raw is null. The caller
// holds the write lock.
func (m *Memory) assign(path string, raw json.RawMessage) error {
	root, rest := jsontree.Split(CleanPath(path))
	doc, err := jsontree.Assign(m.docs[root], rest, raw)
	if err != nil {
		return err
	}
	if doc == nil {
		delete(m.docs, root)
		return nil
	}
	m.docs[root] = doc
	return nil
}

// Has reports whether anything is stored at path.
func (m *Memory) Has(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	root, rest := jsontree.Split(CleanPath(path))
	doc, err := jsontree.Lookup(m.docs[root], rest)
	return err == nil && doc != nil
}
