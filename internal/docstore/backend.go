// Package docstore serves a path-addressed JSON document store over HTTP.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/hiroki-koketsu/kanban-board/internal/jsontree"
)

// AppName names the data directory below the XDG data home.
const AppName = "kanban-board"

// Backend persists one raw JSON document per root name. Paths below a
// root are resolved by the Server inside that document.
type Backend interface {
	// Get returns the document at path; ok is false if nothing is stored.
	Get(ctx context.Context, path string) (doc json.RawMessage, ok bool, err error)
	Put(ctx context.Context, path string, doc json.RawMessage) error
	Delete(ctx context.Context, path string) error
	// Update atomically replaces the document at path with fn's result.
	// fn receives nil when the path is empty. A nil or null result removes
	// the document.
	Update(ctx context.Context, path string, fn func(old json.RawMessage) (json.RawMessage, error)) error
	Close() error
}

// DefaultPath returns the default database directory.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "docstore")
}

const keyPrefix = "doc:"

// BadgerBackend stores documents in a Badger database.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadger opens or creates the database at dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*BadgerBackend, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerBackend{db: db}, nil
}

// Get reads the document at path.
func (b *BadgerBackend) Get(_ context.Context, path string) (json.RawMessage, bool, error) {
	var doc json.RawMessage
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + path))
		if err != nil {
			return err
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Put writes the document at path.
func (b *BadgerBackend) Put(_ context.Context, path string, doc json.RawMessage) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+path), doc)
	})
}

// Delete removes the document at path.
func (b *BadgerBackend) Delete(_ context.Context, path string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + path))
	})
}

// Update runs fn inside a single read-write transaction.
func (b *BadgerBackend) Update(_ context.Context, path string, fn func(json.RawMessage) (json.RawMessage, error)) error {
	key := []byte(keyPrefix + path)
	return b.db.Update(func(txn *badger.Txn) error {
		var old json.RawMessage
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if old, err = item.ValueCopy(nil); err != nil {
				return err
			}
		}
		doc, err := fn(old)
		if err != nil {
			return err
		}
		if jsontree.IsNull(doc) {
			return txn.Delete(key)
		}
		return txn.Set(key, doc)
	})
}

// Close closes the database.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

// MemoryBackend keeps documents in a map.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string]json.RawMessage)}
}

func (m *MemoryBackend) Get(_ context.Context, path string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	return append(json.RawMessage(nil), doc...), ok, nil
}

func (m *MemoryBackend) Put(_ context.Context, path string, doc json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = append(json.RawMessage(nil), doc...)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, path)
	return nil
}

func (m *MemoryBackend) Update(_ context.Context, path string, fn func(json.RawMessage) (json.RawMessage, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := fn(m.docs[path])
	if err != nil {
		return err
	}
	if jsontree.IsNull(doc) {
		delete(m.docs, path)
		return nil
	}
	m.docs[path] = append(json.RawMessage(nil), doc...)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
