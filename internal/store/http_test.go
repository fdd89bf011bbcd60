package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hiroki-koketsu/kanban-board/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocstore(t *testing.T) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(docstore.NewServer(docstore.NewMemoryBackend(), logger).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientRoundTrip(t *testing.T) {
	srv := newDocstore(t)
	c := NewHTTPClient(srv.URL+"/", 5*time.Second)
	ctx := context.Background()

	doc, err := c.Read(ctx, "/tasks")
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, c.Replace(ctx, "/tasks", []map[string]string{{"guid": "1"}}))
	doc, err = c.Read(ctx, "tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"guid":"1"}]`, string(doc))

	name, err := c.Append(ctx, "/tasks", map[string]string{"guid": "2"})
	require.NoError(t, err)
	assert.Equal(t, "1", name)

	require.NoError(t, c.Delete(ctx, "/tasks"))
	doc, err = c.Read(ctx, "/tasks")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestHTTPClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks.json", r.URL.Path)
		http.Error(w, "permission denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second).Read(context.Background(), "tasks")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, http.MethodGet, se.Method)
}

func TestHTTPClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPClient(url, time.Second).Replace(context.Background(), "tasks", []int{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPClient(srv.URL, 50*time.Millisecond).Read(context.Background(), "tasks")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	doc, err := m.Read(ctx, "tasks")
	require.NoError(t, err)
	assert.Nil(t, doc)

	name, err := m.Append(ctx, "tasks", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, "0", name)
	assert.True(t, m.Has("/tasks.json"))

	require.NoError(t, m.Replace(ctx, "tasks", nil))
	assert.False(t, m.Has("tasks"))

	require.NoError(t, m.Replace(ctx, "tasks", []int{1, 2}))
	doc, err = m.Read(ctx, "tasks")
	require.NoError(t, err)
	var got []int
	require.NoError(t, json.Unmarshal(doc, &got))
	assert.Equal(t, []int{1, 2}, got)

	require.NoError(t, m.Delete(ctx, "tasks"))
	assert.False(t, m.Has("tasks"))

	m.Err = ErrUnavailable
	_, err = m.Read(ctx, "tasks")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientsResolveNestedPaths(t *testing.T) {
	clients := map[string]Client{
		"memory": NewMemory(),
		"http":   NewHTTPClient(newDocstore(t).URL, 5*time.Second),
	}
	for name, c := range clients {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, c.Replace(ctx, "tasks", []map[string]string{{"guid": "a"}}))

			doc, err := c.Read(ctx, "tasks/0")
			require.NoError(t, err)
			assert.JSONEq(t, `{"guid":"a"}`, string(doc))

			require.NoError(t, c.Replace(ctx, "tasks/0/title", "first"))
			doc, err = c.Read(ctx, "tasks")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"guid":"a","title":"first"}]`, string(doc))

			child, err := c.Append(ctx, "tasks/0/assignedto", "c1")
			require.NoError(t, err)
			assert.Equal(t, "0", child)
			doc, err = c.Read(ctx, "tasks/0/assignedto")
			require.NoError(t, err)
			assert.JSONEq(t, `["c1"]`, string(doc))

			require.NoError(t, c.Delete(ctx, "tasks"))
			doc, err = c.Read(ctx, "tasks/0")
			require.NoError(t, err)
			assert.Nil(t, doc)
		})
	}
}

func TestMemoryDeleteNestedCollapses(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Replace(ctx, "tasks/0", map[string]string{"guid": "a"}))
	assert.True(t, m.Has("tasks"))

	require.NoError(t, m.Delete(ctx, "tasks/0"))
	assert.False(t, m.Has("tasks"))
	assert.False(t, m.Has("tasks/0"))
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, "tasks", CleanPath("/tasks"))
	assert.Equal(t, "tasks", CleanPath("tasks.json"))
	assert.Equal(t, "a/b", CleanPath("/a/b/"))
}
