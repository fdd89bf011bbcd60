package repository

import (
	"context"
	"testing"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/hiroki-koketsu/kanban-board/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(title, description string) *model.Task {
	t := model.NewTask()
	t.Title = title
	t.Description = description
	return t
}

func TestLoadAllEmptyStore(t *testing.T) {
	repo := NewTaskRepository(store.NewMemory())

	tasks, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestAddGetByID(t *testing.T) {
	repo := NewTaskRepository(store.NewMemory())
	ctx := context.Background()

	task := newTask("Write report", "")
	task.AddSubtask("outline")
	task.ToggleAssignee("c1")

	ok, err := repo.Add(ctx, task)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestReplaceReflectsNewTitle(t *testing.T) {
	repo := NewTaskRepository(store.NewMemory())
	ctx := context.Background()

	task := newTask("draft", "")
	_, err := repo.Add(ctx, task)
	require.NoError(t, err)
	_, err = repo.Add(ctx, newTask("other", ""))
	require.NoError(t, err)

	task.Title = "final"
	ok, err := repo.Replace(ctx, task)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, task.ID, all[0].ID, "replace keeps the position")
}

func TestReplaceUnknownID(t *testing.T) {
	repo := NewTaskRepository(store.NewMemory())

	ok, err := repo.Replace(context.Background(), newTask("ghost", ""))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidInputSkipsStore(t *testing.T) {
	mem := store.NewMemory()
	mem.Err = store.ErrUnavailable
	repo := NewTaskRepository(mem)
	ctx := context.Background()

	ok, err := repo.Add(ctx, nil)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Replace(ctx, &model.Task{Title: "no id"})
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, nil)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetByID(ctx, "")
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewTaskRepository(store.NewMemory())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
}

func TestLoadFiltered(t *testing.T) {
	repo := NewTaskRepository(store.NewMemory())
	ctx := context.Background()

	a := newTask("Fix FOO parser", "")
	b := newTask("Release", "needs foo review")
	c := newTask("Lunch", "pizza")
	for _, task := range []*model.Task{a, b, c} {
		_, err := repo.Add(ctx, task)
		require.NoError(t, err)
	}

	got, err := repo.LoadFiltered(ctx, "foo")
	require.NoError(t, err)
	ids := []string{}
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{a.ID, b.ID}, ids)

	all, err := repo.LoadFiltered(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.LoadFiltered(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	mem := store.NewMemory()
	repo := NewTaskRepository(mem)
	ctx := context.Background()

	a, b := newTask("a", ""), newTask("b", "")
	_, err := repo.Add(ctx, a)
	require.NoError(t, err)
	_, err = repo.Add(ctx, b)
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mem.Has(TasksPath))

	ok, err = repo.Delete(ctx, a)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, b)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mem.Has(TasksPath), "deleting the last task removes the collection")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreFailurePropagates(t *testing.T) {
	mem := store.NewMemory()
	repo := NewTaskRepository(mem)
	ctx := context.Background()
	task := newTask("a", "")
	_, err := repo.Add(ctx, task)
	require.NoError(t, err)

	mem.Err = store.ErrUnavailable

	_, err = repo.LoadAll(ctx)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	_, err = repo.Replace(ctx, task)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	_, err = repo.Delete(ctx, task)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestSparseCollection(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Replace(ctx, TasksPath, []any{nil, map[string]string{"guid": "x", "title": "kept"}}))

	tasks, err := NewTaskRepository(mem).LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "kept", tasks[0].Title)
}

func TestLastWriterWins(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	first := NewTaskRepository(mem)
	second := NewTaskRepository(mem)

	task := newTask("shared", "")
	_, err := first.Add(ctx, task)
	require.NoError(t, err)

	// Both sessions read the collection before either writes.
	stale, err := first.LoadAll(ctx)
	require.NoError(t, err)

	_, err = second.Add(ctx, newTask("added concurrently", ""))
	require.NoError(t, err)

	stale[0].Title = "renamed"
	require.NoError(t, mem.Replace(ctx, TasksPath, stale))

	all, err := second.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "the stale full write drops the concurrent add")
	assert.Equal(t, "renamed", all[0].Title)
}
