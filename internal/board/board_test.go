package board

import (
	"context"
	"sync"
	"testing"

	"github.com/hiroki-koketsu/kanban-board/internal/model"
	"github.com/hiroki-koketsu/kanban-board/internal/repository"
	"github.com/hiroki-koketsu/kanban-board/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	mu     sync.Mutex
	views  []View
	errors []error
}

func (r *recordingRenderer) RenderBoard(_ context.Context, v View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
	return nil
}

func (r *recordingRenderer) ReportError(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

type recordingNotifier struct {
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) error {
	n.events = append(n.events, e)
	return nil
}

type fixture struct {
	mem      *store.Memory
	repo     *repository.TaskRepository
	renderer *recordingRenderer
	notifier *recordingNotifier
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mem:      store.NewMemory(),
		renderer: &recordingRenderer{},
		notifier: &recordingNotifier{},
	}
	f.repo = repository.NewTaskRepository(f.mem)
	f.svc = NewService(f.repo, repository.NewContactRepository(f.mem),
		WithRenderer(f.renderer),
		WithNotifier(f.notifier),
	)
	return f
}

func (f *fixture) add(t *testing.T, title string, state model.State) *model.Task {
	t.Helper()
	task := model.NewTask()
	task.Title = title
	task.State = state
	ok, err := f.repo.Add(context.Background(), task)
	require.NoError(t, err)
	require.True(t, ok)
	return task
}

func (f *fixture) stateOf(t *testing.T, id string) model.State {
	t.Helper()
	task, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task.State
}

func TestMoveToNextWalksTheWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.add(t, "walk", model.StateToDo)

	for _, want := range []model.State{model.StateInProgress, model.StateAwaitFeedback, model.StateDone} {
		moved, err := f.svc.MoveToNext(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, want, moved.State)
		assert.Equal(t, want, f.stateOf(t, task.ID))
	}

	assert.Len(t, f.renderer.views, 3)
	require.Len(t, f.notifier.events, 3)
	assert.Equal(t, MovedMessage, f.notifier.events[0].Message)
	assert.Equal(t, model.StateToDo, f.notifier.events[0].From)
	assert.Equal(t, model.StateDone, f.notifier.events[2].State)
}

func TestBoundaryMovesAreNoOps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	done := f.add(t, "finished", model.StateDone)
	todo := f.add(t, "fresh", model.StateToDo)

	got, err := f.svc.MoveToNext(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateDone, got.State)

	got, err = f.svc.MoveToPrev(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateToDo, got.State)

	assert.Empty(t, f.notifier.events)
	assert.Empty(t, f.renderer.views)
}

func TestAdvanceRetreatInverse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, s := range []model.State{model.StateInProgress, model.StateAwaitFeedback} {
		task := f.add(t, string(s), s)
		_, err := f.svc.MoveToNext(ctx, task.ID)
		require.NoError(t, err)
		_, err = f.svc.MoveToPrev(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, s, f.stateOf(t, task.ID))
	}
}

func TestMoveTo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, from := range model.States {
		task := f.add(t, "drop", from)
		_, err := f.svc.MoveTo(ctx, task.ID, model.ResolveTarget("container-column-inprogress"))
		require.NoError(t, err)
		assert.Equal(t, model.StateInProgress, f.stateOf(t, task.ID))
	}

	task := f.add(t, "nowhere", model.StateDone)
	_, err := f.svc.MoveTo(ctx, task.ID, model.ResolveTarget("footer"))
	require.NoError(t, err)
	assert.Equal(t, model.StateToDo, f.stateOf(t, task.ID))

	_, err = f.svc.MoveTo(ctx, task.ID, "Archived")
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestMoveUnknownTask(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MoveToNext(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
	assert.Empty(t, f.renderer.errors, "not found is not a store failure")
}

func TestStoreFailureIsReported(t *testing.T) {
	f := newFixture(t)
	task := f.add(t, "doomed", model.StateToDo)
	f.mem.Err = store.ErrUnavailable

	_, err := f.svc.MoveToNext(context.Background(), task.ID)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	require.Len(t, f.renderer.errors, 1)
	assert.ErrorIs(t, f.renderer.errors[0], store.ErrUnavailable)
	assert.Empty(t, f.notifier.events)
}

func TestRenderAfterTransitionShowsTaskOnce(t *testing.T) {
	f := newFixture(t)
	task := f.add(t, "once", model.StateToDo)
	f.add(t, "other", model.StateDone)

	_, err := f.svc.MoveToNext(context.Background(), task.ID)
	require.NoError(t, err)

	require.Len(t, f.renderer.views, 1)
	v := f.renderer.views[0]
	seen := 0
	for _, col := range v.Columns {
		for _, card := range col.Cards {
			if card.Task.ID == task.ID {
				seen++
				assert.Equal(t, model.StateInProgress, col.State)
			}
		}
	}
	assert.Equal(t, 1, seen)
	assert.Empty(t, v.Column(model.StateToDo).Cards)
}

func TestToggleSubtaskPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := model.NewTask()
	task.Title = "checklist"
	task.AddSubtask("a")
	task.AddSubtask("b")
	_, err := f.repo.Add(ctx, task)
	require.NoError(t, err)

	_, err = f.svc.ToggleSubtask(ctx, task.ID, 1)
	require.NoError(t, err)

	stored, err := f.repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, stored.Subtasks[0].Done)
	assert.True(t, stored.Subtasks[1].Done)

	_, err = f.svc.ToggleSubtask(ctx, task.ID, 5)
	assert.ErrorIs(t, err, model.ErrSubtaskIndex)
}

func TestViewFilters(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Deploy api", model.StateToDo)
	f.add(t, "Write docs", model.StateDone)

	v, err := f.svc.View(context.Background(), "API")
	require.NoError(t, err)
	assert.Equal(t, "API", v.Filter)
	assert.Len(t, v.Column(model.StateToDo).Cards, 1)
	assert.Empty(t, v.Column(model.StateDone).Cards)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a", model.StateToDo)
	f.add(t, "b", model.StateToDo)
	f.add(t, "c", model.StateDone)

	sum, err := f.svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.ByState[model.StateToDo])
	assert.Equal(t, 0, sum.ByState[model.StateInProgress])
	assert.Equal(t, 1, sum.ByState[model.StateDone])
}

func TestRefreshWithoutRenderer(t *testing.T) {
	mem := store.NewMemory()
	mem.Err = store.ErrUnavailable
	svc := NewService(repository.NewTaskRepository(mem), repository.NewContactRepository(mem))

	assert.NoError(t, svc.Refresh(context.Background()))
}
