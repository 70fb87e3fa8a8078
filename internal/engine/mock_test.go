package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/worker"
)

// MockTaskAPI - мок удалённого API
type MockTaskAPI struct {
	mock.Mock
}

func (m *MockTaskAPI) List(ctx context.Context, status model.Status) ([]model.Task, error) {
	args := m.Called(ctx, status)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskAPI) Search(ctx context.Context, query string) ([]model.Task, error) {
	args := m.Called(ctx, query)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskAPI) Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	args := m.Called(ctx, in, idempKey)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskAPI) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskAPI) SetCompleted(ctx context.Context, id string, completed bool) (model.Task, error) {
	args := m.Called(ctx, id, completed)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskAPI) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func setupEngine(t *testing.T) (*Engine, *MockTaskAPI, *worker.Pool) {
	t.Helper()

	api := new(MockTaskAPI)
	pool := worker.NewPool(zap.NewNop(), 2, 8)
	pool.Start(context.Background())

	e := New(api, pool, zap.NewNop())
	t.Cleanup(e.Close)
	return e, api, pool
}

// seedTasks loads tasks into the collection through a regular read.
func seedTasks(t *testing.T, e *Engine, api *MockTaskAPI, tasks ...model.Task) {
	t.Helper()

	api.On("List", mock.Anything, model.StatusAll).Return(tasks, nil).Once()
	require.NoError(t, e.Query.Refresh(context.Background()))
	require.Len(t, e.State.Tasks(), len(tasks))
}

func newTask(id, title string) model.Task {
	return model.Task{
		ID:        id,
		Title:     title,
		Priority:  model.PriorityMedium,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
