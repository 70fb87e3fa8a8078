package engine_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/client"
	"github.com/BuzzLyutic/task-sync/internal/engine"
	"github.com/BuzzLyutic/task-sync/internal/handler"
	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/repo"
	"github.com/BuzzLyutic/task-sync/internal/service"
	"github.com/BuzzLyutic/task-sync/internal/testutil"
	"github.com/BuzzLyutic/task-sync/internal/worker"
)

// setupE2E runs the engine against a real API server backed by taskRepo.
func setupE2E(t *testing.T, taskRepo repo.TaskRepository) (*engine.Engine, *worker.Pool) {
	t.Helper()
	logger := zap.NewNop()

	h := handler.NewTaskHandler(service.NewTaskService(taskRepo), logger)
	server := httptest.NewServer(handler.NewRouter(h, logger))
	t.Cleanup(server.Close)

	pool := worker.NewPool(logger, 2, 8)
	pool.Start(context.Background())

	e := engine.New(client.NewHTTPClient(server.URL, 5*time.Second, logger), pool, logger)
	t.Cleanup(e.Close)
	return e, pool
}

func e2eStores() map[string]func(t *testing.T) repo.TaskRepository {
	return map[string]func(t *testing.T) repo.TaskRepository{
		"memory": func(t *testing.T) repo.TaskRepository { return repo.NewMemoryRepo() },
		"postgres": func(t *testing.T) repo.TaskRepository {
			if testing.Short() {
				t.Skip("skipping postgres in short mode")
			}
			return repo.NewTaskRepo(testutil.SetupTestDB(t))
		},
	}
}

func TestE2E_FullWorkflow(t *testing.T) {
	for name, open := range e2eStores() {
		t.Run(name, func(t *testing.T) {
			e, pool := setupE2E(t, open(t))
			ctx := context.Background()
			require.NoError(t, e.Query.Refresh(ctx))
			assert.Empty(t, e.Query.CurrentTasks())

			// 1. Create through the form
			f := e.Edit.Form()
			f.Title = "E2E Test Task"
			f.Description = "from the engine"
			f.DueDate = "2025-03-09"
			f.Priority = model.PriorityHigh
			created, err := e.Edit.Submit(ctx, f)
			require.NoError(t, err)
			require.NotEmpty(t, created.ID)
			assert.False(t, created.CreatedAt.IsZero())

			// 2. Read back
			require.NoError(t, e.Query.Refresh(ctx))
			tasks := e.Query.CurrentTasks()
			require.Len(t, tasks, 1)
			got := tasks[0]
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, "E2E Test Task", got.Title)
			assert.Equal(t, "from the engine", got.Description)
			assert.Equal(t, model.PriorityHigh, got.Priority)
			assert.Equal(t, "2025-03-09", engine.FormFromTask(got).DueDate)

			// 3. Edit, clearing the due date
			e.Edit.OpenFor(got)
			f = e.Edit.Form()
			f.Title = "Updated E2E Task"
			f.DueDate = ""
			updated, err := e.Edit.Submit(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, "Updated E2E Task", updated.Title)
			assert.Nil(t, updated.DueDate)

			// 4. Toggle twice
			first, err := e.Mutations.ToggleComplete(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, first.IsCompleted)
			second, err := e.Mutations.ToggleComplete(ctx, created.ID)
			require.NoError(t, err)
			assert.False(t, second.IsCompleted)

			// 5. Filters
			_, err = e.Mutations.Create(ctx, model.TaskInput{Title: "Second"}, "")
			require.NoError(t, err)
			_, err = e.Mutations.ToggleComplete(ctx, created.ID)
			require.NoError(t, err)

			require.NoError(t, e.Query.SetStatus(model.StatusCompleted))
			pool.Wait()
			assert.Equal(t, []string{"Updated E2E Task"}, titlesOf(e.Query.CurrentTasks()))

			require.NoError(t, e.Query.SetSearchText("second"))
			pool.Wait()
			assert.Equal(t, []string{"Second"}, titlesOf(e.Query.CurrentTasks()))

			// 6. Delete
			require.NoError(t, e.Mutations.Remove(ctx, created.ID))
			err = e.Mutations.Remove(ctx, created.ID)
			require.Error(t, err)
			assert.Equal(t, "Task not found.", e.Query.LastError())
		})
	}
}

func TestE2E_IdempotencyAcrossRequests(t *testing.T) {
	e, _ := setupE2E(t, repo.NewMemoryRepo())
	ctx := context.Background()

	key := "e2e-idem-test"
	first, err := e.Mutations.Create(ctx, model.TaskInput{Title: "Idempotent Task"}, key)
	require.NoError(t, err)
	second, err := e.Mutations.Create(ctx, model.TaskInput{Title: "Idempotent Task"}, key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	require.NoError(t, e.Query.Refresh(ctx))
	assert.Len(t, e.Query.CurrentTasks(), 1)
}

func TestE2E_ServerValidationMessage(t *testing.T) {
	e, _ := setupE2E(t, repo.NewMemoryRepo())
	ctx := context.Background()

	created, err := e.Mutations.Create(ctx, model.TaskInput{Title: "T"}, "")
	require.NoError(t, err)

	// Формат даты в патче проверяет только сервер.
	bad := "next tuesday"
	_, err = e.Mutations.Update(ctx, created.ID, model.TaskPatch{DueDate: &bad})
	require.Error(t, err)
	assert.Equal(t, "Due date must be an ISO-8601 date.", e.Query.LastError())
	assert.Nil(t, e.State.Tasks()[0].DueDate)
}

func titlesOf(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
