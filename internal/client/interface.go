package client

import (
	"context"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

// TaskAPI описывает контракт удалённого хранилища задач
type TaskAPI interface {
	List(ctx context.Context, status model.Status) ([]model.Task, error)
	Search(ctx context.Context, query string) ([]model.Task, error)
	Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) (model.Task, error)
	Delete(ctx context.Context, id string) error
}
