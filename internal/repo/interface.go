package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id string) error
	SaveIdempotencyKey(ctx context.Context, key string, resourceID string) error
	GetIdempotencyKey(ctx context.Context, key string) (string, error)
}

// completedFilter maps a status filter to the is_completed value it selects;
// nil selects everything.
func completedFilter(s model.Status) *bool {
	var v bool
	switch s {
	case model.StatusPending:
		v = false
	case model.StatusCompleted:
		v = true
	default:
		return nil
	}
	return &v
}

func matches(t model.Task, filter model.TaskFilter) bool {
	if c := completedFilter(filter.Status); c != nil && t.IsCompleted != *c {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}
