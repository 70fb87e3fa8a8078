package repo

import (
	"context"
	"sync"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

// MemoryRepo keeps tasks in creation order. Used by default and in tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]model.Task
	keys  map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		tasks: make(map[string]model.Task),
		keys:  make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return t, ErrorConflict
	}
	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	return t, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrorNotFound
	}
	return t, nil
}

func (r *MemoryRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.order))
	for _, id := range r.order {
		if t := r.tasks[id]; matches(t, filter) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *MemoryRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; !ok {
		return t, ErrorNotFound
	}
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrorNotFound
	}
	delete(r.tasks, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	// Ключи удаленной задачи больше ни на что не указывают
	for key, rid := range r.keys {
		if rid == id {
			delete(r.keys, key)
		}
	}
	return nil
}

func (r *MemoryRepo) SaveIdempotencyKey(ctx context.Context, key string, resourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[key]; !ok {
		r.keys[key] = resourceID
	}
	return nil
}

func (r *MemoryRepo) GetIdempotencyKey(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.keys[key]
	if !ok {
		return "", ErrorNotFound
	}
	return id, nil
}
