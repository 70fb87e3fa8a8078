package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// ValidationError несет сообщение, которое уходит клиенту как есть.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

type TaskService struct {
	repo  repo.TaskRepository
	now   func() time.Time
	newID func() string

	idemMu sync.Mutex // сериализует создание с Idempotency-Key
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *TaskService) Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	t := model.Task{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    in.Priority,
		CreatedAt:   s.now().UTC(),
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	due, err := parseDue(in.DueDate)
	if err != nil {
		return t, err
	}
	t.DueDate = due

	if err := s.validate(t); err != nil { // Валидация модели на корректность введенных данных
		return t, err
	}

	if idempKey != "" {
		s.idemMu.Lock()
		defer s.idemMu.Unlock()
	}

	if idempKey != "" { // Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	// Создание новой задачи
	resource, err := s.repo.Create(ctx, t)
	if err != nil {
		return resource, err
	}

	// Сохранение нового ключа; без него повтор запроса создал бы дубликат
	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, idempKey, resource.ID); err != nil {
			if delErr := s.repo.Delete(ctx, resource.ID); delErr != nil {
				err = errors.Join(err, delErr)
			}
			return model.Task{}, fmt.Errorf("save idempotency key: %w", err)
		}
	}

	return resource, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("Status must be all, pending or completed.")
	}
	return s.repo.List(ctx, filter)
}

// Update applies only the fields present in patch.
func (s *TaskService) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}
	if patch.Empty() {
		return t, nil
	}

	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DueDate != nil {
		due, err := parseDue(*patch.DueDate)
		if err != nil {
			return t, err
		}
		t.DueDate = due
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.IsCompleted != nil {
		t.IsCompleted = *patch.IsCompleted
	}

	if err := s.validate(t); err != nil {
		return t, err
	}
	return s.repo.Update(ctx, t)
}

func (s *TaskService) SetCompleted(ctx context.Context, id string, completed bool) (model.Task, error) {
	return s.Update(ctx, id, model.TaskPatch{IsCompleted: &completed})
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) validate(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid("Title is required.")
	}
	if !t.Priority.Valid() {
		return invalid("Priority must be Low, Medium or High.")
	}
	return nil
}

// parseDue accepts an ISO instant or a bare date; "" means no due date.
func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseISO(s)
	if err != nil {
		return nil, invalid("Due date must be an ISO-8601 date.")
	}
	d = d.UTC()
	return &d, nil
}
