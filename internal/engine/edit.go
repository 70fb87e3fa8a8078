package engine

import (
	"context"
	"sync"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

// EditSession is a single slot: either nothing is being edited (the form is
// in create mode) or exactly one task id is. It never holds an index into the
// collection.
type EditSession struct {
	mu      sync.Mutex
	gateway *MutationGateway
	taskID  string
	form    Form
	gen     uint64
}

func NewEditSession(gateway *MutationGateway) *EditSession {
	return &EditSession{
		gateway: gateway,
		form:    NewForm(),
	}
}

// OpenFor starts editing t, replacing any session already open.
func (s *EditSession) OpenFor(t model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskID = t.ID
	s.form = FormFromTask(t)
	s.gen++
}

// Cancel closes the session without submitting anything.
func (s *EditSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskID = ""
	s.form = NewForm()
	s.gen++
}

// Editing reports the id of the task being edited.
func (s *EditSession) Editing() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskID, s.taskID != ""
}

func (s *EditSession) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Submit validates f and routes it to Update when a task is open, to Create
// otherwise. On success the session closes (edit) or the form resets
// (create). A failure keeps the session so the user can submit again.
func (s *EditSession) Submit(ctx context.Context, f Form) (model.Task, error) {
	return s.Prepare(f)(ctx)
}

// Prepare stores f and binds a submit to the session open right now. The
// returned func may run later on another goroutine and still targets that
// session, whatever was opened in between.
func (s *EditSession) Prepare(f Form) func(ctx context.Context) (model.Task, error) {
	s.mu.Lock()
	if f.IdempotencyKey == "" {
		f.IdempotencyKey = s.form.IdempotencyKey
	}
	s.form = f
	id, gen := s.taskID, s.gen
	s.mu.Unlock()

	return func(ctx context.Context) (model.Task, error) {
		return s.submit(ctx, f, id, gen)
	}
}

func (s *EditSession) submit(ctx context.Context, f Form, id string, gen uint64) (model.Task, error) {
	var (
		task model.Task
		err  error
	)
	if id != "" {
		var patch model.TaskPatch
		if patch, err = f.Patch(); err != nil {
			return model.Task{}, s.gateway.fail("update", id, err)
		}
		task, err = s.gateway.Update(ctx, id, patch)
	} else {
		var in model.TaskInput
		if in, err = f.Input(); err != nil {
			return model.Task{}, s.gateway.fail("create", "", err)
		}
		task, err = s.gateway.Create(ctx, in, f.IdempotencyKey)
	}
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another OpenFor or Cancel happened meanwhile; leave that session alone.
	if s.gen == gen {
		s.taskID = ""
		s.form = NewForm()
		s.gen++
	}
	return task, nil
}
