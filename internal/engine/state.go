package engine

import (
	"sync"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

// State is the single owned view state: the task collection, the filter, the
// loading flag and the shared error slot. Views read it through the accessors
// and re-render when a subscriber fires.
type State struct {
	mu      sync.RWMutex
	tasks   []model.Task
	filter  model.TaskFilter
	loading bool
	errMsg  string
	readSeq uint64
	closed  bool

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

func NewState() *State {
	return &State{
		filter: model.TaskFilter{Status: model.StatusAll},
		subs:   make(map[int]func()),
	}
}

// Tasks returns a snapshot of the collection.
func (s *State) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *State) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

func (s *State) Filter() model.TaskFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *State) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Subscribe registers fn to be called after every change. The returned func
// removes it.
func (s *State) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *State) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// mutate applies fn under the write lock unless the state is closed, then
// notifies subscribers when fn reports a change.
func (s *State) mutate(fn func() bool) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	changed := fn()
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return changed
}

func (s *State) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) setStatus(status model.Status) bool {
	return s.mutate(func() bool {
		if s.filter.Status == status {
			return false
		}
		s.filter.Status = status
		return true
	})
}

func (s *State) setQuery(q string) bool {
	return s.mutate(func() bool {
		if s.filter.Query == q {
			return false
		}
		s.filter.Query = q
		return true
	})
}

func (s *State) setFilter(f model.TaskFilter) bool {
	return s.mutate(func() bool {
		if s.filter == f {
			return false
		}
		s.filter = f
		return true
	})
}

// beginRead hands out the token of a new read. Any read holding an older
// token is stale from now on.
func (s *State) beginRead() (uint64, model.TaskFilter, bool) {
	var token uint64
	var filter model.TaskFilter
	ok := s.mutate(func() bool {
		s.readSeq++
		token = s.readSeq
		filter = s.filter
		s.loading = true
		s.errMsg = ""
		return true
	})
	return token, filter, ok
}

func (s *State) finishRead(token uint64, tasks []model.Task, errMsg string) bool {
	return s.mutate(func() bool {
		if token != s.readSeq {
			return false
		}
		s.loading = false
		if errMsg != "" {
			s.errMsg = errMsg
			return true
		}
		s.tasks = make([]model.Task, len(tasks))
		copy(s.tasks, tasks)
		return true
	})
}

func (s *State) setError(msg string) {
	s.mutate(func() bool {
		if s.errMsg == msg {
			return false
		}
		s.errMsg = msg
		return true
	})
}

func (s *State) appendTask(t model.Task) bool {
	return s.mutate(func() bool {
		s.tasks = append(s.tasks, t)
		return true
	})
}

func (s *State) replaceTask(id string, t model.Task) bool {
	return s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.tasks[i] = t
		return true
	})
}

func (s *State) removeTask(id string) bool {
	return s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		return true
	})
}

func (s *State) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *State) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
