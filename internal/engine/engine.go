// Package engine keeps an in-memory task collection in sync with the remote
// task store. It has no rendering dependencies; views read State and call the
// three components directly.
package engine

import (
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/client"
	"github.com/BuzzLyutic/task-sync/internal/worker"
)

type Engine struct {
	State     *State
	Query     *QueryController
	Mutations *MutationGateway
	Edit      *EditSession

	pool *worker.Pool
}

// New wires the components around one State. pool may be nil, in which case
// re-reads run on plain goroutines. The engine takes ownership of pool.
func New(api client.TaskAPI, pool *worker.Pool, logger *zap.Logger) *Engine {
	state := NewState()
	gateway := NewMutationGateway(state, api, logger)

	var sched Scheduler
	if pool != nil {
		sched = pool
	}

	return &Engine{
		State:     state,
		Query:     NewQueryController(state, api, sched, logger),
		Mutations: gateway,
		Edit:      NewEditSession(gateway),
		pool:      pool,
	}
}

// Close tears the engine down. Responses still in flight are dropped when
// they arrive.
func (e *Engine) Close() {
	e.State.close()
	if e.pool != nil {
		e.pool.Stop()
	}
}
