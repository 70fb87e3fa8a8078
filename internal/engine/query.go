package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/client"
	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/worker"
)

// Scheduler runs re-reads off the caller's goroutine. *worker.Pool satisfies it.
type Scheduler interface {
	Submit(job worker.Job) error
}

type goScheduler struct{}

func (goScheduler) Submit(job worker.Job) error {
	go job.Run(context.Background())
	return nil
}

// QueryController owns the filter and turns every filter change into exactly
// one remote read. Only the newest read may touch the collection.
type QueryController struct {
	state  *State
	api    client.TaskAPI
	sched  Scheduler
	logger *zap.Logger
}

func NewQueryController(state *State, api client.TaskAPI, sched Scheduler, logger *zap.Logger) *QueryController {
	if sched == nil {
		sched = goScheduler{}
	}
	return &QueryController{
		state:  state,
		api:    api,
		sched:  sched,
		logger: logger,
	}
}

// SetStatus changes the status filter and schedules a re-read. Setting the
// current value is a no-op.
func (c *QueryController) SetStatus(status model.Status) error {
	if !status.Valid() {
		err := invalid("status", fmt.Sprintf("Unknown status %q.", status))
		c.state.setError(messageFor(err, MsgFetchFailed))
		return err
	}
	if c.state.isClosed() {
		return ErrClosed
	}
	if !c.state.setStatus(status) {
		return nil
	}
	return c.schedule()
}

// SetSearchText changes the search text and schedules a re-read.
func (c *QueryController) SetSearchText(text string) error {
	if c.state.isClosed() {
		return ErrClosed
	}
	if !c.state.setQuery(text) {
		return nil
	}
	return c.schedule()
}

// Refresh re-reads with the current filter and waits for the result.
func (c *QueryController) Refresh(ctx context.Context) error {
	token, filter, ok := c.state.beginRead()
	if !ok {
		return ErrClosed
	}
	return c.read(ctx, token, filter)
}

// Load replaces the whole filter and reads with it, waiting for the result.
// Used for the initial load and by one-shot commands.
func (c *QueryController) Load(ctx context.Context, filter model.TaskFilter) error {
	if filter.Status == "" {
		filter.Status = model.StatusAll
	}
	if !filter.Status.Valid() {
		err := invalid("status", fmt.Sprintf("Unknown status %q.", filter.Status))
		c.state.setError(messageFor(err, MsgFetchFailed))
		return err
	}
	c.state.setFilter(filter)
	return c.Refresh(ctx)
}

func (c *QueryController) CurrentTasks() []model.Task { return c.state.Tasks() }

func (c *QueryController) IsLoading() bool { return c.state.Loading() }

func (c *QueryController) LastError() string { return c.state.Err() }

func (c *QueryController) schedule() error {
	token, filter, ok := c.state.beginRead()
	if !ok {
		return ErrClosed
	}

	err := c.sched.Submit(worker.Job{
		Name: "reload tasks",
		Run: func(ctx context.Context) error {
			return c.read(ctx, token, filter)
		},
	})
	if err != nil {
		c.state.finishRead(token, nil, messageFor(err, MsgFetchFailed))
		return fmt.Errorf("schedule read: %w", err)
	}
	return nil
}

func (c *QueryController) read(ctx context.Context, token uint64, filter model.TaskFilter) error {
	var (
		tasks []model.Task
		err   error
	)
	// Поиск имеет приоритет над фильтром по статусу
	if q := strings.TrimSpace(filter.Query); q != "" {
		tasks, err = c.api.Search(ctx, q)
	} else {
		tasks, err = c.api.List(ctx, filter.Status)
	}

	if err != nil {
		applied := c.state.finishRead(token, nil, messageFor(err, MsgFetchFailed))
		c.logger.Warn("failed to fetch tasks",
			zap.String("status", string(filter.Status)),
			zap.String("query", filter.Query),
			zap.Bool("applied", applied),
			zap.Error(err),
		)
		return err
	}

	if !c.state.finishRead(token, tasks, "") {
		c.logger.Debug("discarded stale read",
			zap.Uint64("token", token),
			zap.String("status", string(filter.Status)),
			zap.String("query", filter.Query),
		)
		return nil
	}
	c.logger.Debug("tasks loaded", zap.Int("count", len(tasks)))
	return nil
}
