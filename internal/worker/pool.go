package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrStopped = errors.New("worker pool stopped")

// Job is a unit of remote work, usually a scheduled re-read.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type Pool struct {
	logger  *zap.Logger
	count   int
	jobs    chan Job
	wg      sync.WaitGroup
	pending sync.WaitGroup

	mu       sync.Mutex
	stopped  bool
	stop     chan struct{}
	overflow sync.WaitGroup
	once     sync.Once
}

func NewPool(logger *zap.Logger, count, queue int) *Pool {
	if count < 1 {
		count = 1
	}
	if queue < 0 {
		queue = 0
	}
	return &Pool{
		logger: logger,
		count:  count,
		jobs:   make(chan Job, queue),
		stop:   make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit queues a job and never blocks the caller: when the queue is full the
// job waits for a free slot on its own goroutine. It fails once the pool is
// stopped.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}

	p.pending.Add(1)
	select {
	case p.jobs <- job:
	default:
		p.overflow.Add(1)
		go p.enqueue(job)
	}
	return nil
}

func (p *Pool) enqueue(job Job) {
	defer p.overflow.Done()

	select {
	case p.jobs <- job:
	case <-p.stop:
		p.pending.Done()
	}
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.pending.Wait()
}

func (p *Pool) Stop() {
	p.once.Do(func() {
		p.logger.Info("Stopping worker pool...")

		p.mu.Lock()
		p.stopped = true
		close(p.stop)
		p.mu.Unlock()

		p.wg.Wait()
		p.overflow.Wait()

		// Jobs still queued will never run.
		for {
			select {
			case <-p.jobs:
				p.pending.Done()
			default:
				p.logger.Info("Worker pool stopped")
				return
			}
		}
	})
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			p.run(ctx, id, job)
		}
	}
}

func (p *Pool) run(ctx context.Context, workerID int, job Job) {
	defer p.pending.Done()

	start := time.Now()
	err := job.Run(ctx)
	if err != nil {
		p.logger.Warn("job failed",
			zap.Int("worker", workerID),
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("job done",
		zap.Int("worker", workerID),
		zap.String("job", job.Name),
		zap.Duration("took", time.Since(start)),
	)
}
