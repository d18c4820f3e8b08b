// Package worker runs post-commit side effects off the request path.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/observability"
)

// ErrQueueFull is returned by Enqueue when the buffer has no room.
var ErrQueueFull = errors.New("worker queue full")

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("worker queue closed")

// Job is one unit of background work.
type Job struct {
	Name        string
	ChangesetID int64
	Run         func(ctx context.Context) error
}

// Config sizes the queue.
type Config struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// Queue is a bounded job buffer drained by a fixed set of goroutines. Enqueue
// never blocks: when the buffer is full the job is dropped and counted.
type Queue struct {
	cfg     Config
	jobs    chan Job
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewQueue creates a stopped queue.
func NewQueue(cfg Config, logger *zap.Logger, metrics *observability.Metrics) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	return &Queue{
		cfg:     cfg,
		jobs:    make(chan Job, cfg.QueueSize),
		logger:  logger.Named("worker"),
		metrics: metrics,
	}
}

// Start launches the workers. Jobs run with a context detached from ctx's
// cancellation so Close can drain them.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	base := context.WithoutCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.loop(base)
	}
}

// Enqueue schedules job without blocking.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(job, ErrQueueClosed)
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		q.drop(job, ErrQueueFull)
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to finish or for ctx
// to expire.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	started := q.started
	q.mu.Unlock()

	if !started {
		for job := range q.jobs {
			q.drop(job, ErrQueueClosed)
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports the number of buffered jobs.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

func (q *Queue) loop(ctx context.Context) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(ctx, job)
	}
}

func (q *Queue) run(ctx context.Context, job Job) {
	if q.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.JobTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("job panicked", zap.String("job", job.Name), zap.Int64("changeset_id", job.ChangesetID), zap.Any("panic", r))
		}
	}()

	if err := job.Run(ctx); err != nil {
		q.logger.Debug("job failed", zap.String("job", job.Name), zap.Int64("changeset_id", job.ChangesetID), zap.Error(err))
	}
}

func (q *Queue) drop(job Job, reason error) {
	q.metrics.JobDropped(job.Name)
	q.logger.Warn("job dropped",
		zap.String("job", job.Name),
		zap.Int64("changeset_id", job.ChangesetID),
		zap.Error(reason),
	)
}
