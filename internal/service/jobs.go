package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/worker"
)

// Enqueuer accepts background jobs without blocking.
type Enqueuer interface {
	Enqueue(job worker.Job) error
}

// dispatch hands job to queue. Without a queue the job runs inline, which is
// only used by tests and one-shot tools.
func dispatch(ctx context.Context, queue Enqueuer, job worker.Job, logger *zap.Logger) {
	if queue == nil {
		if err := job.Run(ctx); err != nil {
			logger.Debug("job failed", zap.String("job", job.Name), zap.Int64("changeset_id", job.ChangesetID), zap.Error(err))
		}
		return
	}
	// Drops are logged and counted by the queue.
	_ = queue.Enqueue(job)
}
