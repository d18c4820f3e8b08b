package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/messaging"
	"github.com/spec-kit/pdc-service/internal/observability"
	"github.com/spec-kit/pdc-service/internal/worker"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// ChangesetNotifier publishes committed changesets to the message bus from a
// background job.
type ChangesetNotifier struct {
	publisher messaging.Publisher
	queue     Enqueuer
	topic     string
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewChangesetNotifier builds the notifier. A zero timeout leaves publishing
// bounded only by the job timeout.
func NewChangesetNotifier(publisher messaging.Publisher, queue Enqueuer, topic string, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *ChangesetNotifier {
	return &ChangesetNotifier{
		publisher: publisher,
		queue:     queue,
		topic:     topic,
		timeout:   timeout,
		logger:    logger.Named("notifier"),
		metrics:   metrics,
	}
}

// ChangesetCommitted schedules the publish of cs.
func (n *ChangesetNotifier) ChangesetCommitted(ctx context.Context, cs *domain.Changeset) {
	if n.publisher == nil {
		return
	}
	dispatch(ctx, n.queue, worker.Job{
		Name:        "publish_changeset",
		ChangesetID: cs.ID,
		Run: func(ctx context.Context) error {
			return n.Publish(ctx, cs)
		},
	}, n.logger)
}

// Publish sends cs synchronously. Failures are logged, counted and returned
// as *errorutil.PublishError.
func (n *ChangesetNotifier) Publish(ctx context.Context, cs *domain.Changeset) error {
	backend := n.publisher.Name()
	n.metrics.PublishAttempted(backend)

	msg, err := messaging.NewChangesetMessage(n.topic, cs)
	if err == nil {
		if n.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, n.timeout)
			defer cancel()
		}
		err = n.publisher.Publish(ctx, n.topic, msg)
	}
	if err != nil {
		n.metrics.PublishFailed(backend)
		n.logger.Error("changeset publish failed",
			zap.Int64("changeset_id", cs.ID),
			zap.String("backend", backend),
			zap.String("topic", n.topic),
			zap.Error(err),
		)
		return &apperrors.PublishError{ChangesetID: cs.ID, Backend: backend, Topic: n.topic, Err: err}
	}

	n.logger.Debug("changeset published",
		zap.Int64("changeset_id", cs.ID),
		zap.String("backend", backend),
		zap.String("message_id", msg.ID),
	)
	return nil
}
