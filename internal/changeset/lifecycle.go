package changeset

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/observability"
	"github.com/spec-kit/pdc-service/internal/persistence"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// Notifier is told about every durable changeset. It runs on the request
// path and must hand slow work off to a background queue.
type Notifier interface {
	ChangesetCommitted(ctx context.Context, cs *domain.Changeset)
}

// Lifecycle runs one request as a unit of work: domain writes and their
// changeset commit in a single transaction, and notification happens only
// after that transaction is durable.
type Lifecycle struct {
	transactor persistence.Transactor
	aggregator *Aggregator
	notifier   Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewLifecycle wires a lifecycle. A nil notifier disables notification.
func NewLifecycle(transactor persistence.Transactor, aggregator *Aggregator, notifier Notifier, logger *zap.Logger, metrics *observability.Metrics) *Lifecycle {
	return &Lifecycle{
		transactor: transactor,
		aggregator: aggregator,
		notifier:   notifier,
		logger:     logger.Named("lifecycle"),
		metrics:    metrics,
	}
}

// Run executes fn inside a transaction with an open changeset. It returns the
// committed changeset, or nil when fn recorded no changes. An error from fn,
// including ErrRollback, discards everything fn wrote.
func (l *Lifecycle) Run(ctx context.Context, info RequestInfo, fn func(ctx context.Context) error) (cs *domain.Changeset, err error) {
	if _, nested := FromContext(ctx); nested {
		return nil, fn(ctx)
	}

	txCtx, tx, err := l.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	txCtx, h := l.aggregator.Open(txCtx, info)

	defer func() {
		if r := recover(); r != nil {
			l.abort(ctx, tx, h)
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		l.abort(ctx, tx, h)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		l.abort(ctx, tx, h)
		return nil, err
	}

	// From here on the commit runs to completion even if the caller goes away.
	commitCtx := context.WithoutCancel(txCtx)

	if h.Len() == 0 {
		if err := tx.Commit(commitCtx); err != nil {
			return nil, &apperrors.CommitError{Err: err}
		}
		return nil, nil
	}

	cs, err = l.aggregator.Commit(commitCtx, h)
	if err != nil {
		l.rollback(commitCtx, tx)
		return nil, err
	}
	if err := tx.Commit(commitCtx); err != nil {
		h.fail()
		l.metrics.CommitFailed()
		l.logger.Warn("transaction commit failed", zap.String("request_id", info.RequestID), zap.Error(err))
		return nil, &apperrors.CommitError{Err: err}
	}

	l.metrics.ChangesetCommitted(len(cs.Changes))
	l.logger.Info("changeset committed",
		zap.Int64("changeset_id", cs.ID),
		zap.String("author", cs.Author),
		zap.String("request_id", cs.RequestID),
		zap.Int("change_count", len(cs.Changes)),
	)

	l.afterCommit(context.WithoutCancel(ctx), h, cs)
	return cs, nil
}

// afterCommit runs the post-commit hooks. The changeset is already durable,
// so a panicking hook is logged and never fails the request.
func (l *Lifecycle) afterCommit(ctx context.Context, h *Handle, cs *domain.Changeset) {
	if l.notifier != nil {
		l.guard(cs, func() { l.notifier.ChangesetCommitted(ctx, cs) })
	}
	l.guard(cs, func() { h.markCommitted(ctx) })
}

func (l *Lifecycle) guard(cs *domain.Changeset, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("post-commit hook panicked", zap.Int64("changeset_id", cs.ID), zap.Any("panic", r))
		}
	}()
	fn()
}

func (l *Lifecycle) abort(ctx context.Context, tx persistence.Tx, h *Handle) {
	dropped := h.Len()
	l.aggregator.Discard(h)
	l.rollback(context.WithoutCancel(ctx), tx)
	if dropped > 0 {
		l.logger.Debug("changeset discarded", zap.String("request_id", h.info.RequestID), zap.Int("change_count", dropped))
	}
}

func (l *Lifecycle) rollback(ctx context.Context, tx persistence.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, context.Canceled) {
		l.logger.Warn("transaction rollback failed", zap.Error(err))
	}
}
