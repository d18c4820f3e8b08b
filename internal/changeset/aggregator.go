package changeset

import (
	"context"
	"fmt"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/observability"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// Store is the append-only audit ledger. Append joins the transaction carried
// by ctx and assigns ids to the changeset and its changes.
type Store interface {
	Append(ctx context.Context, cs *domain.Changeset) error
	Get(ctx context.Context, id int64) (*domain.Changeset, error)
	List(ctx context.Context, filter domain.ChangesetFilter) ([]domain.Changeset, error)
	ChangesForObject(ctx context.Context, model string, objectID int64) ([]domain.ObjectChange, error)
}

// Alerter receives oversized changeset alerts. Implementations must not block.
type Alerter interface {
	AnnounceChangeset(ctx context.Context, alert domain.SizeAlert)
}

// AggregatorConfig tunes the aggregator.
type AggregatorConfig struct {
	AnnounceThreshold int
	Clock             clock.Clock
}

// Aggregator opens per-request handles and writes them to the Store.
type Aggregator struct {
	store     Store
	alerter   Alerter
	threshold int
	clock     clock.Clock
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewAggregator builds an aggregator. A nil alerter disables size alerts.
func NewAggregator(store Store, alerter Alerter, cfg AggregatorConfig, logger *zap.Logger, metrics *observability.Metrics) *Aggregator {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	return &Aggregator{
		store:     store,
		alerter:   alerter,
		threshold: cfg.AnnounceThreshold,
		clock:     clk,
		logger:    logger.Named("changeset"),
		metrics:   metrics,
	}
}

// Open returns the handle of the current request, creating it on first use.
func (a *Aggregator) Open(ctx context.Context, info RequestInfo) (context.Context, *Handle) {
	if h, ok := FromContext(ctx); ok {
		return ctx, h
	}
	h := &Handle{info: info}
	return context.WithValue(ctx, handleKey{}, h), h
}

// Add appends change to h.
func (a *Aggregator) Add(h *Handle, change domain.Change) error {
	return h.Add(change)
}

// Commit writes h to the store inside the transaction carried by ctx. The
// caller owns the transaction; the changeset is visible only once it commits.
func (a *Aggregator) Commit(ctx context.Context, h *Handle) (*domain.Changeset, error) {
	if h.state != Accumulating {
		return nil, &apperrors.CommitError{Err: fmt.Errorf("changeset is %s", h.state)}
	}
	h.state = Committing

	cs := &domain.Changeset{
		Author:      h.info.Author,
		RequestID:   h.info.RequestID,
		Comment:     h.info.Comment,
		CommittedAt: a.clock.Now().UTC(),
		Changes:     h.Changes(),
	}
	if err := a.store.Append(ctx, cs); err != nil {
		h.fail()
		a.metrics.CommitFailed()
		return nil, &apperrors.CommitError{Err: err}
	}
	h.committed = cs

	if a.alerter != nil && a.threshold > 0 && len(cs.Changes) >= a.threshold {
		alert := domain.SizeAlert{
			ChangesetID: cs.ID,
			ChangeCount: len(cs.Changes),
			Threshold:   a.threshold,
			Author:      cs.Author,
			Models:      cs.Models(),
			CommittedAt: cs.CommittedAt,
		}
		h.AfterCommit(func(ctx context.Context) {
			a.alerter.AnnounceChangeset(ctx, alert)
		})
	}

	a.logger.Debug("changeset written",
		zap.Int64("changeset_id", cs.ID),
		zap.String("author", cs.Author),
		zap.Int("change_count", len(cs.Changes)),
	)
	return cs, nil
}

// Discard drops h without any durable trace.
func (a *Aggregator) Discard(h *Handle) {
	h.fail()
}

// Store exposes the ledger for query services.
func (a *Aggregator) Store() Store { return a.store }
