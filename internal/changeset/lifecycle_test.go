package changeset_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/export"
	"github.com/spec-kit/pdc-service/internal/repository/memory"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

type notifierFunc func(ctx context.Context, cs *domain.Changeset)

func (f notifierFunc) ChangesetCommitted(ctx context.Context, cs *domain.Changeset) { f(ctx, cs) }

type alerterFunc func(ctx context.Context, alert domain.SizeAlert)

func (f alerterFunc) AnnounceChangeset(ctx context.Context, alert domain.SizeAlert) { f(ctx, alert) }

type LifecycleSuite struct {
	suite.Suite

	now       time.Time
	store     *memory.Store
	recorder  *changeset.Recorder
	lifecycle *changeset.Lifecycle
	notified  []*domain.Changeset
	alerts    []domain.SizeAlert
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.now = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s.store = memory.NewStore()
	s.notified = nil
	s.alerts = nil

	exp := export.NewExporter()
	exp.RegisterLeaf(domain.ContactTypePerson, func(ctx context.Context, id int64) (export.Exportable, error) {
		p, err := s.store.Contacts.GetPerson(ctx, id)
		if err != nil {
			return nil, err
		}
		return *p, nil
	})
	s.recorder = changeset.NewRecorder(exp)

	agg := changeset.NewAggregator(s.store.Changesets,
		alerterFunc(func(_ context.Context, alert domain.SizeAlert) { s.alerts = append(s.alerts, alert) }),
		changeset.AggregatorConfig{AnnounceThreshold: 2, Clock: testclock.NewClock(s.now)},
		zap.NewNop(), nil)
	s.lifecycle = changeset.NewLifecycle(s.store.DB, agg,
		notifierFunc(func(_ context.Context, cs *domain.Changeset) { s.notified = append(s.notified, cs) }),
		zap.NewNop(), nil)
}

func (s *LifecycleSuite) info() changeset.RequestInfo {
	return changeset.RequestInfo{Author: "alice", RequestID: "req-42", Comment: "rename"}
}

func (s *LifecycleSuite) createProduct(ctx context.Context, short string) *domain.Product {
	p := &domain.Product{Short: short, Name: short + " product"}
	s.Require().NoError(s.store.Products.Create(ctx, p))
	s.Require().NoError(s.recorder.Created(ctx, *p))
	return p
}

func (s *LifecycleSuite) rename(ctx context.Context, p *domain.Product, name string) {
	before, err := s.recorder.Snapshot(ctx, *p)
	s.Require().NoError(err)
	p.Name = name
	s.Require().NoError(s.store.Products.Update(ctx, p))
	s.Require().NoError(s.recorder.Updated(ctx, before, *p))
}

func (s *LifecycleSuite) changesets() []domain.Changeset {
	list, err := s.store.Changesets.List(context.Background(), domain.ChangesetFilter{})
	s.Require().NoError(err)
	return list
}

func (s *LifecycleSuite) TestCreateThenUpdatesFormOneOrderedChangeset() {
	var product *domain.Product
	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		product = s.createProduct(ctx, "rhel")
		s.rename(ctx, product, "Red Hat Enterprise Linux")
		s.rename(ctx, product, "RHEL")
		return nil
	})

	s.Require().NoError(err)
	s.Require().NotNil(cs)
	s.Require().Len(cs.Changes, 3)
	s.Equal("alice", cs.Author)
	s.Equal("req-42", cs.RequestID)
	s.Equal(s.now, cs.CommittedAt)

	s.True(cs.Changes[0].IsCreate())
	s.JSONEq(`{"id":1,"short":"rhel","name":"rhel product"}`, string(cs.Changes[0].NewValue))
	s.JSONEq(`{"id":1,"short":"rhel","name":"rhel product"}`, string(cs.Changes[1].OldValue))
	s.JSONEq(`{"id":1,"short":"rhel","name":"Red Hat Enterprise Linux"}`, string(cs.Changes[1].NewValue))
	s.JSONEq(`{"id":1,"short":"rhel","name":"RHEL"}`, string(cs.Changes[2].NewValue))

	stored, err := s.store.Changesets.Get(context.Background(), cs.ID)
	s.Require().NoError(err)
	s.Equal(cs.Changes, stored.Changes)
	s.Len(s.notified, 1)
}

func (s *LifecycleSuite) TestZeroMutationsLeaveNoChangeset() {
	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		_, err := s.store.Products.List(ctx)
		return err
	})

	s.NoError(err)
	s.Nil(cs)
	s.Empty(s.changesets())
	s.Empty(s.notified)
}

func (s *LifecycleSuite) TestNoopUpdateIsNotRecorded() {
	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		p := s.createProduct(ctx, "fedora")
		s.rename(ctx, p, p.Name)
		return nil
	})

	s.Require().NoError(err)
	s.Len(cs.Changes, 1)
}

func (s *LifecycleSuite) TestHandlerErrorDiscardsEverything() {
	boom := apperrors.NewValidationError("bad input", nil)

	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		s.createProduct(ctx, "rhel")
		return boom
	})

	s.ErrorIs(err, boom)
	s.Nil(cs)
	s.Empty(s.changesets())
	products, err := s.store.Products.List(context.Background())
	s.Require().NoError(err)
	s.Empty(products)
	s.Empty(s.notified)
}

func (s *LifecycleSuite) TestRollbackSignal() {
	_, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		s.createProduct(ctx, "rhel")
		return changeset.ErrRollback
	})

	s.ErrorIs(err, changeset.ErrRollback)
	s.Empty(s.changesets())
}

func (s *LifecycleSuite) TestCommitFailureLeavesNoTrace() {
	s.store.DB.FailCommitsWith(errors.New("disk full"))

	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		for _, short := range []string{"a", "b", "c"} {
			s.createProduct(ctx, short)
		}
		return nil
	})

	var commitErr *apperrors.CommitError
	s.Require().ErrorAs(err, &commitErr)
	s.Nil(cs)
	s.store.DB.FailCommitsWith(nil)

	s.Empty(s.changesets())
	products, err := s.store.Products.List(context.Background())
	s.Require().NoError(err)
	s.Empty(products)
	s.Empty(s.notified)
	s.Empty(s.alerts, "alerts only follow a durable commit")
}

func (s *LifecycleSuite) TestThresholdAlertsOnce() {
	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		for _, short := range []string{"a", "b", "c"} {
			s.createProduct(ctx, short)
		}
		return nil
	})

	s.Require().NoError(err)
	s.Require().Len(s.alerts, 1)
	s.Equal(cs.ID, s.alerts[0].ChangesetID)
	s.Equal(3, s.alerts[0].ChangeCount)
	s.Equal("alice", s.alerts[0].Author)
}

func (s *LifecycleSuite) TestCancellationBeforeCommitFails() {
	ctx, cancel := context.WithCancel(context.Background())

	_, err := s.lifecycle.Run(ctx, s.info(), func(ctx context.Context) error {
		s.createProduct(ctx, "rhel")
		cancel()
		return nil
	})

	s.ErrorIs(err, context.Canceled)
	s.Empty(s.changesets())
}

func (s *LifecycleSuite) TestNestedRunJoinsOuterChangeset() {
	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		s.createProduct(ctx, "outer")
		inner, err := s.lifecycle.Run(ctx, changeset.RequestInfo{Author: "ignored"}, func(ctx context.Context) error {
			s.createProduct(ctx, "inner")
			return nil
		})
		s.Nil(inner)
		return err
	})

	s.Require().NoError(err)
	s.Len(cs.Changes, 2)
	s.Equal("alice", cs.Author)
	s.Len(s.changesets(), 1)
}

func (s *LifecycleSuite) TestPanicRollsBackAndReleasesStorage() {
	s.Panics(func() {
		_, _ = s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
			s.createProduct(ctx, "rhel")
			panic("handler bug")
		})
	})

	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		s.createProduct(ctx, "rhel")
		return nil
	})
	s.Require().NoError(err)
	s.Equal(int64(2), cs.Changes[0].ObjectID, "rolled back ids are not reused")
	s.Len(s.changesets(), 1)
}

func (s *LifecycleSuite) TestPanickingNotifierKeepsCommittedChangeset() {
	agg := changeset.NewAggregator(s.store.Changesets,
		alerterFunc(func(_ context.Context, alert domain.SizeAlert) { s.alerts = append(s.alerts, alert) }),
		changeset.AggregatorConfig{AnnounceThreshold: 2, Clock: testclock.NewClock(s.now)},
		zap.NewNop(), nil)
	lifecycle := changeset.NewLifecycle(s.store.DB, agg,
		notifierFunc(func(context.Context, *domain.Changeset) { panic("broker client bug") }),
		zap.NewNop(), nil)

	var h *changeset.Handle
	var cs *domain.Changeset
	var err error
	s.NotPanics(func() {
		cs, err = lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
			h, _ = changeset.FromContext(ctx)
			s.createProduct(ctx, "rhel")
			s.createProduct(ctx, "fedora")
			return nil
		})
	})

	s.Require().NoError(err)
	s.Require().NotNil(cs)
	s.Equal(changeset.Committed, h.State())
	s.Len(s.alerts, 1, "after-commit callbacks still run")
	s.Len(s.changesets(), 1)

	_, err = s.store.Products.GetByID(context.Background(), cs.Changes[0].ObjectID)
	s.NoError(err)
}

func (s *LifecycleSuite) TestPolymorphicContactRecordsLeafFields() {
	cs, err := s.lifecycle.Run(context.Background(), s.info(), func(ctx context.Context) error {
		person := &domain.Person{Username: "jdoe", Email: "jdoe@example.com", Contact: domain.Contact{Active: true}}
		s.Require().NoError(s.store.Contacts.CreatePerson(ctx, person))
		base, err := s.store.Contacts.GetContact(ctx, person.ID)
		s.Require().NoError(err)
		return s.recorder.Created(ctx, *base)
	})

	s.Require().NoError(err)
	s.Require().Len(cs.Changes, 1)
	s.Equal(domain.ModelPerson, cs.Changes[0].ModelName)
	s.JSONEq(`{"username":"jdoe","email":"jdoe@example.com"}`, string(cs.Changes[0].NewValue))
}

func TestRecorder_OutsideUnitOfWork(t *testing.T) {
	rec := changeset.NewRecorder(export.NewExporter())

	err := rec.Created(context.Background(), domain.Product{ID: 1, Short: "x", Name: "x"})

	require.ErrorIs(t, err, changeset.ErrNoChangeset)
	_, open := changeset.FromContext(context.Background())
	assert.False(t, open)
}
