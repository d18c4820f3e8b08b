//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/persistence"
	"github.com/spec-kit/pdc-service/internal/repository"
	"github.com/spec-kit/pdc-service/internal/service"
	"github.com/spec-kit/pdc-service/migrations"
)

type PostgresSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	store     *repository.ChangesetRepository
	services  *service.Services
	lifecycle *changeset.Lifecycle
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pdc"),
		tcpostgres.WithUsername("pdc"),
		tcpostgres.WithPassword("pdc"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.pool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(persistence.RunMigrations(ctx, s.pool, migrations.Files, zap.NewNop()))

	s.store = repository.NewChangesetRepository(s.pool)
	s.services = service.NewServices(service.Dependencies{
		Products:     repository.NewProductRepository(s.pool),
		Releases:     repository.NewReleaseRepository(s.pool),
		Components:   repository.NewGlobalComponentRepository(s.pool),
		Repos:        repository.NewRepoRepository(s.pool),
		RPMs:         repository.NewRPMRepository(s.pool),
		Contacts:     repository.NewContactRepository(s.pool),
		RoleContacts: repository.NewRoleContactRepository(s.pool),
		Changesets:   s.store,
	})
	aggregator := changeset.NewAggregator(s.store, nil, changeset.AggregatorConfig{
		Clock: testclock.NewClock(time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)),
	}, zap.NewNop(), nil)
	s.lifecycle = changeset.NewLifecycle(persistence.NewPgTransactor(s.pool), aggregator, nil, zap.NewNop(), nil)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(),
		`TRUNCATE changes, changesets, role_contacts, contact_roles, persons, maillists, contacts,
		 rpms, repos, releases, products, global_components RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) run(fn func(ctx context.Context) error) (*domain.Changeset, error) {
	return s.lifecycle.Run(context.Background(), changeset.RequestInfo{Author: "releng", Comment: "integration"}, fn)
}

func ptr[T any](v T) *T { return &v }

func (s *PostgresSuite) TestCommitPersistsChangesAtomically() {
	cs, err := s.run(func(ctx context.Context) error {
		product, err := s.services.Products.Create(ctx, service.ProductInput{Short: ptr("rhel"), Name: ptr("RHEL")})
		if err != nil {
			return err
		}
		_, err = s.services.Products.Update(ctx, product.ID, service.ProductInput{Name: ptr("Red Hat Enterprise Linux")})
		return err
	})
	s.Require().NoError(err)
	s.Require().NotNil(cs)

	stored, err := s.store.Get(context.Background(), cs.ID)
	s.Require().NoError(err)
	s.Equal("releng", stored.Author)
	s.Equal("integration", stored.Comment)
	s.Require().Len(stored.Changes, 2)
	s.JSONEq(`null`, string(stored.Changes[0].OldValue))
	s.JSONEq(`{"id":1,"short":"rhel","name":"RHEL"}`, string(stored.Changes[1].OldValue))
	s.JSONEq(`{"id":1,"short":"rhel","name":"Red Hat Enterprise Linux"}`, string(stored.Changes[1].NewValue))
}

func (s *PostgresSuite) TestFailedRequestRollsBackDomainAndAudit() {
	boom := errors.New("boom")
	_, err := s.run(func(ctx context.Context) error {
		if _, err := s.services.Products.Create(ctx, service.ProductInput{Short: ptr("fedora"), Name: ptr("Fedora")}); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	products, err := s.services.Products.List(context.Background())
	s.Require().NoError(err)
	s.Empty(products)

	list, err := s.store.List(context.Background(), domain.ChangesetFilter{Limit: 10})
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *PostgresSuite) TestDeletedContactHistoryUsesVariant() {
	var personID int64
	_, err := s.run(func(ctx context.Context) error {
		person, err := s.services.Contacts.CreatePerson(ctx, service.PersonInput{Username: ptr("jdoe"), Email: ptr("jdoe@example.com")})
		if err != nil {
			return err
		}
		personID = person.ID
		return nil
	})
	s.Require().NoError(err)

	cs, err := s.run(func(ctx context.Context) error {
		return s.services.Contacts.DeleteContact(ctx, personID)
	})
	s.Require().NoError(err)
	s.Require().Len(cs.Changes, 1)
	s.Equal(domain.ModelPerson, cs.Changes[0].ModelName)
	s.True(cs.Changes[0].IsDelete())

	history, err := s.store.ChangesForObject(context.Background(), domain.ModelPerson, personID)
	s.Require().NoError(err)
	s.Len(history, 2)
}

func TestChangesetAppend_RequiresTransaction(t *testing.T) {
	store := repository.NewChangesetRepository(nil)
	err := store.Append(context.Background(), &domain.Changeset{Author: "releng"})
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrNoTx)
}
