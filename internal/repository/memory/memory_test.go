package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/persistence"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

func TestDB_RollbackUndoesWrites(t *testing.T) {
	store := NewStore()
	ctx, tx, err := store.DB.Begin(context.Background())
	require.NoError(t, err)

	p := &domain.Product{Short: "rhel", Name: "RHEL"}
	require.NoError(t, store.Products.Create(ctx, p))
	p.Name = "Changed"
	require.NoError(t, store.Products.Update(ctx, p))
	require.NoError(t, tx.Rollback(ctx))

	_, err = store.Products.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestDB_FailedCommitRevertsAndReleasesLock(t *testing.T) {
	store := NewStore()
	store.DB.FailCommitsWith(errors.New("disk full"))
	ctx, tx, err := store.DB.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.RPMs.Create(ctx, &domain.RPM{Name: "bash", Version: "5", Release: "1", Arch: "x86_64", SRPMName: "bash"}))

	assert.EqualError(t, tx.Commit(ctx), "disk full")
	store.DB.FailCommitsWith(nil)

	rpms, err := store.RPMs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rpms)
	assert.NoError(t, tx.Rollback(ctx), "rollback after a finished commit is a no-op")
}

func TestDB_BeginWaitEndsWithContext(t *testing.T) {
	db := NewDB()
	_, holder, err := db.Begin(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, _, err = db.Begin(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	require.NoError(t, holder.Rollback(context.Background()))
	_, tx, err := db.Begin(context.Background())
	require.NoError(t, err, "a timed out waiter does not keep the lock")
	require.NoError(t, tx.Commit(context.Background()))
}

func TestStore_UniqueAndForeignKeys(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Products.Create(ctx, &domain.Product{Short: "rhel", Name: "RHEL"}))
	err := store.Products.Create(ctx, &domain.Product{Short: "rhel", Name: "Other"})
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	err = store.Repos.Create(ctx, &domain.Repo{ReleaseID: "missing-1", Name: "x"})
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	products, err := store.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestContacts_DeleteRefusedWhileAssigned(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	person := &domain.Person{Username: "jdoe", Email: "jdoe@example.com"}
	require.NoError(t, store.Contacts.CreatePerson(ctx, person))
	role := &domain.ContactRole{Name: "qe_leader"}
	require.NoError(t, store.RoleContacts.CreateRole(ctx, role))
	rc := &domain.RoleContact{Contact: domain.Contact{ID: person.ID}, Role: domain.ContactRole{ID: role.ID}}
	require.NoError(t, store.RoleContacts.Create(ctx, rc))
	assert.Equal(t, domain.ContactTypePerson, rc.Contact.ContentType)

	assert.Error(t, store.Contacts.DeleteContact(ctx, person.ID))

	require.NoError(t, store.RoleContacts.Delete(ctx, rc.ID))
	require.NoError(t, store.Contacts.DeleteContact(ctx, person.ID))
	_, err := store.Contacts.GetPerson(ctx, person.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestChangesetStore_AppendNeedsTransaction(t *testing.T) {
	store := NewStore()

	err := store.Changesets.Append(context.Background(), &domain.Changeset{Author: "a"})

	assert.ErrorIs(t, err, persistence.ErrNoTx)
}

func appendChangeset(t *testing.T, store *Store, cs domain.Changeset) int64 {
	t.Helper()
	ctx, tx, err := store.DB.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Changesets.Append(ctx, &cs))
	require.NoError(t, tx.Commit(ctx))
	return cs.ID
}

func TestChangesetStore_ListAndHistory(t *testing.T) {
	store := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := appendChangeset(t, store, domain.Changeset{Author: "alice", CommittedAt: base, Changes: []domain.Change{
		{ModelName: "product", ObjectID: 1, OldValue: domain.NoneValue, NewValue: []byte(`{"id":1}`)},
	}})
	second := appendChangeset(t, store, domain.Changeset{Author: "bob", CommittedAt: base.Add(time.Hour), Changes: []domain.Change{
		{ModelName: "rpm", ObjectID: 5, OldValue: domain.NoneValue, NewValue: []byte(`{"id":5}`)},
		{ModelName: "product", ObjectID: 1, OldValue: []byte(`{"id":1}`), NewValue: domain.NoneValue},
	}})
	ctx := context.Background()

	bob := "bob"
	list, err := store.Changesets.List(ctx, domain.ChangesetFilter{Author: &bob})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, second, list[0].Changes[0].ChangesetID)

	newest, err := store.Changesets.List(ctx, domain.ChangesetFilter{NewestFirst: true, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, second, newest[0].ID)

	rpm := "rpm"
	byModel, err := store.Changesets.List(ctx, domain.ChangesetFilter{Model: &rpm})
	require.NoError(t, err)
	assert.Len(t, byModel, 1)

	since := base.Add(time.Minute)
	recent, err := store.Changesets.List(ctx, domain.ChangesetFilter{ChangedSince: &since, Offset: 1})
	require.NoError(t, err)
	assert.Empty(t, recent)

	history, err := store.Changesets.ChangesForObject(ctx, "product", 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first, history[0].ChangesetID)
	assert.Equal(t, "alice", history[0].Author)
	assert.True(t, history[1].IsDelete())
}

func TestChangesetStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	id := appendChangeset(t, store, domain.Changeset{Author: "a", Changes: []domain.Change{{ModelName: "rpm", ObjectID: 1}}})

	got, err := store.Changesets.Get(context.Background(), id)
	require.NoError(t, err)
	got.Changes[0].ObjectID = 42

	again, err := store.Changesets.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Changes[0].ObjectID)
}
