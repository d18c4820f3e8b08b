package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/persistence"
)

// ChangesetStore is the in-memory audit ledger.
type ChangesetStore struct {
	db         *DB
	changesets *Table[domain.Changeset]
	changeSeq  int64
}

// NewChangesetStore creates an empty ledger on db.
func NewChangesetStore(db *DB) *ChangesetStore {
	return &ChangesetStore{db: db, changesets: NewTable[domain.Changeset](db)}
}

// Append stores cs in the transaction carried by ctx.
func (s *ChangesetStore) Append(ctx context.Context, cs *domain.Changeset) error {
	if _, ok := s.db.txFrom(ctx); !ok {
		return persistence.ErrNoTx
	}
	_, err := s.changesets.Insert(ctx, func(id int64) (domain.Changeset, error) {
		cs.ID = id
		for i := range cs.Changes {
			s.changeSeq++
			cs.Changes[i].ID = s.changeSeq
			cs.Changes[i].ChangesetID = id
		}
		return cloneChangeset(*cs), nil
	})
	return err
}

func (s *ChangesetStore) Get(ctx context.Context, id int64) (*domain.Changeset, error) {
	cs, err := s.changesets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := cloneChangeset(cs)
	return &out, nil
}

func (s *ChangesetStore) List(ctx context.Context, filter domain.ChangesetFilter) ([]domain.Changeset, error) {
	matches := s.changesets.Select(ctx, func(cs domain.Changeset) bool {
		if filter.Author != nil && cs.Author != *filter.Author {
			return false
		}
		if filter.ChangedSince != nil && cs.CommittedAt.Before(*filter.ChangedSince) {
			return false
		}
		if filter.ChangedUntil != nil && cs.CommittedAt.After(*filter.ChangedUntil) {
			return false
		}
		if filter.Model != nil && !touches(cs, *filter.Model) {
			return false
		}
		return true
	})

	sortByCommit(matches)
	if filter.NewestFirst {
		for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
			matches[i], matches[j] = matches[j], matches[i]
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			return []domain.Changeset{}, nil
		}
		matches = matches[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matches) {
		matches = matches[:filter.Limit]
	}

	out := make([]domain.Changeset, len(matches))
	for i := range matches {
		out[i] = cloneChangeset(matches[i])
	}
	return out, nil
}

func (s *ChangesetStore) ChangesForObject(ctx context.Context, model string, objectID int64) ([]domain.ObjectChange, error) {
	matches := s.changesets.Select(ctx, nil)
	sortByCommit(matches)

	var out []domain.ObjectChange
	for _, cs := range matches {
		for _, ch := range cs.Changes {
			if ch.ModelName != model || ch.ObjectID != objectID {
				continue
			}
			out = append(out, domain.ObjectChange{
				Change:      ch,
				Author:      cs.Author,
				Comment:     cs.Comment,
				CommittedAt: cs.CommittedAt,
			})
		}
	}
	return out, nil
}

func touches(cs domain.Changeset, model string) bool {
	for _, ch := range cs.Changes {
		if ch.ModelName == model {
			return true
		}
	}
	return false
}

func sortByCommit(list []domain.Changeset) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CommittedAt.Equal(list[j].CommittedAt) {
			return list[i].CommittedAt.Before(list[j].CommittedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func cloneChangeset(cs domain.Changeset) domain.Changeset {
	changes := make([]domain.Change, len(cs.Changes))
	copy(changes, cs.Changes)
	cs.Changes = changes
	return cs
}
