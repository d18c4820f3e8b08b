package service

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// Changeset listings are paged; larger page sizes are clamped to MaxPageSize.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ChangesetService answers read-only audit queries.
type ChangesetService struct {
	store changeset.Store
}

// NewChangesetService constructs the service.
func NewChangesetService(store changeset.Store) *ChangesetService {
	return &ChangesetService{store: store}
}

// Get returns one changeset with its changes.
func (s *ChangesetService) Get(ctx context.Context, id int64) (*domain.Changeset, error) {
	cs, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupError("changeset", id, err)
	}
	return cs, nil
}

// List returns changesets matching filter. The page size is clamped.
func (s *ChangesetService) List(ctx context.Context, filter domain.ChangesetFilter) ([]domain.Changeset, error) {
	if filter.ChangedSince != nil && filter.ChangedUntil != nil && filter.ChangedUntil.Before(*filter.ChangedSince) {
		return nil, apperrors.NewValidationError("changed_until is before changed_since", nil)
	}
	if filter.Offset < 0 {
		return nil, apperrors.NewValidationError("offset must not be negative", nil)
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultPageSize
	case filter.Limit > MaxPageSize:
		filter.Limit = MaxPageSize
	}
	return s.store.List(ctx, filter)
}

// History returns every recorded change of one object, oldest first.
func (s *ChangesetService) History(ctx context.Context, model string, objectID int64) ([]domain.ObjectChange, error) {
	if err := requireFields("model", model); err != nil {
		return nil, err
	}
	return s.store.ChangesForObject(ctx, model, objectID)
}
