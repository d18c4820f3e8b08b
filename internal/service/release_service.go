package service

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/repository"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// ReleaseInput carries writable release fields.
type ReleaseInput struct {
	Short       *string
	Version     *string
	Name        *string
	ReleaseType *string
	ProductID   *int64
	Active      *bool
}

// ReleaseService manages releases. The public release_id is always derived
// from short, version and type.
type ReleaseService struct {
	releases repository.ReleaseRepository
	products repository.ProductRepository
	recorder *changeset.Recorder
}

// NewReleaseService constructs the service.
func NewReleaseService(releases repository.ReleaseRepository, products repository.ProductRepository, recorder *changeset.Recorder) *ReleaseService {
	return &ReleaseService{releases: releases, products: products, recorder: recorder}
}

// Create inserts a release.
func (s *ReleaseService) Create(ctx context.Context, in ReleaseInput) (*domain.Release, error) {
	release := &domain.Release{ReleaseType: domain.ReleaseTypeGA, Active: true}
	if err := s.apply(ctx, release, in); err != nil {
		return nil, err
	}
	if err := s.releases.Create(ctx, release); err != nil {
		return nil, err
	}
	if err := s.recorder.Created(ctx, *release); err != nil {
		return nil, err
	}
	return release, nil
}

// Update applies in to the release identified by releaseID.
func (s *ReleaseService) Update(ctx context.Context, releaseID string, in ReleaseInput) (*domain.Release, error) {
	release, err := s.Get(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	before, err := s.recorder.Snapshot(ctx, *release)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, release, in); err != nil {
		return nil, err
	}
	if err := s.releases.Update(ctx, release); err != nil {
		return nil, lookupError("release", releaseID, err)
	}
	if err := s.recorder.Updated(ctx, before, *release); err != nil {
		return nil, err
	}
	return release, nil
}

// Delete removes the release.
func (s *ReleaseService) Delete(ctx context.Context, releaseID string) error {
	release, err := s.Get(ctx, releaseID)
	if err != nil {
		return err
	}
	before, err := s.recorder.Snapshot(ctx, *release)
	if err != nil {
		return err
	}
	if err := s.releases.Delete(ctx, release.ID); err != nil {
		return lookupError("release", releaseID, err)
	}
	return s.recorder.Deleted(ctx, before, *release)
}

// Get fetches a release by its public id.
func (s *ReleaseService) Get(ctx context.Context, releaseID string) (*domain.Release, error) {
	release, err := s.releases.GetByReleaseID(ctx, releaseID)
	if err != nil {
		return nil, lookupError("release", releaseID, err)
	}
	return release, nil
}

// List returns all releases.
func (s *ReleaseService) List(ctx context.Context) ([]domain.Release, error) {
	return s.releases.List(ctx)
}

func (s *ReleaseService) apply(ctx context.Context, release *domain.Release, in ReleaseInput) error {
	setIf(&release.Short, in.Short)
	setIf(&release.Version, in.Version)
	setIf(&release.Name, in.Name)
	setIf(&release.ReleaseType, in.ReleaseType)
	setIf(&release.Active, in.Active)
	if in.ProductID != nil {
		if _, err := s.products.GetByID(ctx, *in.ProductID); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("unknown product", map[string]any{"product_id": *in.ProductID})
			}
			return err
		}
		release.ProductID = in.ProductID
	}
	if err := requireFields("short", release.Short, "version", release.Version, "name", release.Name); err != nil {
		return err
	}
	release.ReleaseID = domain.BuildReleaseID(release.Short, release.Version, release.ReleaseType)
	return nil
}
