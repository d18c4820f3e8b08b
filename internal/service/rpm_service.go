package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/repository"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// RPMService manages binary package records.
type RPMService struct {
	rpms     repository.RPMRepository
	recorder *changeset.Recorder
}

// NewRPMService constructs the service.
func NewRPMService(rpms repository.RPMRepository, recorder *changeset.Recorder) *RPMService {
	return &RPMService{rpms: rpms, recorder: recorder}
}

// Import inserts a batch of packages as one unit.
func (s *RPMService) Import(ctx context.Context, rpms []domain.RPM) ([]domain.RPM, error) {
	if len(rpms) == 0 {
		return nil, apperrors.NewValidationError("no rpms given", nil)
	}
	out := make([]domain.RPM, 0, len(rpms))
	for i, rpm := range rpms {
		if err := requireFields("name", rpm.Name, "version", rpm.Version, "release", rpm.Release, "arch", rpm.Arch, "srpm_name", rpm.SRPMName); err != nil {
			return nil, fmt.Errorf("rpm %d: %w", i, err)
		}
		if rpm.Epoch < 0 {
			return nil, apperrors.NewValidationError("epoch must not be negative", map[string]any{"index": i})
		}
		if err := s.rpms.Create(ctx, &rpm); err != nil {
			return nil, fmt.Errorf("rpm %s: %w", rpm.NVRA(), err)
		}
		if err := s.recorder.Created(ctx, rpm); err != nil {
			return nil, err
		}
		out = append(out, rpm)
	}
	return out, nil
}

// Delete removes the package.
func (s *RPMService) Delete(ctx context.Context, id int64) error {
	rpm, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	before, err := s.recorder.Snapshot(ctx, *rpm)
	if err != nil {
		return err
	}
	if err := s.rpms.Delete(ctx, id); err != nil {
		return lookupError("rpm", id, err)
	}
	return s.recorder.Deleted(ctx, before, *rpm)
}

// Get fetches a package.
func (s *RPMService) Get(ctx context.Context, id int64) (*domain.RPM, error) {
	rpm, err := s.rpms.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("rpm", id, err)
	}
	return rpm, nil
}

// List returns all packages.
func (s *RPMService) List(ctx context.Context) ([]domain.RPM, error) {
	return s.rpms.List(ctx)
}
