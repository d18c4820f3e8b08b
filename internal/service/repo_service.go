package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/repository"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// RepoService manages content delivery repositories. Bulk creation records one
// change per repo in the same changeset.
type RepoService struct {
	repos    repository.RepoRepository
	releases repository.ReleaseRepository
	recorder *changeset.Recorder
}

// NewRepoService constructs the service.
func NewRepoService(repos repository.RepoRepository, releases repository.ReleaseRepository, recorder *changeset.Recorder) *RepoService {
	return &RepoService{repos: repos, releases: releases, recorder: recorder}
}

// Create inserts a single repo.
func (s *RepoService) Create(ctx context.Context, repo domain.Repo) (*domain.Repo, error) {
	if err := requireFields(
		"release_id", repo.ReleaseID,
		"variant_uid", repo.VariantUID,
		"arch", repo.Arch,
		"service", repo.Service,
		"repo_family", repo.RepoFamily,
		"content_format", repo.ContentFormat,
		"content_category", repo.ContentCategory,
		"name", repo.Name,
	); err != nil {
		return nil, err
	}
	if _, err := s.releases.GetByReleaseID(ctx, repo.ReleaseID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("unknown release", map[string]any{"release_id": repo.ReleaseID})
		}
		return nil, err
	}
	if err := s.repos.Create(ctx, &repo); err != nil {
		return nil, err
	}
	if err := s.recorder.Created(ctx, repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// BulkCreate inserts every repo or none of them.
func (s *RepoService) BulkCreate(ctx context.Context, repos []domain.Repo) ([]domain.Repo, error) {
	if len(repos) == 0 {
		return nil, apperrors.NewValidationError("no repos given", nil)
	}
	created := make([]domain.Repo, 0, len(repos))
	for i, repo := range repos {
		out, err := s.Create(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("repo %d: %w", i, err)
		}
		created = append(created, *out)
	}
	return created, nil
}

// Delete removes the repo.
func (s *RepoService) Delete(ctx context.Context, id int64) error {
	repo, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	before, err := s.recorder.Snapshot(ctx, *repo)
	if err != nil {
		return err
	}
	if err := s.repos.Delete(ctx, id); err != nil {
		return lookupError("repo", id, err)
	}
	return s.recorder.Deleted(ctx, before, *repo)
}

// Get fetches a repo.
func (s *RepoService) Get(ctx context.Context, id int64) (*domain.Repo, error) {
	repo, err := s.repos.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("repo", id, err)
	}
	return repo, nil
}

// List returns repos matching filter.
func (s *RepoService) List(ctx context.Context, filter repository.RepoFilter) ([]domain.Repo, error) {
	return s.repos.List(ctx, filter)
}
