package service

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/repository"
)

// ComponentInput carries writable global component fields.
type ComponentInput struct {
	Name        *string
	DistGitPath *string
}

// ComponentService manages global components.
type ComponentService struct {
	components repository.GlobalComponentRepository
	recorder   *changeset.Recorder
}

// NewComponentService constructs the service.
func NewComponentService(components repository.GlobalComponentRepository, recorder *changeset.Recorder) *ComponentService {
	return &ComponentService{components: components, recorder: recorder}
}

// Create inserts a component.
func (s *ComponentService) Create(ctx context.Context, in ComponentInput) (*domain.GlobalComponent, error) {
	component := &domain.GlobalComponent{Name: deref(in.Name), DistGitPath: in.DistGitPath}
	if err := requireFields("name", component.Name); err != nil {
		return nil, err
	}
	if err := s.components.Create(ctx, component); err != nil {
		return nil, err
	}
	if err := s.recorder.Created(ctx, *component); err != nil {
		return nil, err
	}
	return component, nil
}

// Update applies in to the component.
func (s *ComponentService) Update(ctx context.Context, id int64, in ComponentInput) (*domain.GlobalComponent, error) {
	component, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before, err := s.recorder.Snapshot(ctx, *component)
	if err != nil {
		return nil, err
	}

	setIf(&component.Name, in.Name)
	if in.DistGitPath != nil {
		component.DistGitPath = in.DistGitPath
	}
	if err := requireFields("name", component.Name); err != nil {
		return nil, err
	}
	if err := s.components.Update(ctx, component); err != nil {
		return nil, lookupError("global component", id, err)
	}
	if err := s.recorder.Updated(ctx, before, *component); err != nil {
		return nil, err
	}
	return component, nil
}

// Delete removes the component.
func (s *ComponentService) Delete(ctx context.Context, id int64) error {
	component, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	before, err := s.recorder.Snapshot(ctx, *component)
	if err != nil {
		return err
	}
	if err := s.components.Delete(ctx, id); err != nil {
		return lookupError("global component", id, err)
	}
	return s.recorder.Deleted(ctx, before, *component)
}

// Get fetches a component.
func (s *ComponentService) Get(ctx context.Context, id int64) (*domain.GlobalComponent, error) {
	component, err := s.components.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("global component", id, err)
	}
	return component, nil
}

// List returns all components.
func (s *ComponentService) List(ctx context.Context) ([]domain.GlobalComponent, error) {
	return s.components.List(ctx)
}
