package service

import (
	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/repository"
)

// Dependencies encapsulates the repositories behind the domain services.
type Dependencies struct {
	Products     repository.ProductRepository
	Releases     repository.ReleaseRepository
	Components   repository.GlobalComponentRepository
	Repos        repository.RepoRepository
	RPMs         repository.RPMRepository
	Contacts     repository.ContactRepository
	RoleContacts repository.RoleContactRepository
	Changesets   changeset.Store
}

// Services groups every domain service over one recorder.
type Services struct {
	Products   *ProductService
	Releases   *ReleaseService
	Components *ComponentService
	Repos      *RepoService
	RPMs       *RPMService
	Contacts   *ContactService
	Changesets *ChangesetService
}

// NewServices builds the services.
func NewServices(deps Dependencies) *Services {
	recorder := changeset.NewRecorder(NewExporter(deps.Contacts))
	return &Services{
		Products:   NewProductService(deps.Products, recorder),
		Releases:   NewReleaseService(deps.Releases, deps.Products, recorder),
		Components: NewComponentService(deps.Components, recorder),
		Repos:      NewRepoService(deps.Repos, deps.Releases, recorder),
		RPMs:       NewRPMService(deps.RPMs, recorder),
		Contacts:   NewContactService(deps.Contacts, deps.RoleContacts, recorder),
		Changesets: NewChangesetService(deps.Changesets),
	}
}
