package repository

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/domain"
)

// ProductRepository manages product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// ReleaseRepository manages release persistence.
type ReleaseRepository interface {
	Create(ctx context.Context, release *domain.Release) error
	Update(ctx context.Context, release *domain.Release) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Release, error)
	GetByReleaseID(ctx context.Context, releaseID string) (*domain.Release, error)
	List(ctx context.Context) ([]domain.Release, error)
}

// GlobalComponentRepository manages global component persistence.
type GlobalComponentRepository interface {
	Create(ctx context.Context, component *domain.GlobalComponent) error
	Update(ctx context.Context, component *domain.GlobalComponent) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.GlobalComponent, error)
	List(ctx context.Context) ([]domain.GlobalComponent, error)
}

// RepoFilter narrows repo listings.
type RepoFilter struct {
	ReleaseID *string
	Arch      *string
}

// RepoRepository manages content delivery repositories.
type RepoRepository interface {
	Create(ctx context.Context, repo *domain.Repo) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Repo, error)
	List(ctx context.Context, filter RepoFilter) ([]domain.Repo, error)
}

// RPMRepository manages binary package records.
type RPMRepository interface {
	Create(ctx context.Context, rpm *domain.RPM) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.RPM, error)
	List(ctx context.Context) ([]domain.RPM, error)
}

// ContactRepository stores contacts and their person and mailing list variants.
type ContactRepository interface {
	CreatePerson(ctx context.Context, person *domain.Person) error
	UpdatePerson(ctx context.Context, person *domain.Person) error
	GetPerson(ctx context.Context, id int64) (*domain.Person, error)
	ListPersons(ctx context.Context) ([]domain.Person, error)

	CreateMaillist(ctx context.Context, list *domain.Maillist) error
	UpdateMaillist(ctx context.Context, list *domain.Maillist) error
	GetMaillist(ctx context.Context, id int64) (*domain.Maillist, error)
	ListMaillists(ctx context.Context) ([]domain.Maillist, error)

	// GetContact loads the base row only.
	GetContact(ctx context.Context, id int64) (*domain.Contact, error)
	// DeleteContact removes the base row together with its variant.
	DeleteContact(ctx context.Context, id int64) error
}

// RoleContactRepository stores contact roles and role assignments.
type RoleContactRepository interface {
	CreateRole(ctx context.Context, role *domain.ContactRole) error
	GetRole(ctx context.Context, id int64) (*domain.ContactRole, error)
	GetRoleByName(ctx context.Context, name string) (*domain.ContactRole, error)
	ListRoles(ctx context.Context) ([]domain.ContactRole, error)
	DeleteRole(ctx context.Context, id int64) error

	Create(ctx context.Context, rc *domain.RoleContact) error
	Update(ctx context.Context, rc *domain.RoleContact) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.RoleContact, error)
	List(ctx context.Context) ([]domain.RoleContact, error)
}
