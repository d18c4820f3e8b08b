package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/repository"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// Store bundles every in-memory repository over one DB, mirroring the
// Postgres schema including its unique and foreign key constraints.
type Store struct {
	DB           *DB
	Changesets   *ChangesetStore
	Products     repository.ProductRepository
	Releases     repository.ReleaseRepository
	Components   repository.GlobalComponentRepository
	Repos        repository.RepoRepository
	RPMs         repository.RPMRepository
	Contacts     repository.ContactRepository
	RoleContacts repository.RoleContactRepository
}

// NewStore creates empty tables.
func NewStore() *Store {
	db := NewDB()
	t := &tables{
		products:     NewTable[domain.Product](db),
		releases:     NewTable[domain.Release](db),
		components:   NewTable[domain.GlobalComponent](db),
		repos:        NewTable[domain.Repo](db),
		rpms:         NewTable[domain.RPM](db),
		contacts:     NewTable[domain.Contact](db),
		persons:      NewTable[domain.Person](db),
		maillists:    NewTable[domain.Maillist](db),
		roles:        NewTable[domain.ContactRole](db),
		roleContacts: NewTable[domain.RoleContact](db),
	}
	return &Store{
		DB:           db,
		Changesets:   NewChangesetStore(db),
		Products:     &productRepo{db: db, t: t},
		Releases:     &releaseRepo{db: db, t: t},
		Components:   &componentRepo{db: db, t: t},
		Repos:        &repoRepo{db: db, t: t},
		RPMs:         &rpmRepo{db: db, t: t},
		Contacts:     &contactRepo{db: db, t: t},
		RoleContacts: &roleContactRepo{db: db, t: t},
	}
}

type tables struct {
	products     *Table[domain.Product]
	releases     *Table[domain.Release]
	components   *Table[domain.GlobalComponent]
	repos        *Table[domain.Repo]
	rpms         *Table[domain.RPM]
	contacts     *Table[domain.Contact]
	persons      *Table[domain.Person]
	maillists    *Table[domain.Maillist]
	roles        *Table[domain.ContactRole]
	roleContacts *Table[domain.RoleContact]
}

func conflict(resource string) error {
	return apperrors.NewConflict(fmt.Sprintf("%s already exists", resource), nil)
}

func referenced(resource string) error {
	return apperrors.NewConflict(fmt.Sprintf("%s references or is referenced by another record", resource), nil)
}

type productRepo struct {
	db *DB
	t  *tables
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.products.Exists(ctx, 0, func(o domain.Product) bool { return o.Short == p.Short }) {
			return conflict("product")
		}
		now := time.Now().UTC()
		_, err := r.t.products.Insert(ctx, func(id int64) (domain.Product, error) {
			p.ID, p.CreatedAt, p.UpdatedAt = id, now, now
			return *p, nil
		})
		return err
	})
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.products.Exists(ctx, p.ID, func(o domain.Product) bool { return o.Short == p.Short }) {
			return conflict("product")
		}
		row, err := r.t.products.Update(ctx, p.ID, func(cur domain.Product) (domain.Product, error) {
			next := *p
			next.CreatedAt, next.UpdatedAt = cur.CreatedAt, time.Now().UTC()
			return next, nil
		})
		if err == nil {
			*p = row
		}
		return err
	})
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.releases.Exists(ctx, 0, func(rel domain.Release) bool { return rel.ProductID != nil && *rel.ProductID == id }) {
			return referenced("product")
		}
		return r.t.products.Delete(ctx, id)
	})
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := r.t.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	return r.t.products.Select(ctx, nil), nil
}

type releaseRepo struct {
	db *DB
	t  *tables
}

func (r *releaseRepo) checkProduct(ctx context.Context, rel *domain.Release) error {
	if rel.ProductID == nil {
		return nil
	}
	if _, err := r.t.products.Get(ctx, *rel.ProductID); err != nil {
		return referenced("release")
	}
	return nil
}

func (r *releaseRepo) Create(ctx context.Context, rel *domain.Release) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.releases.Exists(ctx, 0, func(o domain.Release) bool { return o.ReleaseID == rel.ReleaseID }) {
			return conflict("release")
		}
		if err := r.checkProduct(ctx, rel); err != nil {
			return err
		}
		now := time.Now().UTC()
		_, err := r.t.releases.Insert(ctx, func(id int64) (domain.Release, error) {
			rel.ID, rel.CreatedAt, rel.UpdatedAt = id, now, now
			return *rel, nil
		})
		return err
	})
}

func (r *releaseRepo) Update(ctx context.Context, rel *domain.Release) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.releases.Exists(ctx, rel.ID, func(o domain.Release) bool { return o.ReleaseID == rel.ReleaseID }) {
			return conflict("release")
		}
		if err := r.checkProduct(ctx, rel); err != nil {
			return err
		}
		row, err := r.t.releases.Update(ctx, rel.ID, func(cur domain.Release) (domain.Release, error) {
			if cur.ReleaseID != rel.ReleaseID && r.t.repos.Exists(ctx, 0, func(repo domain.Repo) bool { return repo.ReleaseID == cur.ReleaseID }) {
				return cur, referenced("release")
			}
			next := *rel
			next.CreatedAt, next.UpdatedAt = cur.CreatedAt, time.Now().UTC()
			return next, nil
		})
		if err == nil {
			*rel = row
		}
		return err
	})
}

func (r *releaseRepo) Delete(ctx context.Context, id int64) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		rel, err := r.t.releases.Get(ctx, id)
		if err != nil {
			return err
		}
		if r.t.repos.Exists(ctx, 0, func(repo domain.Repo) bool { return repo.ReleaseID == rel.ReleaseID }) {
			return referenced("release")
		}
		return r.t.releases.Delete(ctx, id)
	})
}

func (r *releaseRepo) GetByID(ctx context.Context, id int64) (*domain.Release, error) {
	rel, err := r.t.releases.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *releaseRepo) GetByReleaseID(ctx context.Context, releaseID string) (*domain.Release, error) {
	rel, err := r.t.releases.Find(ctx, func(o domain.Release) bool { return o.ReleaseID == releaseID })
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *releaseRepo) List(ctx context.Context) ([]domain.Release, error) {
	return r.t.releases.Select(ctx, nil), nil
}

type componentRepo struct {
	db *DB
	t  *tables
}

func (r *componentRepo) Create(ctx context.Context, c *domain.GlobalComponent) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.components.Exists(ctx, 0, func(o domain.GlobalComponent) bool { return o.Name == c.Name }) {
			return conflict("global component")
		}
		now := time.Now().UTC()
		_, err := r.t.components.Insert(ctx, func(id int64) (domain.GlobalComponent, error) {
			c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
			return *c, nil
		})
		return err
	})
}

func (r *componentRepo) Update(ctx context.Context, c *domain.GlobalComponent) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.components.Exists(ctx, c.ID, func(o domain.GlobalComponent) bool { return o.Name == c.Name }) {
			return conflict("global component")
		}
		row, err := r.t.components.Update(ctx, c.ID, func(cur domain.GlobalComponent) (domain.GlobalComponent, error) {
			next := *c
			next.CreatedAt, next.UpdatedAt = cur.CreatedAt, time.Now().UTC()
			return next, nil
		})
		if err == nil {
			*c = row
		}
		return err
	})
}

func (r *componentRepo) Delete(ctx context.Context, id int64) error {
	return r.t.components.Delete(ctx, id)
}

func (r *componentRepo) GetByID(ctx context.Context, id int64) (*domain.GlobalComponent, error) {
	c, err := r.t.components.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *componentRepo) List(ctx context.Context) ([]domain.GlobalComponent, error) {
	return r.t.components.Select(ctx, nil), nil
}

type repoRepo struct {
	db *DB
	t  *tables
}

func sameRepo(a, b domain.Repo) bool {
	return a.ReleaseID == b.ReleaseID && a.VariantUID == b.VariantUID && a.Arch == b.Arch &&
		a.Service == b.Service && a.RepoFamily == b.RepoFamily && a.ContentFormat == b.ContentFormat &&
		a.ContentCategory == b.ContentCategory && a.Name == b.Name && a.Shadow == b.Shadow
}

func (r *repoRepo) Create(ctx context.Context, repo *domain.Repo) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if !r.t.releases.Exists(ctx, 0, func(rel domain.Release) bool { return rel.ReleaseID == repo.ReleaseID }) {
			return referenced("repo")
		}
		if r.t.repos.Exists(ctx, 0, func(o domain.Repo) bool { return sameRepo(o, *repo) }) {
			return conflict("repo")
		}
		_, err := r.t.repos.Insert(ctx, func(id int64) (domain.Repo, error) {
			repo.ID, repo.CreatedAt = id, time.Now().UTC()
			return *repo, nil
		})
		return err
	})
}

func (r *repoRepo) Delete(ctx context.Context, id int64) error {
	return r.t.repos.Delete(ctx, id)
}

func (r *repoRepo) GetByID(ctx context.Context, id int64) (*domain.Repo, error) {
	repo, err := r.t.repos.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *repoRepo) List(ctx context.Context, filter repository.RepoFilter) ([]domain.Repo, error) {
	return r.t.repos.Select(ctx, func(repo domain.Repo) bool {
		if filter.ReleaseID != nil && repo.ReleaseID != *filter.ReleaseID {
			return false
		}
		if filter.Arch != nil && repo.Arch != *filter.Arch {
			return false
		}
		return true
	}), nil
}

type rpmRepo struct {
	db *DB
	t  *tables
}

func (r *rpmRepo) Create(ctx context.Context, rpm *domain.RPM) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.rpms.Exists(ctx, 0, func(o domain.RPM) bool {
			return o.Name == rpm.Name && o.Epoch == rpm.Epoch && o.Version == rpm.Version && o.Release == rpm.Release && o.Arch == rpm.Arch
		}) {
			return conflict("rpm " + rpm.NVRA())
		}
		_, err := r.t.rpms.Insert(ctx, func(id int64) (domain.RPM, error) {
			rpm.ID = id
			return *rpm, nil
		})
		return err
	})
}

func (r *rpmRepo) Delete(ctx context.Context, id int64) error {
	return r.t.rpms.Delete(ctx, id)
}

func (r *rpmRepo) GetByID(ctx context.Context, id int64) (*domain.RPM, error) {
	rpm, err := r.t.rpms.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rpm, nil
}

func (r *rpmRepo) List(ctx context.Context) ([]domain.RPM, error) {
	return r.t.rpms.Select(ctx, nil), nil
}
