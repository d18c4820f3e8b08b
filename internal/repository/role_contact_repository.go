package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/domain"
)

const roleContactSelect = `
        SELECT rc.id, c.id, c.content_type, c.active, r.id, r.name
        FROM role_contacts rc
        JOIN contacts c ON c.id = rc.contact_id
        JOIN contact_roles r ON r.id = rc.contact_role_id`

type roleContactRepository struct {
	pool *pgxpool.Pool
}

// NewRoleContactRepository builds the repository. Contacts are loaded as base
// rows; the exporter resolves their variant.
func NewRoleContactRepository(pool *pgxpool.Pool) RoleContactRepository {
	return &roleContactRepository{pool: pool}
}

func (r *roleContactRepository) CreateRole(ctx context.Context, role *domain.ContactRole) error {
	err := conn(ctx, r.pool).QueryRow(ctx, `INSERT INTO contact_roles (name) VALUES ($1) RETURNING id`, role.Name).Scan(&role.ID)
	return mapWriteError("contact role", err)
}

func (r *roleContactRepository) GetRole(ctx context.Context, id int64) (*domain.ContactRole, error) {
	var role domain.ContactRole
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT id, name FROM contact_roles WHERE id=$1`, id).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleContactRepository) GetRoleByName(ctx context.Context, name string) (*domain.ContactRole, error) {
	var role domain.ContactRole
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT id, name FROM contact_roles WHERE name=$1`, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleContactRepository) ListRoles(ctx context.Context) ([]domain.ContactRole, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, name FROM contact_roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ContactRole, error) {
		var role domain.ContactRole
		err := row.Scan(&role.ID, &role.Name)
		return role, err
	})
}

func (r *roleContactRepository) DeleteRole(ctx context.Context, id int64) error {
	return mapWriteError("contact role", expectOne(conn(ctx, r.pool).Exec(ctx, `DELETE FROM contact_roles WHERE id=$1`, id)))
}

func (r *roleContactRepository) Create(ctx context.Context, rc *domain.RoleContact) error {
	const query = `INSERT INTO role_contacts (contact_id, contact_role_id) VALUES ($1,$2) RETURNING id`
	err := conn(ctx, r.pool).QueryRow(ctx, query, rc.Contact.ID, rc.Role.ID).Scan(&rc.ID)
	return mapWriteError("role contact", err)
}

func (r *roleContactRepository) Update(ctx context.Context, rc *domain.RoleContact) error {
	const query = `UPDATE role_contacts SET contact_id=$1, contact_role_id=$2 WHERE id=$3`
	return mapWriteError("role contact", expectOne(conn(ctx, r.pool).Exec(ctx, query, rc.Contact.ID, rc.Role.ID, rc.ID)))
}

func (r *roleContactRepository) Delete(ctx context.Context, id int64) error {
	return expectOne(conn(ctx, r.pool).Exec(ctx, `DELETE FROM role_contacts WHERE id=$1`, id))
}

func (r *roleContactRepository) GetByID(ctx context.Context, id int64) (*domain.RoleContact, error) {
	rc, err := scanRoleContact(conn(ctx, r.pool).QueryRow(ctx, roleContactSelect+` WHERE rc.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *roleContactRepository) List(ctx context.Context) ([]domain.RoleContact, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, roleContactSelect+` ORDER BY rc.id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RoleContact, error) {
		return scanRoleContact(row)
	})
}

func scanRoleContact(row pgx.Row) (domain.RoleContact, error) {
	var rc domain.RoleContact
	err := row.Scan(&rc.ID, &rc.Contact.ID, &rc.Contact.ContentType, &rc.Contact.Active, &rc.Role.ID, &rc.Role.Name)
	return rc, err
}
