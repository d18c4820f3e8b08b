package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pdc-service/internal/domain"
)

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository builds the repository. Variant rows share the id of
// their base contacts row.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) insertBase(ctx context.Context, c *domain.Contact) error {
	const query = `INSERT INTO contacts (content_type, active) VALUES ($1,$2) RETURNING id`
	return conn(ctx, r.pool).QueryRow(ctx, query, c.ContentType, c.Active).Scan(&c.ID)
}

func (r *contactRepository) updateBase(ctx context.Context, c *domain.Contact) error {
	return expectOne(conn(ctx, r.pool).Exec(ctx, `UPDATE contacts SET active=$1 WHERE id=$2`, c.Active, c.ID))
}

func (r *contactRepository) CreatePerson(ctx context.Context, person *domain.Person) error {
	person.ContentType = domain.ContactTypePerson
	if err := r.insertBase(ctx, &person.Contact); err != nil {
		return err
	}
	const query = `INSERT INTO persons (contact_id, username, email) VALUES ($1,$2,$3)`
	_, err := conn(ctx, r.pool).Exec(ctx, query, person.ID, person.Username, person.Email)
	return mapWriteError("person", err)
}

func (r *contactRepository) UpdatePerson(ctx context.Context, person *domain.Person) error {
	if err := r.updateBase(ctx, &person.Contact); err != nil {
		return err
	}
	const query = `UPDATE persons SET username=$1, email=$2 WHERE contact_id=$3`
	return mapWriteError("person", expectOne(conn(ctx, r.pool).Exec(ctx, query, person.Username, person.Email, person.ID)))
}

func (r *contactRepository) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	const query = `
        SELECT c.id, c.content_type, c.active, p.username, p.email
        FROM contacts c JOIN persons p ON p.contact_id = c.id
        WHERE c.id=$1`
	person, err := scanPerson(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *contactRepository) ListPersons(ctx context.Context) ([]domain.Person, error) {
	const query = `
        SELECT c.id, c.content_type, c.active, p.username, p.email
        FROM contacts c JOIN persons p ON p.contact_id = c.id
        ORDER BY p.username`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Person, error) {
		return scanPerson(row)
	})
}

func (r *contactRepository) CreateMaillist(ctx context.Context, list *domain.Maillist) error {
	list.ContentType = domain.ContactTypeMaillist
	if err := r.insertBase(ctx, &list.Contact); err != nil {
		return err
	}
	const query = `INSERT INTO maillists (contact_id, mail_name, email) VALUES ($1,$2,$3)`
	_, err := conn(ctx, r.pool).Exec(ctx, query, list.ID, list.MailName, list.Email)
	return mapWriteError("maillist", err)
}

func (r *contactRepository) UpdateMaillist(ctx context.Context, list *domain.Maillist) error {
	if err := r.updateBase(ctx, &list.Contact); err != nil {
		return err
	}
	const query = `UPDATE maillists SET mail_name=$1, email=$2 WHERE contact_id=$3`
	return mapWriteError("maillist", expectOne(conn(ctx, r.pool).Exec(ctx, query, list.MailName, list.Email, list.ID)))
}

func (r *contactRepository) GetMaillist(ctx context.Context, id int64) (*domain.Maillist, error) {
	const query = `
        SELECT c.id, c.content_type, c.active, m.mail_name, m.email
        FROM contacts c JOIN maillists m ON m.contact_id = c.id
        WHERE c.id=$1`
	list, err := scanMaillist(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *contactRepository) ListMaillists(ctx context.Context) ([]domain.Maillist, error) {
	const query = `
        SELECT c.id, c.content_type, c.active, m.mail_name, m.email
        FROM contacts c JOIN maillists m ON m.contact_id = c.id
        ORDER BY m.mail_name`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Maillist, error) {
		return scanMaillist(row)
	})
}

func (r *contactRepository) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	var c domain.Contact
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT id, content_type, active FROM contacts WHERE id=$1`, id).
		Scan(&c.ID, &c.ContentType, &c.Active); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contactRepository) DeleteContact(ctx context.Context, id int64) error {
	return mapWriteError("contact", expectOne(conn(ctx, r.pool).Exec(ctx, `DELETE FROM contacts WHERE id=$1`, id)))
}

func scanPerson(row pgx.Row) (domain.Person, error) {
	var p domain.Person
	err := row.Scan(&p.ID, &p.ContentType, &p.Active, &p.Username, &p.Email)
	return p, err
}

func scanMaillist(row pgx.Row) (domain.Maillist, error) {
	var m domain.Maillist
	err := row.Scan(&m.ID, &m.ContentType, &m.Active, &m.MailName, &m.Email)
	return m, err
}
