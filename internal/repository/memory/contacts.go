package memory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pdc-service/internal/domain"
)

type contactRepo struct {
	db *DB
	t  *tables
}

func (r *contactRepo) insertBase(ctx context.Context, c *domain.Contact) error {
	_, err := r.t.contacts.Insert(ctx, func(id int64) (domain.Contact, error) {
		c.ID = id
		return *c, nil
	})
	return err
}

func (r *contactRepo) updateBase(ctx context.Context, c domain.Contact) error {
	_, err := r.t.contacts.Update(ctx, c.ID, func(cur domain.Contact) (domain.Contact, error) {
		cur.Active = c.Active
		return cur, nil
	})
	return err
}

func (r *contactRepo) CreatePerson(ctx context.Context, p *domain.Person) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.persons.Exists(ctx, 0, func(o domain.Person) bool { return o.Username == p.Username }) {
			return conflict("person")
		}
		p.ContentType = domain.ContactTypePerson
		if err := r.insertBase(ctx, &p.Contact); err != nil {
			return err
		}
		return r.t.persons.Put(ctx, p.ID, *p)
	})
}

func (r *contactRepo) UpdatePerson(ctx context.Context, p *domain.Person) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.persons.Exists(ctx, p.ID, func(o domain.Person) bool { return o.Username == p.Username }) {
			return conflict("person")
		}
		if err := r.updateBase(ctx, p.Contact); err != nil {
			return err
		}
		_, err := r.t.persons.Update(ctx, p.ID, func(cur domain.Person) (domain.Person, error) {
			cur.Username, cur.Email, cur.Active = p.Username, p.Email, p.Active
			return cur, nil
		})
		return err
	})
}

func (r *contactRepo) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	p, err := r.t.persons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *contactRepo) ListPersons(ctx context.Context) ([]domain.Person, error) {
	return r.t.persons.Select(ctx, nil), nil
}

func (r *contactRepo) CreateMaillist(ctx context.Context, m *domain.Maillist) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.maillists.Exists(ctx, 0, func(o domain.Maillist) bool { return o.MailName == m.MailName }) {
			return conflict("maillist")
		}
		m.ContentType = domain.ContactTypeMaillist
		if err := r.insertBase(ctx, &m.Contact); err != nil {
			return err
		}
		return r.t.maillists.Put(ctx, m.ID, *m)
	})
}

func (r *contactRepo) UpdateMaillist(ctx context.Context, m *domain.Maillist) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.maillists.Exists(ctx, m.ID, func(o domain.Maillist) bool { return o.MailName == m.MailName }) {
			return conflict("maillist")
		}
		if err := r.updateBase(ctx, m.Contact); err != nil {
			return err
		}
		_, err := r.t.maillists.Update(ctx, m.ID, func(cur domain.Maillist) (domain.Maillist, error) {
			cur.MailName, cur.Email, cur.Active = m.MailName, m.Email, m.Active
			return cur, nil
		})
		return err
	})
}

func (r *contactRepo) GetMaillist(ctx context.Context, id int64) (*domain.Maillist, error) {
	m, err := r.t.maillists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *contactRepo) ListMaillists(ctx context.Context) ([]domain.Maillist, error) {
	return r.t.maillists.Select(ctx, nil), nil
}

func (r *contactRepo) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	c, err := r.t.contacts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteContact cascades to the variant row like the Postgres schema does.
func (r *contactRepo) DeleteContact(ctx context.Context, id int64) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.roleContacts.Exists(ctx, 0, func(rc domain.RoleContact) bool { return rc.Contact.ID == id }) {
			return referenced("contact")
		}
		if err := r.t.contacts.Delete(ctx, id); err != nil {
			return err
		}
		for _, variant := range []func(context.Context, int64) error{r.t.persons.Delete, r.t.maillists.Delete} {
			if err := variant(ctx, id); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
		}
		return nil
	})
}

type roleContactRepo struct {
	db *DB
	t  *tables
}

func (r *roleContactRepo) CreateRole(ctx context.Context, role *domain.ContactRole) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.roles.Exists(ctx, 0, func(o domain.ContactRole) bool { return o.Name == role.Name }) {
			return conflict("contact role")
		}
		_, err := r.t.roles.Insert(ctx, func(id int64) (domain.ContactRole, error) {
			role.ID = id
			return *role, nil
		})
		return err
	})
}

func (r *roleContactRepo) GetRole(ctx context.Context, id int64) (*domain.ContactRole, error) {
	role, err := r.t.roles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleContactRepo) GetRoleByName(ctx context.Context, name string) (*domain.ContactRole, error) {
	role, err := r.t.roles.Find(ctx, func(o domain.ContactRole) bool { return o.Name == name })
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleContactRepo) ListRoles(ctx context.Context) ([]domain.ContactRole, error) {
	return r.t.roles.Select(ctx, nil), nil
}

func (r *roleContactRepo) DeleteRole(ctx context.Context, id int64) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if r.t.roleContacts.Exists(ctx, 0, func(rc domain.RoleContact) bool { return rc.Role.ID == id }) {
			return referenced("contact role")
		}
		return r.t.roles.Delete(ctx, id)
	})
}

func (r *roleContactRepo) validate(ctx context.Context, rc *domain.RoleContact) error {
	contact, err := r.t.contacts.Get(ctx, rc.Contact.ID)
	if err != nil {
		return referenced("role contact")
	}
	role, err := r.t.roles.Get(ctx, rc.Role.ID)
	if err != nil {
		return referenced("role contact")
	}
	rc.Contact, rc.Role = contact, role
	if r.t.roleContacts.Exists(ctx, rc.ID, func(o domain.RoleContact) bool {
		return o.Contact.ID == rc.Contact.ID && o.Role.ID == rc.Role.ID
	}) {
		return conflict("role contact")
	}
	return nil
}

func (r *roleContactRepo) Create(ctx context.Context, rc *domain.RoleContact) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if err := r.validate(ctx, rc); err != nil {
			return err
		}
		_, err := r.t.roleContacts.Insert(ctx, func(id int64) (domain.RoleContact, error) {
			rc.ID = id
			return *rc, nil
		})
		return err
	})
}

func (r *roleContactRepo) Update(ctx context.Context, rc *domain.RoleContact) error {
	return r.db.atomic(ctx, func(ctx context.Context) error {
		if err := r.validate(ctx, rc); err != nil {
			return err
		}
		_, err := r.t.roleContacts.Update(ctx, rc.ID, func(domain.RoleContact) (domain.RoleContact, error) {
			return *rc, nil
		})
		return err
	})
}

func (r *roleContactRepo) Delete(ctx context.Context, id int64) error {
	return r.t.roleContacts.Delete(ctx, id)
}

// GetByID reads contact and role fresh, as the Postgres join does.
func (r *roleContactRepo) GetByID(ctx context.Context, id int64) (*domain.RoleContact, error) {
	rc, err := r.t.roleContacts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rc = r.hydrate(ctx, rc)
	return &rc, nil
}

func (r *roleContactRepo) List(ctx context.Context) ([]domain.RoleContact, error) {
	rows := r.t.roleContacts.Select(ctx, nil)
	for i := range rows {
		rows[i] = r.hydrate(ctx, rows[i])
	}
	return rows, nil
}

func (r *roleContactRepo) hydrate(ctx context.Context, rc domain.RoleContact) domain.RoleContact {
	if c, err := r.t.contacts.Get(ctx, rc.Contact.ID); err == nil {
		rc.Contact = c
	}
	if role, err := r.t.roles.Get(ctx, rc.Role.ID); err == nil {
		rc.Role = role
	}
	return rc
}
