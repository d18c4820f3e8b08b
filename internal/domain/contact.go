package domain

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/export"
)

// Contact type tags stored in contacts.content_type.
const (
	ContactTypeBase     = "contact"
	ContactTypePerson   = "person"
	ContactTypeMaillist = "maillist"
)

// Audit model names of the contact family.
const (
	ModelContact     = ContactTypeBase
	ModelPerson      = ContactTypePerson
	ModelMaillist    = ContactTypeMaillist
	ModelContactRole = "contactrole"
	ModelRoleContact = "rolecontact"
)

var (
	contactFields     = []string{"active"}
	personFields      = []string{"username", "email"}
	maillistFields    = []string{"mail_name", "email"}
	contactRoleFields = []string{"name"}
)

// Contact is the base row shared by every contact variant. ContentType names
// the variant table holding the rest of the record.
type Contact struct {
	ID          int64
	ContentType string
	Active      bool
}

func (c Contact) ModelName() string { return ModelContact }
func (c Contact) ObjectID() int64   { return c.ID }
func (c Contact) TypeTag() string   { return c.ContentType }
func (c Contact) BaseTag() string   { return ContactTypeBase }

// Export returns the base contact fields. Callers holding a base handle go
// through export.Exporter so the variant fields are used instead.
func (c Contact) Export(fields ...string) export.Record {
	return export.Build(contactFields, fields, c.field)
}

func (c Contact) field(name string) (any, bool) {
	switch name {
	case "id":
		return c.ID, true
	case "active":
		return c.Active, true
	}
	return nil, false
}

// Person is a contact realized as an individual.
type Person struct {
	Contact
	Username string
	Email    string
}

func (p Person) ModelName() string { return ModelPerson }

// Export returns the person fields.
func (p Person) Export(fields ...string) export.Record {
	return export.Build(personFields, fields, func(field string) (any, bool) {
		switch field {
		case "username":
			return p.Username, true
		case "email":
			return p.Email, true
		}
		return p.Contact.field(field)
	})
}

// Maillist is a contact realized as a mailing list.
type Maillist struct {
	Contact
	MailName string
	Email    string
}

func (m Maillist) ModelName() string { return ModelMaillist }

// Export returns the mailing list fields.
func (m Maillist) Export(fields ...string) export.Record {
	return export.Build(maillistFields, fields, func(field string) (any, bool) {
		switch field {
		case "mail_name":
			return m.MailName, true
		case "email":
			return m.Email, true
		}
		return m.Contact.field(field)
	})
}

// ContactRole names the responsibility a contact holds, e.g. "qe_leader".
type ContactRole struct {
	ID   int64
	Name string
}

func (r ContactRole) ModelName() string { return ModelContactRole }
func (r ContactRole) ObjectID() int64   { return r.ID }

func (r ContactRole) Export(fields ...string) export.Record {
	return export.Build(contactRoleFields, fields, func(field string) (any, bool) {
		switch field {
		case "id":
			return r.ID, true
		case "name":
			return r.Name, true
		}
		return nil, false
	})
}

// RoleContact assigns a contact to a role. Contact is held through the base
// type; its export resolves to the variant.
type RoleContact struct {
	ID      int64
	Contact Contact
	Role    ContactRole
}

func (rc RoleContact) ModelName() string { return ModelRoleContact }
func (rc RoleContact) ObjectID() int64   { return rc.ID }

// Export without an exporter can only show the base contact fields.
func (rc RoleContact) Export(fields ...string) export.Record {
	return export.NewRecord().
		Set("contact", rc.Contact.Export(fields...)).
		Set("contact_role", rc.Role.Name)
}

// ExportNested exports the contact through its variant.
func (rc RoleContact) ExportNested(ctx context.Context, exp *export.Exporter, fields ...string) (export.Record, error) {
	contact, err := exp.Export(ctx, rc.Contact, fields...)
	if err != nil {
		return export.None, err
	}
	return export.NewRecord().
		Set("contact", contact).
		Set("contact_role", rc.Role.Name), nil
}
