package dto

import "github.com/spec-kit/pdc-service/internal/domain"

// PersonRequest is the body of person writes.
type PersonRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Active   *bool   `json:"active"`
}

// MaillistRequest is the body of mailing list writes.
type MaillistRequest struct {
	MailName *string `json:"mail_name"`
	Email    *string `json:"email"`
	Active   *bool   `json:"active"`
}

// ContactRoleRequest creates a role.
type ContactRoleRequest struct {
	Name string `json:"name"`
}

// RoleContactRequest is the body of role assignment writes.
type RoleContactRequest struct {
	ContactID   *int64  `json:"contact_id"`
	ContactRole *string `json:"contact_role"`
}

// ContactResponse renders a contact of any variant.
type ContactResponse struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Active   bool   `json:"active"`
	Username string `json:"username,omitempty"`
	MailName string `json:"mail_name,omitempty"`
	Email    string `json:"email,omitempty"`
}

func NewPersonResponse(p domain.Person) ContactResponse {
	return ContactResponse{ID: p.ID, Type: domain.ContactTypePerson, Active: p.Active, Username: p.Username, Email: p.Email}
}

func NewMaillistResponse(m domain.Maillist) ContactResponse {
	return ContactResponse{ID: m.ID, Type: domain.ContactTypeMaillist, Active: m.Active, MailName: m.MailName, Email: m.Email}
}

// ContactRoleResponse renders a role.
type ContactRoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoleContactResponse renders an assignment.
type RoleContactResponse struct {
	ID          int64  `json:"id"`
	ContactID   int64  `json:"contact_id"`
	ContactType string `json:"contact_type"`
	ContactRole string `json:"contact_role"`
}

func NewRoleContactResponse(rc domain.RoleContact) RoleContactResponse {
	return RoleContactResponse{ID: rc.ID, ContactID: rc.Contact.ID, ContactType: rc.Contact.ContentType, ContactRole: rc.Role.Name}
}
