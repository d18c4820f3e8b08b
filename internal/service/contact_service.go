package service

import (
	"context"

	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/repository"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// PersonInput carries writable person fields.
type PersonInput struct {
	Username *string
	Email    *string
	Active   *bool
}

// MaillistInput carries writable mailing list fields.
type MaillistInput struct {
	MailName *string
	Email    *string
	Active   *bool
}

// RoleContactInput assigns a contact to a role by name.
type RoleContactInput struct {
	ContactID *int64
	Role      *string
}

// ContactService manages persons, mailing lists, roles and role assignments.
type ContactService struct {
	contacts     repository.ContactRepository
	roleContacts repository.RoleContactRepository
	recorder     *changeset.Recorder
}

// NewContactService constructs the service.
func NewContactService(contacts repository.ContactRepository, roleContacts repository.RoleContactRepository, recorder *changeset.Recorder) *ContactService {
	return &ContactService{contacts: contacts, roleContacts: roleContacts, recorder: recorder}
}

// CreatePerson inserts a person contact.
func (s *ContactService) CreatePerson(ctx context.Context, in PersonInput) (*domain.Person, error) {
	person := &domain.Person{Contact: domain.Contact{Active: true}}
	setIf(&person.Username, in.Username)
	setIf(&person.Email, in.Email)
	setIf(&person.Active, in.Active)
	if err := requireFields("username", person.Username, "email", person.Email); err != nil {
		return nil, err
	}
	if err := s.contacts.CreatePerson(ctx, person); err != nil {
		return nil, err
	}
	if err := s.recorder.Created(ctx, *person); err != nil {
		return nil, err
	}
	return person, nil
}

// UpdatePerson applies in to the person.
func (s *ContactService) UpdatePerson(ctx context.Context, id int64, in PersonInput) (*domain.Person, error) {
	person, err := s.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	before, err := s.recorder.Snapshot(ctx, *person)
	if err != nil {
		return nil, err
	}

	setIf(&person.Username, in.Username)
	setIf(&person.Email, in.Email)
	setIf(&person.Active, in.Active)
	if err := requireFields("username", person.Username, "email", person.Email); err != nil {
		return nil, err
	}
	if err := s.contacts.UpdatePerson(ctx, person); err != nil {
		return nil, lookupError("person", id, err)
	}
	if err := s.recorder.Updated(ctx, before, *person); err != nil {
		return nil, err
	}
	return person, nil
}

// GetPerson fetches a person.
func (s *ContactService) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	person, err := s.contacts.GetPerson(ctx, id)
	if err != nil {
		return nil, lookupError("person", id, err)
	}
	return person, nil
}

// ListPersons returns all persons.
func (s *ContactService) ListPersons(ctx context.Context) ([]domain.Person, error) {
	return s.contacts.ListPersons(ctx)
}

// CreateMaillist inserts a mailing list contact.
func (s *ContactService) CreateMaillist(ctx context.Context, in MaillistInput) (*domain.Maillist, error) {
	list := &domain.Maillist{Contact: domain.Contact{Active: true}}
	setIf(&list.MailName, in.MailName)
	setIf(&list.Email, in.Email)
	setIf(&list.Active, in.Active)
	if err := requireFields("mail_name", list.MailName, "email", list.Email); err != nil {
		return nil, err
	}
	if err := s.contacts.CreateMaillist(ctx, list); err != nil {
		return nil, err
	}
	if err := s.recorder.Created(ctx, *list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateMaillist applies in to the mailing list.
func (s *ContactService) UpdateMaillist(ctx context.Context, id int64, in MaillistInput) (*domain.Maillist, error) {
	list, err := s.GetMaillist(ctx, id)
	if err != nil {
		return nil, err
	}
	before, err := s.recorder.Snapshot(ctx, *list)
	if err != nil {
		return nil, err
	}

	setIf(&list.MailName, in.MailName)
	setIf(&list.Email, in.Email)
	setIf(&list.Active, in.Active)
	if err := requireFields("mail_name", list.MailName, "email", list.Email); err != nil {
		return nil, err
	}
	if err := s.contacts.UpdateMaillist(ctx, list); err != nil {
		return nil, lookupError("maillist", id, err)
	}
	if err := s.recorder.Updated(ctx, before, *list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetMaillist fetches a mailing list.
func (s *ContactService) GetMaillist(ctx context.Context, id int64) (*domain.Maillist, error) {
	list, err := s.contacts.GetMaillist(ctx, id)
	if err != nil {
		return nil, lookupError("maillist", id, err)
	}
	return list, nil
}

// ListMaillists returns all mailing lists.
func (s *ContactService) ListMaillists(ctx context.Context) ([]domain.Maillist, error) {
	return s.contacts.ListMaillists(ctx)
}

// DeletePerson removes a person contact.
func (s *ContactService) DeletePerson(ctx context.Context, id int64) error {
	if _, err := s.GetPerson(ctx, id); err != nil {
		return err
	}
	return s.DeleteContact(ctx, id)
}

// DeleteMaillist removes a mailing list contact.
func (s *ContactService) DeleteMaillist(ctx context.Context, id int64) error {
	if _, err := s.GetMaillist(ctx, id); err != nil {
		return err
	}
	return s.DeleteContact(ctx, id)
}

// DeleteContact removes a contact of any variant. The change is recorded
// under the variant's model name.
func (s *ContactService) DeleteContact(ctx context.Context, id int64) error {
	base, err := s.contacts.GetContact(ctx, id)
	if err != nil {
		return lookupError("contact", id, err)
	}
	before, err := s.recorder.Snapshot(ctx, *base)
	if err != nil {
		return err
	}
	if err := s.contacts.DeleteContact(ctx, id); err != nil {
		return lookupError("contact", id, err)
	}
	return s.recorder.Deleted(ctx, before, leafModel{Contact: *base})
}

// CreateRole inserts a contact role.
func (s *ContactService) CreateRole(ctx context.Context, name string) (*domain.ContactRole, error) {
	if err := requireFields("name", name); err != nil {
		return nil, err
	}
	role := &domain.ContactRole{Name: name}
	if err := s.roleContacts.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	if err := s.recorder.Created(ctx, *role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole removes an unused contact role.
func (s *ContactService) DeleteRole(ctx context.Context, name string) error {
	role, err := s.roleContacts.GetRoleByName(ctx, name)
	if err != nil {
		return lookupError("contact role", name, err)
	}
	before, err := s.recorder.Snapshot(ctx, *role)
	if err != nil {
		return err
	}
	if err := s.roleContacts.DeleteRole(ctx, role.ID); err != nil {
		return lookupError("contact role", name, err)
	}
	return s.recorder.Deleted(ctx, before, *role)
}

// ListRoles returns all contact roles.
func (s *ContactService) ListRoles(ctx context.Context) ([]domain.ContactRole, error) {
	return s.roleContacts.ListRoles(ctx)
}

// CreateRoleContact assigns a contact to a role.
func (s *ContactService) CreateRoleContact(ctx context.Context, in RoleContactInput) (*domain.RoleContact, error) {
	if in.ContactID == nil || in.Role == nil {
		return nil, apperrors.NewValidationError("contact_id and contact_role are required", nil)
	}
	rc := &domain.RoleContact{}
	if err := s.resolve(ctx, rc, in); err != nil {
		return nil, err
	}
	if err := s.roleContacts.Create(ctx, rc); err != nil {
		return nil, err
	}
	if err := s.recorder.Created(ctx, *rc); err != nil {
		return nil, err
	}
	return rc, nil
}

// UpdateRoleContact moves an assignment to another contact or role.
func (s *ContactService) UpdateRoleContact(ctx context.Context, id int64, in RoleContactInput) (*domain.RoleContact, error) {
	rc, err := s.GetRoleContact(ctx, id)
	if err != nil {
		return nil, err
	}
	before, err := s.recorder.Snapshot(ctx, *rc)
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, rc, in); err != nil {
		return nil, err
	}
	if err := s.roleContacts.Update(ctx, rc); err != nil {
		return nil, lookupError("role contact", id, err)
	}
	if err := s.recorder.Updated(ctx, before, *rc); err != nil {
		return nil, err
	}
	return rc, nil
}

// DeleteRoleContact removes an assignment.
func (s *ContactService) DeleteRoleContact(ctx context.Context, id int64) error {
	rc, err := s.GetRoleContact(ctx, id)
	if err != nil {
		return err
	}
	before, err := s.recorder.Snapshot(ctx, *rc)
	if err != nil {
		return err
	}
	if err := s.roleContacts.Delete(ctx, id); err != nil {
		return lookupError("role contact", id, err)
	}
	return s.recorder.Deleted(ctx, before, *rc)
}

// GetRoleContact fetches an assignment.
func (s *ContactService) GetRoleContact(ctx context.Context, id int64) (*domain.RoleContact, error) {
	rc, err := s.roleContacts.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("role contact", id, err)
	}
	return rc, nil
}

// ListRoleContacts returns all assignments.
func (s *ContactService) ListRoleContacts(ctx context.Context) ([]domain.RoleContact, error) {
	return s.roleContacts.List(ctx)
}

func (s *ContactService) resolve(ctx context.Context, rc *domain.RoleContact, in RoleContactInput) error {
	if in.ContactID != nil {
		contact, err := s.contacts.GetContact(ctx, *in.ContactID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("unknown contact", map[string]any{"contact_id": *in.ContactID})
			}
			return err
		}
		rc.Contact = *contact
	}
	if in.Role != nil {
		role, err := s.roleContacts.GetRoleByName(ctx, *in.Role)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("unknown contact role", map[string]any{"contact_role": *in.Role})
			}
			return err
		}
		rc.Role = *role
	}
	return nil
}

// leafModel records a deleted base contact under its variant model name. The
// variant row is gone by the time the change is recorded, so it cannot be
// resolved again.
type leafModel struct {
	domain.Contact
}

func (l leafModel) ModelName() string {
	if l.ContentType == "" {
		return domain.ModelContact
	}
	return l.ContentType
}
