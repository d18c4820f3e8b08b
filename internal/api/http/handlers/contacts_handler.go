package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pdc-service/internal/api/dto"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/service"
)

// ContactsHandler exposes person, mailing list, role and assignment endpoints.
type ContactsHandler struct {
	contacts *service.ContactService
}

func NewContactsHandler(contacts *service.ContactService) *ContactsHandler {
	return &ContactsHandler{contacts: contacts}
}

// ListPersons handles GET /persons.
func (h *ContactsHandler) ListPersons(c *fiber.Ctx) error {
	persons, err := h.contacts.ListPersons(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(persons, dto.NewPersonResponse)})
}

// GetPerson handles GET /persons/:id.
func (h *ContactsHandler) GetPerson(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	person, err := h.contacts.GetPerson(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPersonResponse(*person)})
}

// CreatePerson handles POST /persons.
func (h *ContactsHandler) CreatePerson(c *fiber.Ctx) error {
	var req dto.PersonRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	person, err := h.contacts.CreatePerson(c.UserContext(), service.PersonInput{Username: req.Username, Email: req.Email, Active: req.Active})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewPersonResponse(*person)})
}

// UpdatePerson handles PUT and PATCH /persons/:id.
func (h *ContactsHandler) UpdatePerson(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PersonRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	person, err := h.contacts.UpdatePerson(c.UserContext(), id, service.PersonInput{Username: req.Username, Email: req.Email, Active: req.Active})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPersonResponse(*person)})
}

// DeletePerson handles DELETE /persons/:id.
func (h *ContactsHandler) DeletePerson(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.contacts.DeletePerson(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMaillists handles GET /maillists.
func (h *ContactsHandler) ListMaillists(c *fiber.Ctx) error {
	lists, err := h.contacts.ListMaillists(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(lists, dto.NewMaillistResponse)})
}

// GetMaillist handles GET /maillists/:id.
func (h *ContactsHandler) GetMaillist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.contacts.GetMaillist(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMaillistResponse(*list)})
}

// CreateMaillist handles POST /maillists.
func (h *ContactsHandler) CreateMaillist(c *fiber.Ctx) error {
	var req dto.MaillistRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.contacts.CreateMaillist(c.UserContext(), service.MaillistInput{MailName: req.MailName, Email: req.Email, Active: req.Active})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewMaillistResponse(*list)})
}

// UpdateMaillist handles PUT and PATCH /maillists/:id.
func (h *ContactsHandler) UpdateMaillist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.MaillistRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.contacts.UpdateMaillist(c.UserContext(), id, service.MaillistInput{MailName: req.MailName, Email: req.Email, Active: req.Active})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMaillistResponse(*list)})
}

// DeleteMaillist handles DELETE /maillists/:id.
func (h *ContactsHandler) DeleteMaillist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.contacts.DeleteMaillist(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRoles handles GET /contact-roles.
func (h *ContactsHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.contacts.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(roles, roleResponse)})
}

// CreateRole handles POST /contact-roles.
func (h *ContactsHandler) CreateRole(c *fiber.Ctx) error {
	var req dto.ContactRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.contacts.CreateRole(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": roleResponse(*role)})
}

// DeleteRole handles DELETE /contact-roles/:name.
func (h *ContactsHandler) DeleteRole(c *fiber.Ctx) error {
	if err := h.contacts.DeleteRole(c.UserContext(), c.Params("name")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRoleContacts handles GET /role-contacts.
func (h *ContactsHandler) ListRoleContacts(c *fiber.Ctx) error {
	rcs, err := h.contacts.ListRoleContacts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(rcs, dto.NewRoleContactResponse)})
}

// GetRoleContact handles GET /role-contacts/:id.
func (h *ContactsHandler) GetRoleContact(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rc, err := h.contacts.GetRoleContact(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleContactResponse(*rc)})
}

// CreateRoleContact handles POST /role-contacts.
func (h *ContactsHandler) CreateRoleContact(c *fiber.Ctx) error {
	var req dto.RoleContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rc, err := h.contacts.CreateRoleContact(c.UserContext(), service.RoleContactInput{ContactID: req.ContactID, Role: req.ContactRole})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewRoleContactResponse(*rc)})
}

// UpdateRoleContact handles PUT and PATCH /role-contacts/:id.
func (h *ContactsHandler) UpdateRoleContact(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RoleContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rc, err := h.contacts.UpdateRoleContact(c.UserContext(), id, service.RoleContactInput{ContactID: req.ContactID, Role: req.ContactRole})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleContactResponse(*rc)})
}

// DeleteRoleContact handles DELETE /role-contacts/:id.
func (h *ContactsHandler) DeleteRoleContact(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.contacts.DeleteRoleContact(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func roleResponse(r domain.ContactRole) dto.ContactRoleResponse {
	return dto.ContactRoleResponse{ID: r.ID, Name: r.Name}
}
