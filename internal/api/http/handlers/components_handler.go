package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pdc-service/internal/api/dto"
	"github.com/spec-kit/pdc-service/internal/service"
)

// ComponentsHandler exposes global component endpoints.
type ComponentsHandler struct {
	components *service.ComponentService
}

func NewComponentsHandler(components *service.ComponentService) *ComponentsHandler {
	return &ComponentsHandler{components: components}
}

// List handles GET /global-components.
func (h *ComponentsHandler) List(c *fiber.Ctx) error {
	components, err := h.components.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(components, dto.NewComponentResponse)})
}

// Get handles GET /global-components/:id.
func (h *ComponentsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	component, err := h.components.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComponentResponse(*component)})
}

// Create handles POST /global-components.
func (h *ComponentsHandler) Create(c *fiber.Ctx) error {
	var req dto.ComponentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	component, err := h.components.Create(c.UserContext(), service.ComponentInput{Name: req.Name, DistGitPath: req.DistGitPath})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewComponentResponse(*component)})
}

// Update handles PUT and PATCH /global-components/:id.
func (h *ComponentsHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ComponentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	component, err := h.components.Update(c.UserContext(), id, service.ComponentInput{Name: req.Name, DistGitPath: req.DistGitPath})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComponentResponse(*component)})
}

// Delete handles DELETE /global-components/:id.
func (h *ComponentsHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.components.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
