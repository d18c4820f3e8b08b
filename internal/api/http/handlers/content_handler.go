package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pdc-service/internal/api/dto"
	"github.com/spec-kit/pdc-service/internal/repository"
	"github.com/spec-kit/pdc-service/internal/service"
)

// ContentHandler exposes repo and rpm endpoints.
type ContentHandler struct {
	repos *service.RepoService
	rpms  *service.RPMService
}

func NewContentHandler(repos *service.RepoService, rpms *service.RPMService) *ContentHandler {
	return &ContentHandler{repos: repos, rpms: rpms}
}

// ListRepos handles GET /repos?release_id=&arch=.
func (h *ContentHandler) ListRepos(c *fiber.Ctx) error {
	var filter repository.RepoFilter
	if v := c.Query("release_id"); v != "" {
		filter.ReleaseID = &v
	}
	if v := c.Query("arch"); v != "" {
		filter.Arch = &v
	}
	repos, err := h.repos.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(repos, dto.NewRepoResponse)})
}

// GetRepo handles GET /repos/:id.
func (h *ContentHandler) GetRepo(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	repo, err := h.repos.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRepoResponse(*repo)})
}

// CreateRepos handles POST /repos with a single repo or a list of them.
func (h *ContentHandler) CreateRepos(c *fiber.Ctx) error {
	var reqs []dto.RepoRequest
	if isList(c.Body()) {
		if err := bind(c, &reqs); err != nil {
			return err
		}
	} else {
		var req dto.RepoRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		reqs = append(reqs, req)
	}

	repos, err := h.repos.BulkCreate(c.UserContext(), mapSlice(reqs, dto.RepoRequest.Domain))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": mapSlice(repos, dto.NewRepoResponse)})
}

// DeleteRepo handles DELETE /repos/:id.
func (h *ContentHandler) DeleteRepo(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.repos.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRPMs handles GET /rpms.
func (h *ContentHandler) ListRPMs(c *fiber.Ctx) error {
	rpms, err := h.rpms.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(rpms, dto.NewRPMResponse)})
}

// GetRPM handles GET /rpms/:id.
func (h *ContentHandler) GetRPM(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rpm, err := h.rpms.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRPMResponse(*rpm)})
}

// ImportRPMs handles POST /rpms with a list of packages.
func (h *ContentHandler) ImportRPMs(c *fiber.Ctx) error {
	var reqs []dto.RPMRequest
	if err := bind(c, &reqs); err != nil {
		return err
	}
	rpms, err := h.rpms.Import(c.UserContext(), mapSlice(reqs, dto.RPMRequest.Domain))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": mapSlice(rpms, dto.NewRPMResponse)})
}

// DeleteRPM handles DELETE /rpms/:id.
func (h *ContentHandler) DeleteRPM(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.rpms.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func isList(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}
