package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pdc-service/internal/api/dto"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/service"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// ChangesetsHandler exposes the read-only audit log.
type ChangesetsHandler struct {
	changesets *service.ChangesetService
}

func NewChangesetsHandler(changesets *service.ChangesetService) *ChangesetsHandler {
	return &ChangesetsHandler{changesets: changesets}
}

// List handles GET /changesets.
func (h *ChangesetsHandler) List(c *fiber.Ctx) error {
	filter, err := changesetFilter(c)
	if err != nil {
		return err
	}
	list, err := h.changesets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(list, dto.NewChangesetResponse)})
}

// Get handles GET /changesets/:id.
func (h *ChangesetsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	cs, err := h.changesets.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewChangesetResponse(*cs)})
}

// History handles GET /changesets/history/:model/:id.
func (h *ChangesetsHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	history, err := h.changesets.History(c.UserContext(), c.Params("model"), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapSlice(history, dto.NewHistoryEntry)})
}

func changesetFilter(c *fiber.Ctx) (domain.ChangesetFilter, error) {
	filter := domain.ChangesetFilter{NewestFirst: true}
	if v := c.Query("author"); v != "" {
		filter.Author = &v
	}
	if v := c.Query("resource"); v != "" {
		filter.Model = &v
	}

	var err error
	if filter.ChangedSince, err = queryTime(c, "changed_since"); err != nil {
		return filter, err
	}
	if filter.ChangedUntil, err = queryTime(c, "changed_until"); err != nil {
		return filter, err
	}

	switch c.Query("ordering", "-committed_at") {
	case "-committed_at":
	case "committed_at":
		filter.NewestFirst = false
	default:
		return filter, apperrors.NewValidationError("unsupported ordering", map[string]any{"ordering": c.Query("ordering")})
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		return filter, err
	}
	size, err := queryInt(c, "page_size", service.DefaultPageSize)
	if err != nil {
		return filter, err
	}
	if page < 1 || size < 1 {
		return filter, apperrors.NewValidationError("page and page_size must be positive", nil)
	}
	size = min(size, service.MaxPageSize)
	filter.Limit = size
	filter.Offset = (page - 1) * size
	return filter, nil
}

func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
}

func queryInt(c *fiber.Ctx, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return n, nil
}
