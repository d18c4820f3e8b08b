package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: c.Params(name)})
	}
	return id, nil
}

// bind decodes the request body into out. A PATCH must name at least one field.
func bind(c *fiber.Ctx, out any) error {
	if c.Method() == fiber.MethodPatch {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(c.Body(), &fields); err != nil || len(fields) == 0 {
			return apperrors.NewValidationError("partial update must change at least one field", nil)
		}
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
