package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// RequireAuthor ensures the caller can be recorded as a changeset author.
func RequireAuthor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Author == "" {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
