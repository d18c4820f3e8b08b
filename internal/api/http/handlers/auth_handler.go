package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pdc-service/internal/api/dto"
	"github.com/spec-kit/pdc-service/internal/service"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// AuthHandler issues service-account tokens.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Account == "" || req.Secret == "" {
		return apperrors.NewValidationError("account and secret required", nil)
	}

	token, exp, err := h.authService.IssueToken(c.UserContext(), req.Account, req.Secret)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: exp}})
}
