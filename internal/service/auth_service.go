package service

import (
	"context"
	"time"

	"github.com/spec-kit/pdc-service/internal/auth"
	"github.com/spec-kit/pdc-service/internal/config"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// AuthService exchanges service-account credentials for bearer tokens. The
// account name becomes the author of every changeset made with the token.
type AuthService struct {
	credentials *auth.Credentials
	tokens      *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, tokens *auth.TokenManager) *AuthService {
	return &AuthService{credentials: auth.NewCredentials(cfg.ServiceAccounts), tokens: tokens}
}

// IssueToken verifies the account secret and returns a signed token.
func (s *AuthService) IssueToken(_ context.Context, account, secret string) (string, time.Time, error) {
	if !s.credentials.Verify(account, secret) {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.tokens.GenerateToken(account, true)
}
