package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every token and required when parsing.
const Issuer = "pdc-service"

var errNoSubject = errors.New("token subject required")

// TokenManager signs and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager; a non-positive TTL means one hour.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
}

// Claims is the token payload. Subject is recorded as changeset author.
type Claims struct {
	ServiceAccount bool `json:"svc,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for author and returns its expiry.
func (tm *TokenManager) GenerateToken(author string, serviceAccount bool) (string, time.Time, error) {
	if author == "" {
		return "", time.Time{}, errNoSubject
	}
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		ServiceAccount: serviceAccount,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   author,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature, issuer and expiry.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return tm.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errNoSubject
	}
	return claims, nil
}
