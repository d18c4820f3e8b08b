package dto

import "time"

// TokenRequest exchanges service-account credentials for a token.
type TokenRequest struct {
	Account string `json:"account"`
	Secret  string `json:"secret"`
}

// AuthResponse returns the bearer token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
