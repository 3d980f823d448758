package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by access tokens issued by the auth service.
type Claims struct {
	ClientID uuid.UUID `json:"client_id"`
	Type     string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for validating access tokens.
// Issuing tokens belongs to the auth service; this core only verifies them.
type TokenService interface {
	// ValidateToken checks the validity of a token string.
	ValidateToken(tokenString string) (*Claims, error)
}
