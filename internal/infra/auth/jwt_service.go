// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"loyalty/config"
	"loyalty/internal/domain/service"
)

// accessTokenType is the "type" claim of tokens accepted on the loyalty API.
const accessTokenType = "access"

var (
	errMissingSecret  = errors.New("jwt access secret must be provided")
	errWrongTokenType = errors.New("token is not an access token")
	errMissingClient  = errors.New("token does not identify a client")
)

// jwtService verifies access tokens signed by the customer auth service.
type jwtService struct {
	accessSecret []byte
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errMissingSecret
	}

	return &jwtService{
		accessSecret: []byte(cfg.SecretKey.Access),
	}, nil
}

// ValidateToken parses an HMAC-signed access token. The client is read from the client_id
// claim, falling back to the subject.
func (s *jwtService) ValidateToken(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.accessSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if claims.Type != accessTokenType {
		return nil, errWrongTokenType
	}

	if claims.ClientID == uuid.Nil {
		subject, err := uuid.Parse(claims.Subject)
		if err != nil {
			return nil, errMissingClient
		}
		claims.ClientID = subject
	}

	return claims, nil
}
