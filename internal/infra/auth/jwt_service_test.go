package auth

import (
	"testing"
	"time"

	"loyalty/config"
	"loyalty/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_access_secret_key_very_long_for_testing"

func newTestJWTService(t *testing.T) service.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = testSecret

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func sign(t *testing.T, claims jwt.Claims, secret string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService(&config.Config{})
	assert.ErrorIs(t, err, errMissingSecret)
}

func TestJWTService_ValidateToken(t *testing.T) {
	svc := newTestJWTService(t)
	clientID := uuid.New()
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name    string
		token   string
		want    uuid.UUID
		wantErr bool
	}{
		{
			name: "client_id claim",
			token: sign(t, &service.Claims{
				ClientID:         clientID,
				Type:             "access",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
			}, testSecret),
			want: clientID,
		},
		{
			name: "subject fallback",
			token: sign(t, &service.Claims{
				Type:             "access",
				RegisteredClaims: jwt.RegisteredClaims{Subject: clientID.String(), ExpiresAt: future},
			}, testSecret),
			want: clientID,
		},
		{
			name: "refresh token rejected",
			token: sign(t, &service.Claims{
				ClientID:         clientID,
				Type:             "refresh",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
			}, testSecret),
			wantErr: true,
		},
		{
			name: "expired",
			token: sign(t, &service.Claims{
				ClientID:         clientID,
				Type:             "access",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: past},
			}, testSecret),
			wantErr: true,
		},
		{
			name: "missing expiry",
			token: sign(t, &service.Claims{
				ClientID: clientID,
				Type:     "access",
			}, testSecret),
			wantErr: true,
		},
		{
			name: "wrong secret",
			token: sign(t, &service.Claims{
				ClientID:         clientID,
				Type:             "access",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
			}, "another_secret"),
			wantErr: true,
		},
		{
			name: "no client",
			token: sign(t, &service.Claims{
				Type:             "access",
				RegisteredClaims: jwt.RegisteredClaims{Subject: "someone", ExpiresAt: future},
			}, testSecret),
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   "not.a.jwt",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, claims.ClientID)
		})
	}
}
