package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-dev/flightline-api/internal/models"
)

func signTestToken(t *testing.T, secret string, method jwt.SigningMethod, expires time.Time) string {
	t.Helper()
	claims := models.Claims{
		UserID: "inst-1",
		Role:   models.RoleInstructor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret")
	token := signTestToken(t, "secret", jwt.SigningMethodHS256, time.Now().Add(time.Hour))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "inst-1", claims.UserID)
	assert.Equal(t, models.RoleInstructor, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewTokenService("secret")
	token := signTestToken(t, "other", jwt.SigningMethodHS256, time.Now().Add(time.Hour))

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewTokenService("secret")
	token := signTestToken(t, "secret", jwt.SigningMethodHS256, time.Now().Add(-time.Hour))

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongAlgorithm(t *testing.T) {
	svc := NewTokenService("secret")
	token := signTestToken(t, "secret", jwt.SigningMethodHS512, time.Now().Add(time.Hour))

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
}
