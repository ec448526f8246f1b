package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        expiry,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "skillhub-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	token, jti, err := manager.GenerateAccessToken(42, "user@skillhub.io", "instructor", 3)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "user@skillhub.io", claims.Email)
	assert.Equal(t, "instructor", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
}

func TestRefreshTokenHasRefreshType(t *testing.T) {
	manager := newTestManager(time.Hour)

	token, _, err := manager.GenerateRefreshToken(1, "user@skillhub.io", "student", 0)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestValidateExpiredToken(t *testing.T) {
	manager := newTestManager(-time.Minute)

	token, _, err := manager.GenerateAccessToken(1, "user@skillhub.io", "student", 0)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := newTestManager(time.Hour)
	other := NewJWTManager(JWTConfig{Secret: "other-secret", Expiry: time.Hour, RefreshExpiry: time.Hour, Issuer: "skillhub-test"})

	token, _, err := manager.GenerateAccessToken(1, "user@skillhub.io", "student", 0)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbageToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	_, err := manager.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestTokenJTIsAreUnique(t *testing.T) {
	manager := newTestManager(time.Hour)

	_, first, err := manager.GenerateAccessToken(1, "user@skillhub.io", "student", 0)
	require.NoError(t, err)
	_, second, err := manager.GenerateAccessToken(1, "user@skillhub.io", "student", 0)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestGetTokenExpiry(t *testing.T) {
	manager := newTestManager(time.Hour)

	token, _, err := manager.GenerateAccessToken(1, "user@skillhub.io", "student", 0)
	require.NoError(t, err)

	expiry, err := manager.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)
}
