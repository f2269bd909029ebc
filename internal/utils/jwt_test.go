package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTManager() *JWTManager {
	return NewJWTManager("test-secret-key", 15*time.Minute, 7*24*time.Hour)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := testJWTManager()

	token, err := m.GenerateAccessToken(1, "survivor1", "player", "tok-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "survivor1", claims.Username)
	assert.Equal(t, "player", claims.Role)
	assert.Equal(t, "tok-1", claims.TokenID)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "zombie-walk", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testJWTManager()
	token, err := m.GenerateAccessToken(1, "survivor1", "player", "tok-1")
	require.NoError(t, err)

	other := NewJWTManager("another-secret", 15*time.Minute, time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret-key", -time.Minute, time.Hour)
	token, err := m.GenerateAccessToken(1, "survivor1", "player", "tok-1")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshAccessToken(t *testing.T) {
	m := testJWTManager()

	refresh, err := m.GenerateRefreshToken(1, "tok-1")
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(refresh, "survivor1", "player")
	require.NoError(t, err)

	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "tok-1", claims.TokenID)
}

func TestRefreshWithAccessTokenRejected(t *testing.T) {
	m := testJWTManager()

	access, err := m.GenerateAccessToken(1, "survivor1", "player", "tok-1")
	require.NoError(t, err)

	_, err = m.RefreshAccessToken(access, "survivor1", "player")
	assert.Error(t, err)
}

func TestGetTokenExpiry(t *testing.T) {
	m := testJWTManager()
	assert.Equal(t, 15*time.Minute, m.GetTokenExpiry("access"))
	assert.Equal(t, 7*24*time.Hour, m.GetTokenExpiry("refresh"))
}
