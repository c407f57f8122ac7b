package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth() *authService {
	return newAuthService("test-secret", 15*time.Minute, bcrypt.MinCost)
}

func TestAuth_HashAndCheck(t *testing.T) {
	a := newTestAuth()

	hash, err := a.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, a.CheckPassword(hash, "hunter22"))
	assert.False(t, a.CheckPassword(hash, "hunter23"))
	assert.False(t, a.CheckPassword("", "hunter22"))
}

func TestAuth_HashSaltsEachCall(t *testing.T) {
	a := newTestAuth()
	h1, err := a.HashPassword("same-password")
	require.NoError(t, err)
	h2, err := a.HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestAuth_PasswordTooLong(t *testing.T) {
	_, err := newTestAuth().HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestAuth_TokenRoundTrip(t *testing.T) {
	a := newTestAuth()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	tok, exp, err := a.NewAccessToken(42)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), exp)

	claims, err := a.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
}

func TestAuth_TokenExpired(t *testing.T) {
	a := newTestAuth()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	tok, _, err := a.NewAccessToken(42)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = a.ParseAccessToken(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuth_TokenWrongSecret(t *testing.T) {
	tok, _, err := newTestAuth().NewAccessToken(1)
	require.NoError(t, err)

	other := newAuthService("another-secret", time.Minute, bcrypt.MinCost)
	_, err = other.ParseAccessToken(tok)
	assert.Error(t, err)
}
