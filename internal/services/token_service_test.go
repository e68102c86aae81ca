package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailmark/trailmark-backend/internal/models"
)

func testUser() *models.User {
	return &models.User{
		UserID: uuid.New(),
		Email:  "user@example.com",
	}
}

func TestTokenServiceRoundTrip(t *testing.T) {
	ts := NewTokenService(newTestConfig())
	user := testUser()

	token, err := ts.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, principal.UserID)
	assert.Equal(t, user.Email, principal.Email)
}

func TestTokenServiceExpiredIsDistinguishable(t *testing.T) {
	cfg := newTestConfig()
	cfg.JWTAccessExpiry = -1 * time.Minute
	ts := NewTokenService(cfg)

	token, err := ts.Issue(testUser())
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenServiceRejectsTampering(t *testing.T) {
	ts := NewTokenService(newTestConfig())

	token, err := ts.Issue(testUser())
	require.NoError(t, err)

	_, err = ts.Parse(token + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ts.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenServiceRejectsForeignKey(t *testing.T) {
	ts := NewTokenService(newTestConfig())

	other := newTestConfig()
	other.JWTSecret = "a-completely-different-signing-key!!"
	foreign := NewTokenService(other)

	token, err := foreign.Issue(testUser())
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
