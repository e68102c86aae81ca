package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
)

func newMagicLinkService(t *testing.T) *MagicLinkService {
	t.Helper()
	return NewMagicLinkService(newTestDB(t), security.SHA256Hasher{}, newChanMailer(), newTestConfig())
}

func TestRequestLinkCreatesUserAndLink(t *testing.T) {
	db := newTestDB(t)
	mailer := newChanMailer()
	svc := NewMagicLinkService(db, security.SHA256Hasher{}, mailer, newTestConfig())

	require.NoError(t, svc.RequestLink("  User@Example.COM "))
	raw := mailer.waitForToken(t)

	var user models.User
	require.NoError(t, db.Where("email = ?", "user@example.com").First(&user).Error)
	assert.False(t, user.EmailVerified)

	var link models.MagicLink
	require.NoError(t, db.Where("email = ?", "user@example.com").First(&link).Error)
	assert.Equal(t, security.SHA256Hasher{}.Hash(raw), link.TokenHash)
	assert.NotEqual(t, raw, link.TokenHash, "raw secret must never be stored")
	assert.Nil(t, link.UsedAt)
	assert.True(t, link.ExpiresAt.After(time.Now()))
}

func TestRequestLinkReusesExistingUser(t *testing.T) {
	db := newTestDB(t)
	mailer := newChanMailer()
	svc := NewMagicLinkService(db, security.SHA256Hasher{}, mailer, newTestConfig())

	require.NoError(t, svc.RequestLink("user@example.com"))
	mailer.waitForToken(t)
	require.NoError(t, svc.RequestLink("user@example.com"))
	mailer.waitForToken(t)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)

	db.Model(&models.MagicLink{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestConsumeSucceedsExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	mailer := newChanMailer()
	svc := NewMagicLinkService(db, security.SHA256Hasher{}, mailer, newTestConfig())

	require.NoError(t, svc.RequestLink("user@example.com"))
	raw := mailer.waitForToken(t)

	user, err := svc.Consume(raw)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.True(t, user.EmailVerified)
	assert.NotNil(t, user.LastLoginAt)

	var link models.MagicLink
	require.NoError(t, db.First(&link).Error)
	assert.NotNil(t, link.UsedAt)

	// second consumption collapses to the expired kind
	_, err = svc.Consume(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestConsumeUnknownToken(t *testing.T) {
	svc := newMagicLinkService(t)

	_, err := svc.Consume("no-such-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConsumePastTTL(t *testing.T) {
	db := newTestDB(t)
	hasher := security.SHA256Hasher{}
	svc := NewMagicLinkService(db, hasher, newChanMailer(), newTestConfig())

	raw, err := security.NewOpaqueSecret()
	require.NoError(t, err)

	userID := testUser().UserID
	require.NoError(t, db.Create(&models.User{UserID: userID, Email: "late@example.com"}).Error)
	require.NoError(t, db.Create(&models.MagicLink{
		Email:     "late@example.com",
		UserID:    &userID,
		TokenHash: hasher.Hash(raw),
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(-45 * time.Minute),
	}).Error)

	_, err = svc.Consume(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
