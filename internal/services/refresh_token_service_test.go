package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
	"gorm.io/gorm"
)

var testMeta = RequestMeta{UserAgent: "test-agent", IP: "192.0.2.1"}

func newRefreshService(t *testing.T) (*RefreshTokenService, *gorm.DB, *models.User) {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewRefreshTokenService(db, security.SHA256Hasher{}, NewTokenService(cfg), cfg)

	user := testUser()
	require.NoError(t, db.Create(user).Error)
	return svc, db, user
}

func TestStartSession(t *testing.T) {
	svc, db, user := newRefreshService(t)

	access, raw, err := svc.StartSession(user, testMeta)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, raw)

	var record models.RefreshToken
	require.NoError(t, db.First(&record).Error)
	assert.Equal(t, user.UserID, record.UserID)
	assert.Equal(t, security.SHA256Hasher{}.Hash(raw), record.TokenHash)
	assert.Equal(t, "test-agent", record.UserAgent)
	assert.Equal(t, "192.0.2.1", record.IP)
	assert.Nil(t, record.RevokedAt)
	assert.Nil(t, record.ReplacedBy)
	assert.True(t, record.ExpiresAt.After(time.Now().Add(29*24*time.Hour)))
}

func TestRefreshRotates(t *testing.T) {
	svc, db, user := newRefreshService(t)

	firstAccess, parentRaw, err := svc.StartSession(user, testMeta)
	require.NoError(t, err)

	secondAccess, childRaw, err := svc.Refresh(parentRaw, testMeta)
	require.NoError(t, err)
	assert.NotEqual(t, parentRaw, childRaw, "rotation must yield a new cookie value")
	assert.NotEqual(t, firstAccess, secondAccess)

	hasher := security.SHA256Hasher{}
	var parent models.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", hasher.Hash(parentRaw)).First(&parent).Error)
	require.NotNil(t, parent.RevokedAt)
	require.NotNil(t, parent.ReplacedBy)
	assert.Equal(t, hasher.Hash(childRaw), *parent.ReplacedBy)
	assert.NotNil(t, parent.LastUsedAt)

	var child models.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", hasher.Hash(childRaw)).First(&child).Error)
	assert.True(t, child.Active(time.Now()))
}

func TestRefreshReuseDetection(t *testing.T) {
	svc, db, user := newRefreshService(t)

	_, parentRaw, err := svc.StartSession(user, testMeta)
	require.NoError(t, err)

	_, childRaw, err := svc.Refresh(parentRaw, testMeta)
	require.NoError(t, err)

	// replaying the rotated cookie is treated as theft
	_, _, err = svc.Refresh(parentRaw, testMeta)
	assert.ErrorIs(t, err, ErrReusedRefreshToken)

	// containment: the whole user's live sessions are gone, including the child
	var active int64
	db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", user.UserID).
		Count(&active)
	assert.Equal(t, int64(0), active)

	_, _, err = svc.Refresh(childRaw, testMeta)
	assert.ErrorIs(t, err, ErrRevokedRefreshToken)
}

func TestRefreshRejections(t *testing.T) {
	svc, db, user := newRefreshService(t)

	t.Run("missing cookie", func(t *testing.T) {
		_, _, err := svc.Refresh("", testMeta)
		assert.ErrorIs(t, err, ErrMissingRefreshToken)
	})

	t.Run("unknown cookie", func(t *testing.T) {
		_, _, err := svc.Refresh("never-issued", testMeta)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("revoked", func(t *testing.T) {
		_, raw, err := svc.StartSession(user, testMeta)
		require.NoError(t, err)
		svc.Logout(raw)

		_, _, err = svc.Refresh(raw, testMeta)
		assert.ErrorIs(t, err, ErrRevokedRefreshToken)
	})

	t.Run("expired", func(t *testing.T) {
		raw, err := security.NewOpaqueSecret()
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.RefreshToken{
			UserID:    user.UserID,
			TokenHash: security.SHA256Hasher{}.Hash(raw),
			IssuedAt:  time.Now().Add(-31 * 24 * time.Hour),
			ExpiresAt: time.Now().Add(-24 * time.Hour),
		}).Error)

		_, _, err = svc.Refresh(raw, testMeta)
		assert.ErrorIs(t, err, ErrExpiredRefreshToken)
	})

	t.Run("owner missing", func(t *testing.T) {
		orphan := testUser()
		raw, err := security.NewOpaqueSecret()
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.RefreshToken{
			UserID:    orphan.UserID,
			TokenHash: security.SHA256Hasher{}.Hash(raw),
			IssuedAt:  time.Now(),
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}).Error)

		_, _, err = svc.Refresh(raw, testMeta)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestLogout(t *testing.T) {
	svc, db, user := newRefreshService(t)

	_, raw, err := svc.StartSession(user, testMeta)
	require.NoError(t, err)

	svc.Logout(raw)

	var record models.RefreshToken
	require.NoError(t, db.First(&record).Error)
	assert.NotNil(t, record.RevokedAt)
	assert.Nil(t, record.ReplacedBy, "logout revokes without linking a successor")

	// never fails visibly, whatever is presented
	svc.Logout("")
	svc.Logout("garbage")
	svc.Logout(raw)
}
