package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
)

func TestTrackableCreateAndList(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrackableService(db)
	owner := uuid.New()

	first, err := svc.Create(owner, "  Dog collar  ")
	require.NoError(t, err)
	assert.Equal(t, "Dog collar", first.Name)
	assert.NotEmpty(t, first.TrackableID)

	_, err = svc.Create(owner, "Van")
	require.NoError(t, err)
	_, err = svc.Create(uuid.New(), "Someone else's")
	require.NoError(t, err)

	mine, err := svc.ListByUser(owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.Create(owner, "   ")
	assert.Error(t, err)
}

func TestTrackableGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrackableService(db)

	created, err := svc.Create(uuid.New(), "Bike")
	require.NoError(t, err)

	got, err := svc.Get(created.TrackableID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get("no-such-trackable")
	assert.ErrorIs(t, err, ErrTrackableNotFound)
}

func TestCanAccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrackableService(db)
	owner := uuid.New()

	trackable, err := svc.Create(owner, "Bike")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Device{
		TrackableID: trackable.TrackableID,
		DeviceID:    "dev-1",
		Name:        "tracker",
	}).Error)

	t.Run("owner may access", func(t *testing.T) {
		ok, err := svc.CanAccess(security.UserPrincipal{UserID: owner}, trackable.TrackableID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("other user denied", func(t *testing.T) {
		ok, err := svc.CanAccess(security.UserPrincipal{UserID: uuid.New()}, trackable.TrackableID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("registered device may access", func(t *testing.T) {
		ok, err := svc.CanAccess(security.DevicePrincipal{UserID: owner, DeviceID: "dev-1"}, trackable.TrackableID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("foreign device denied", func(t *testing.T) {
		ok, err := svc.CanAccess(security.DevicePrincipal{UserID: owner, DeviceID: "dev-2"}, trackable.TrackableID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nil principal denied", func(t *testing.T) {
		ok, err := svc.CanAccess(nil, trackable.TrackableID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
