package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailmark/trailmark-backend/internal/dto"
	"github.com/trailmark/trailmark-backend/internal/security"
)

func TestReportPosition(t *testing.T) {
	db := newTestDB(t)
	tokens := NewDeviceTokenService(db, security.SHA256Hasher{})
	devices := NewDeviceService(db, tokens)
	svc := NewPositionService(db, devices)

	token := issueAndValidate(t, tokens, "track-1")
	_, err := devices.Register(token, "dev-1", "tracker")
	require.NoError(t, err)

	reported := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pos, err := svc.Report("track-1", "dev-1", &dto.ReportPositionRequest{
		Latitude:   52.52,
		Longitude:  13.405,
		ReportedAt: &reported,
	})
	require.NoError(t, err)
	assert.Equal(t, reported, pos.ReportedAt.UTC())

	device, err := devices.Get("track-1", "dev-1")
	require.NoError(t, err)
	require.NotNil(t, device.LastReportedAt)
	assert.WithinDuration(t, time.Now(), *device.LastReportedAt, 5*time.Second)
}

func TestReportPositionRejectsBadCoordinates(t *testing.T) {
	db := newTestDB(t)
	tokens := NewDeviceTokenService(db, security.SHA256Hasher{})
	devices := NewDeviceService(db, tokens)
	svc := NewPositionService(db, devices)

	for _, req := range []dto.ReportPositionRequest{
		{Latitude: 91, Longitude: 0},
		{Latitude: -91, Longitude: 0},
		{Latitude: 0, Longitude: 181},
		{Latitude: 0, Longitude: -181},
	} {
		_, err := svc.Report("track-1", "dev-1", &req)
		assert.ErrorIs(t, err, ErrInvalidCoordinates)
	}
}

func TestListPositions(t *testing.T) {
	db := newTestDB(t)
	tokens := NewDeviceTokenService(db, security.SHA256Hasher{})
	devices := NewDeviceService(db, tokens)
	svc := NewPositionService(db, devices)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		_, err := svc.Report("track-1", fmt.Sprintf("dev-%d", i%2), &dto.ReportPositionRequest{
			Latitude:   50,
			Longitude:  10,
			ReportedAt: &at,
		})
		require.NoError(t, err)
	}

	positions, err := svc.List("track-1", 3)
	require.NoError(t, err)
	require.Len(t, positions, 3)
	// newest first
	assert.True(t, positions[0].ReportedAt.After(positions[1].ReportedAt))

	all, err := svc.List("track-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
