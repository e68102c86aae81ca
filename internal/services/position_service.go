package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/trailmark/trailmark-backend/internal/dto"
	"github.com/trailmark/trailmark-backend/internal/models"
	"gorm.io/gorm"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// PositionService appends and reads device telemetry.
type PositionService struct {
	db      *gorm.DB
	devices *DeviceService
}

func NewPositionService(db *gorm.DB, devices *DeviceService) *PositionService {
	return &PositionService{db: db, devices: devices}
}

// Report appends a position for the device's trackable.
func (s *PositionService) Report(trackableID, deviceID string, req *dto.ReportPositionRequest) (*models.Position, error) {
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, ErrInvalidCoordinates
	}

	now := time.Now().UTC()
	reportedAt := now
	if req.ReportedAt != nil {
		reportedAt = req.ReportedAt.UTC()
	}

	position := models.Position{
		TrackableID: trackableID,
		DeviceID:    deviceID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Altitude:    req.Altitude,
		ReportedAt:  reportedAt,
	}
	if err := s.db.Create(&position).Error; err != nil {
		return nil, fmt.Errorf("failed to store position: %w", err)
	}

	s.devices.TouchLastReported(trackableID, deviceID, now)
	return &position, nil
}

// List returns the most recent positions for a trackable, newest first.
func (s *PositionService) List(trackableID string, limit int) ([]models.Position, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var positions []models.Position
	err := s.db.Where("trackable_id = ?", trackableID).
		Order("reported_at DESC").
		Limit(limit).
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}
