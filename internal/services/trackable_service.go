package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
	"gorm.io/gorm"
)

var ErrTrackableNotFound = errors.New("trackable not found")

// TrackableService manages trackables and answers the per-request
// access question for the trackable-scoped routes.
type TrackableService struct {
	db *gorm.DB
}

func NewTrackableService(db *gorm.DB) *TrackableService {
	return &TrackableService{db: db}
}

func (s *TrackableService) Create(userID uuid.UUID, name string) (*models.Trackable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name is required")
	}

	trackable := models.Trackable{
		TrackableID: uuid.NewString(),
		UserID:      userID,
		Name:        name,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&trackable).Error; err != nil {
		return nil, fmt.Errorf("failed to create trackable: %w", err)
	}
	return &trackable, nil
}

func (s *TrackableService) Get(trackableID string) (*models.Trackable, error) {
	var trackable models.Trackable
	err := s.db.Where("trackable_id = ?", trackableID).First(&trackable).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTrackableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trackable, nil
}

func (s *TrackableService) ListByUser(userID uuid.UUID) ([]models.Trackable, error) {
	var trackables []models.Trackable
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&trackables).Error; err != nil {
		return nil, err
	}
	return trackables, nil
}

// CanAccess decides whether the principal may act on the trackable.
// The switch is exhaustive over the closed principal set: users must
// own the trackable, devices must be registered under it.
func (s *TrackableService) CanAccess(principal security.Principal, trackableID string) (bool, error) {
	switch p := principal.(type) {
	case security.UserPrincipal:
		var count int64
		err := s.db.Model(&models.Trackable{}).
			Where("trackable_id = ? AND user_id = ?", trackableID, p.UserID).
			Count(&count).Error
		return count > 0, err
	case security.DevicePrincipal:
		var count int64
		err := s.db.Model(&models.Device{}).
			Where("trackable_id = ? AND device_id = ?", trackableID, p.DeviceID).
			Count(&count).Error
		return count > 0, err
	default:
		return false, nil
	}
}
