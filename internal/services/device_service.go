package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trailmark/trailmark-backend/internal/models"
	"gorm.io/gorm"
)

var ErrDeviceNotFound = errors.New("device not found")

// DeviceService manages registered devices and resolves a device back
// to the user owning its trackable.
type DeviceService struct {
	db     *gorm.DB
	tokens *DeviceTokenService
}

func NewDeviceService(db *gorm.DB, tokens *DeviceTokenService) *DeviceService {
	return &DeviceService{db: db, tokens: tokens}
}

// Register creates the device row for a validated token and claims the
// token, as one unit: a rejected claim leaves no device row behind.
// Registering the same device again replaces the old row.
func (s *DeviceService) Register(token *models.DeviceToken, deviceID, name string) (*models.Device, error) {
	now := time.Now().UTC()
	device := models.Device{
		TrackableID:    token.TrackableID,
		DeviceID:       deviceID,
		Name:           name,
		CreatedAt:      now,
		LastReportedAt: &now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trackable_id = ? AND device_id = ?", token.TrackableID, deviceID).
			Delete(&models.Device{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&device).Error; err != nil {
			return err
		}
		_, err := s.tokens.claim(tx, token, deviceID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrTokenAlreadyClaimed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return &device, nil
}

func (s *DeviceService) Get(trackableID, deviceID string) (*models.Device, error) {
	var device models.Device
	err := s.db.Where("trackable_id = ? AND device_id = ?", trackableID, deviceID).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (s *DeviceService) List(trackableID string) ([]models.Device, error) {
	var devices []models.Device
	if err := s.db.Where("trackable_id = ?", trackableID).Order("created_at").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// Delete removes the device and revokes its claimed token. Returns
// false when nothing matched.
func (s *DeviceService) Delete(trackableID, deviceID string) (bool, error) {
	res := s.db.Where("trackable_id = ? AND device_id = ?", trackableID, deviceID).Delete(&models.Device{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := s.tokens.RevokeByTrackableAndDevice(trackableID, deviceID); err != nil {
		return true, err
	}
	return true, nil
}

// OwnerUserID resolves the user owning the trackable a device reports
// for. Used by the device branch of authentication.
func (s *DeviceService) OwnerUserID(deviceID string) (uuid.UUID, error) {
	var raw string
	err := s.db.Raw(`
		SELECT t.user_id
		FROM devices d
		JOIN trackables t ON d.trackable_id = t.trackable_id
		WHERE d.device_id = ?
		LIMIT 1
	`, deviceID).Scan(&raw).Error
	if err != nil {
		return uuid.Nil, err
	}
	if raw == "" {
		return uuid.Nil, ErrDeviceNotFound
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

// TouchLastReported stamps the device after a telemetry report.
func (s *DeviceService) TouchLastReported(trackableID, deviceID string, at time.Time) {
	s.db.Model(&models.Device{}).
		Where("trackable_id = ? AND device_id = ?", trackableID, deviceID).
		Update("last_reported_at", at)
}
