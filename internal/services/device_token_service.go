package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
	"gorm.io/gorm"
)

var (
	ErrUnauthorizedDeviceToken = errors.New("invalid device token")
	// ErrTokenAlreadyClaimed means a claim attempt carried a device id
	// different from the one already bound to the token.
	ErrTokenAlreadyClaimed = errors.New("device token already claimed")
)

// DeviceTokenService manages the opaque provisioning tokens that bind
// a physical device to a trackable.
type DeviceTokenService struct {
	db     *gorm.DB
	hasher security.SecretHasher
}

func NewDeviceTokenService(db *gorm.DB, hasher security.SecretHasher) *DeviceTokenService {
	return &DeviceTokenService{db: db, hasher: hasher}
}

// Issue mints a new unclaimed token for the trackable. Any previous
// unclaimed token is revoked first, so at most one is live at a time.
// Claimed tokens are in use by a device and are never touched here.
func (s *DeviceTokenService) Issue(trackableID string) (string, error) {
	raw, err := security.NewOpaqueSecret()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DeviceToken{}).
			Where("trackable_id = ? AND device_id IS NULL AND revoked_at IS NULL", trackableID).
			Update("revoked_at", now).Error; err != nil {
			return fmt.Errorf("failed to revoke stale device tokens: %w", err)
		}

		row := models.DeviceToken{
			TrackableID: trackableID,
			TokenHash:   s.hasher.Hash(raw),
			CreatedAt:   now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to store device token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return raw, nil
}

// Claim binds a device id to an unclaimed token. Claiming again with
// the same id is a no-op; a different id is rejected.
func (s *DeviceTokenService) Claim(token *models.DeviceToken, deviceID string) (*models.DeviceToken, error) {
	return s.claim(s.db, token, deviceID)
}

func (s *DeviceTokenService) claim(db *gorm.DB, token *models.DeviceToken, deviceID string) (*models.DeviceToken, error) {
	if token.DeviceID != nil {
		if *token.DeviceID == deviceID {
			return token, nil
		}
		return nil, ErrTokenAlreadyClaimed
	}

	// Conditional on the stored row still being unclaimed (or already
	// ours): a caller holding a stale unclaimed copy cannot rebind a
	// token another device claimed in the meantime.
	res := db.Model(&models.DeviceToken{}).
		Where("id = ? AND (device_id IS NULL OR device_id = ?)", token.ID, deviceID).
		Update("device_id", deviceID)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to claim device token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrTokenAlreadyClaimed
	}
	token.DeviceID = &deviceID
	return token, nil
}

// Validate resolves a raw secret to its non-revoked token row. The
// caller decides whether an unclaimed token is acceptable.
func (s *DeviceTokenService) Validate(raw string) (*models.DeviceToken, error) {
	var token models.DeviceToken
	err := s.db.Where("token_hash = ?", s.hasher.Hash(raw)).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorizedDeviceToken
		}
		return nil, fmt.Errorf("failed to look up device token: %w", err)
	}
	if token.RevokedAt != nil {
		return nil, ErrUnauthorizedDeviceToken
	}
	return &token, nil
}

// RevokeByTrackableAndDevice revokes the claimed token of a device,
// used when the device itself is removed.
func (s *DeviceTokenService) RevokeByTrackableAndDevice(trackableID, deviceID string) error {
	now := time.Now().UTC()
	return s.db.Model(&models.DeviceToken{}).
		Where("trackable_id = ? AND device_id = ? AND revoked_at IS NULL", trackableID, deviceID).
		Update("revoked_at", now).Error
}
