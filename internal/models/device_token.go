package models

import "time"

// DeviceToken is an opaque provisioning credential scoped to a
// trackable. It starts unclaimed (DeviceID nil); registering a device
// claims it. At most one unclaimed, non-revoked token exists per
// trackable at a time.
type DeviceToken struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	TrackableID string     `gorm:"size:64;not null;index" json:"trackable_id"`
	DeviceID    *string    `gorm:"size:64;index" json:"device_id"`
	TokenHash   string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at"`
}

// Claimed reports whether a device has bound itself to the token.
func (dt *DeviceToken) Claimed() bool {
	return dt.DeviceID != nil
}
