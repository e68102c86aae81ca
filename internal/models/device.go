package models

import "time"

// Device is a registered telemetry emitter bound to a trackable.
type Device struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	TrackableID    string     `gorm:"size:64;not null;uniqueIndex:idx_devices_trackable_device" json:"trackable_id"`
	DeviceID       string     `gorm:"size:64;not null;uniqueIndex:idx_devices_trackable_device" json:"device_id"`
	Name           string     `gorm:"size:255" json:"name"`
	CreatedAt      time.Time  `json:"created_at"`
	LastReportedAt *time.Time `json:"last_reported_at"`
}
