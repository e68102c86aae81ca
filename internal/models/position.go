package models

import "time"

// Position is a single telemetry report from a device.
type Position struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	TrackableID string    `gorm:"size:64;not null;index:idx_positions_trackable_time" json:"trackable_id"`
	DeviceID    string    `gorm:"size:64;not null" json:"device_id"`
	Latitude    float64   `gorm:"not null" json:"latitude"`
	Longitude   float64   `gorm:"not null" json:"longitude"`
	Altitude    *float64  `json:"altitude"`
	ReportedAt  time.Time `gorm:"not null;index:idx_positions_trackable_time" json:"reported_at"`
	CreatedAt   time.Time `json:"created_at"`
}
