package models

import (
	"time"

	"github.com/google/uuid"
)

// Trackable is an entity whose position is being tracked. TrackableID
// is the public slug used in URLs; UserID is the owning user.
type Trackable struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	TrackableID string    `gorm:"size:64;not null;uniqueIndex" json:"trackable_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
