package models

import (
	"time"

	"github.com/google/uuid"
)

// User rows are created lazily on the first magic-link request for an
// email address. EmailVerified flips to true on first consumption.
type User struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Email         string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	EmailVerified bool       `gorm:"not null;default:false" json:"email_verified"`
	DisplayName   *string    `gorm:"size:255" json:"display_name"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at"`
}
