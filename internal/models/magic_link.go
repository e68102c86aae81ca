package models

import (
	"time"

	"github.com/google/uuid"
)

// MagicLink stores a single-use email login token. Only the SHA-256 of
// the secret is persisted; UsedAt is set exactly once.
type MagicLink struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	Email     string     `gorm:"size:255;not null;index" json:"email"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	TokenHash string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
