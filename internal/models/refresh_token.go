package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one link in a rotation chain. A rotated token has
// both RevokedAt and ReplacedBy set; presenting it again is treated as
// evidence of theft.
type RefreshToken struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash  string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	IssuedAt   time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
	ReplacedBy *string    `gorm:"size:64" json:"-"`
	UserAgent  string     `gorm:"size:512" json:"user_agent"`
	IP         string     `gorm:"size:64" json:"ip"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// Active reports whether the token can still start a rotation.
func (rt *RefreshToken) Active(now time.Time) bool {
	return rt.RevokedAt == nil && rt.ReplacedBy == nil && now.Before(rt.ExpiresAt)
}
