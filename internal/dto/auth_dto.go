package dto

import (
	"time"

	"github.com/google/uuid"
)

type MagicLinkRequest struct {
	Email string `json:"email"`
}

type ConsumeRequest struct {
	Token string `json:"token"`
}

// TokenResponse carries the access token only. The refresh token
// travels as an HTTP-only cookie and never appears in a body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

type UserResponse struct {
	UserID        uuid.UUID  `json:"user_id"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
