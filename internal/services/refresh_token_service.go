package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/trailmark/trailmark-backend/internal/config"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
	"gorm.io/gorm"
)

var (
	ErrMissingRefreshToken = errors.New("missing refresh token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRevokedRefreshToken = errors.New("revoked refresh token")
	ErrExpiredRefreshToken = errors.New("expired refresh token")
	// ErrReusedRefreshToken means an already-rotated token was
	// presented again, the replay signature of a stolen cookie.
	ErrReusedRefreshToken = errors.New("reused refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// RequestMeta is the slice of request context recorded with each
// refresh session.
type RequestMeta struct {
	UserAgent string
	IP        string
}

// RefreshTokenService issues, rotates and revokes the opaque tokens
// backing a login session. Raw secrets are returned to the handler,
// which owns the cookie; they are never persisted or placed in a body.
type RefreshTokenService struct {
	db     *gorm.DB
	hasher security.SecretHasher
	tokens *TokenService
	ttl    time.Duration
}

func NewRefreshTokenService(db *gorm.DB, hasher security.SecretHasher, tokens *TokenService, cfg *config.Config) *RefreshTokenService {
	return &RefreshTokenService{
		db:     db,
		hasher: hasher,
		tokens: tokens,
		ttl:    cfg.RefreshExpiry(),
	}
}

// StartSession opens a new rotation chain for a freshly authenticated
// user and returns the access token plus the raw refresh secret.
func (s *RefreshTokenService) StartSession(user *models.User, meta RequestMeta) (accessToken, rawRefresh string, err error) {
	raw, err := security.NewOpaqueSecret()
	if err != nil {
		return "", "", err
	}
	now := time.Now().UTC()

	record := models.RefreshToken{
		UserID:    user.UserID,
		TokenHash: s.hasher.Hash(raw),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	access, err := s.tokens.Issue(user)
	if err != nil {
		return "", "", err
	}
	return access, raw, nil
}

// Refresh rotates the presented token: the parent is revoked and
// linked to a fresh child in one transaction, and a new access token
// is issued. Presenting a rotated token again fails as reuse.
func (s *RefreshTokenService) Refresh(rawCookie string, meta RequestMeta) (accessToken, rawRefresh string, err error) {
	if rawCookie == "" {
		return "", "", ErrMissingRefreshToken
	}
	now := time.Now().UTC()

	var parent models.RefreshToken
	if err := s.db.Where("token_hash = ?", s.hasher.Hash(rawCookie)).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrInvalidRefreshToken
		}
		return "", "", fmt.Errorf("failed to look up refresh token: %w", err)
	}

	switch {
	case parent.ReplacedBy != nil:
		// Theft containment: kill every live session of this user, not
		// just the replayed chain.
		if err := s.revokeAllForUser(parent.UserID, now); err != nil {
			slog.Error("failed to revoke sessions after refresh token reuse", "error", err, "user_id", parent.UserID)
		}
		return "", "", ErrReusedRefreshToken
	case parent.RevokedAt != nil:
		return "", "", ErrRevokedRefreshToken
	case now.After(parent.ExpiresAt):
		return "", "", ErrExpiredRefreshToken
	}

	var user models.User
	if err := s.db.Where("user_id = ?", parent.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", fmt.Errorf("failed to load user: %w", err)
	}

	childRaw, err := security.NewOpaqueSecret()
	if err != nil {
		return "", "", err
	}
	childHash := s.hasher.Hash(childRaw)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		child := models.RefreshToken{
			UserID:    parent.UserID,
			TokenHash: childHash,
			IssuedAt:  now,
			ExpiresAt: now.Add(s.ttl),
			UserAgent: meta.UserAgent,
			IP:        meta.IP,
		}
		if err := tx.Create(&child).Error; err != nil {
			return fmt.Errorf("failed to store rotated refresh token: %w", err)
		}

		// Conditional on replaced_by still being unset: of two
		// concurrent rotations of the same parent, exactly one wins;
		// the loser's child row is rolled back with the transaction.
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND replaced_by IS NULL", parent.ID).
			Updates(map[string]interface{}{
				"revoked_at":   now,
				"replaced_by":  childHash,
				"last_used_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReusedRefreshToken
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}

	access, err := s.tokens.Issue(&user)
	if err != nil {
		return "", "", err
	}
	return access, childRaw, nil
}

// Logout revokes the presented token if it exists. It never fails
// visibly; the handler clears the cookie regardless.
func (s *RefreshTokenService) Logout(rawCookie string) {
	if rawCookie == "" {
		return
	}
	now := time.Now().UTC()

	res := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", s.hasher.Hash(rawCookie)).
		Update("revoked_at", now)
	if res.Error != nil {
		slog.Error("failed to revoke refresh token on logout", "error", res.Error)
	}
}

func (s *RefreshTokenService) revokeAllForUser(userID uuid.UUID, now time.Time) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}
