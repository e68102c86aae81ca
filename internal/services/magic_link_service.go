package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trailmark/trailmark-backend/internal/config"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
	"gorm.io/gorm"
)

var (
	// ErrInvalidToken means no link matches the presented secret.
	ErrInvalidToken = errors.New("invalid magic link token")
	// ErrExpiredToken covers both used and past-TTL links so the error
	// surface does not reveal which one it was.
	ErrExpiredToken = errors.New("expired or used magic link token")
)

// MagicLinkService issues and consumes single-use email login tokens.
type MagicLinkService struct {
	db     *gorm.DB
	hasher security.SecretHasher
	mailer Mailer
	ttl    time.Duration
	url    string
}

func NewMagicLinkService(db *gorm.DB, hasher security.SecretHasher, mailer Mailer, cfg *config.Config) *MagicLinkService {
	return &MagicLinkService{
		db:     db,
		hasher: hasher,
		mailer: mailer,
		ttl:    cfg.MagicLinkTTL,
		url:    cfg.MagicLinkURL,
	}
}

// RequestLink creates the user on first contact, stores a hashed
// single-use token and dispatches the sign-in mail. The response never
// reveals whether the email was already known.
func (s *MagicLinkService) RequestLink(rawEmail string) error {
	email := normalizeEmail(rawEmail)
	now := time.Now().UTC()

	raw, err := security.NewOpaqueSecret()
	if err != nil {
		return err
	}

	var user models.User
	err = s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			UserID:    uuid.New(),
			Email:     email,
			CreatedAt: now,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	link := models.MagicLink{
		Email:     email,
		UserID:    &user.UserID,
		TokenHash: s.hasher.Hash(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.Create(&link).Error; err != nil {
		return fmt.Errorf("failed to store magic link: %w", err)
	}

	// Mail errors must not fail the request.
	go func() {
		if err := s.sendLink(email, raw); err != nil {
			slog.Error("magic link mail dispatch failed", "error", err)
		}
	}()

	return nil
}

// Consume exchanges a raw secret for the verified user, exactly once.
func (s *MagicLinkService) Consume(rawToken string) (*models.User, error) {
	now := time.Now().UTC()
	hash := s.hasher.Hash(rawToken)

	var link models.MagicLink
	if err := s.db.Where("token_hash = ?", hash).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up magic link: %w", err)
	}

	if link.UsedAt != nil || now.After(link.ExpiresAt) {
		return nil, ErrExpiredToken
	}

	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional update: a concurrent consume of the same link
		// loses the race and sees zero affected rows.
		res := tx.Model(&models.MagicLink{}).
			Where("id = ? AND used_at IS NULL", link.ID).
			Update("used_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrExpiredToken
		}

		if err := tx.Where("user_id = ?", link.UserID).First(&user).Error; err != nil {
			return fmt.Errorf("failed to load user for magic link: %w", err)
		}

		if err := tx.Model(&user).Updates(map[string]interface{}{
			"email_verified": true,
			"last_login_at":  now,
		}).Error; err != nil {
			return err
		}
		user.EmailVerified = true
		user.LastLoginAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *MagicLinkService) sendLink(email, rawToken string) error {
	link := fmt.Sprintf("%s?token=%s", s.url, rawToken)
	body := fmt.Sprintf(
		"Hi,\n\nClick to sign in:\n%s\n\nThis link will expire in %d minutes. If you did not request it, you can ignore this email.",
		link, int(s.ttl.Minutes()),
	)
	return s.mailer.Send(email, "Your sign-in link", body)
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
