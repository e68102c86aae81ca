package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/trailmark/trailmark-backend/internal/config"
	"github.com/trailmark/trailmark-backend/internal/dto"
	"github.com/trailmark/trailmark-backend/internal/middleware"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
	"github.com/trailmark/trailmark-backend/internal/services"
	"gorm.io/gorm"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	magic   *services.MagicLinkService
	refresh *services.RefreshTokenService
	db      *gorm.DB
	cfg     *config.Config
}

func NewAuthHandler(magic *services.MagicLinkService, refresh *services.RefreshTokenService, db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{magic: magic, refresh: refresh, db: db, cfg: cfg}
}

// RequestLink always answers 200 with an empty body: the response must
// not reveal whether the email was already registered.
func (h *AuthHandler) RequestLink(c *fiber.Ctx) error {
	var req dto.MagicLinkRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "bad_request", Message: "Invalid request body",
		})
	}

	if err := h.magic.RequestLink(req.Email); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to process login request")
	}
	return c.JSON(fiber.Map{})
}

// Consume exchanges the emailed token for a session: refresh cookie
// plus access token in the body.
func (h *AuthHandler) Consume(c *fiber.Ctx) error {
	var req dto.ConsumeRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "bad_request", Message: "Invalid request body",
		})
	}

	user, err := h.magic.Consume(req.Token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "invalid_token", Message: "The magic link token is invalid.",
			})
		case errors.Is(err, services.ErrExpiredToken):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "expired_token", Message: "The magic link has expired. Please request a new one.",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to consume magic link")
	}

	access, rawRefresh, err := h.refresh.StartSession(user, requestMeta(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to start session")
	}

	h.setRefreshCookie(c, rawRefresh)
	return c.JSON(dto.TokenResponse{AccessToken: access})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	access, rawRefresh, err := h.refresh.Refresh(c.Cookies(refreshCookieName), requestMeta(c))
	if err != nil {
		code := refreshErrorCode(err)
		if code == "" {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to refresh session")
		}
		h.clearRefreshCookie(c)
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: code, Message: "The refresh token was rejected.",
		})
	}

	h.setRefreshCookie(c, rawRefresh)
	return c.JSON(dto.TokenResponse{AccessToken: access})
}

// Logout never fails from the caller's point of view.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.refresh.Logout(c.Cookies(refreshCookieName))
	h.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c).(security.UserPrincipal)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "unauthorized", Message: "You are not authorized",
		})
	}

	var user models.User
	if err := h.db.Where("user_id = ?", principal.UserID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "user_not_found", Message: "User not found",
		})
	}

	return c.JSON(dto.UserResponse{
		UserID:        user.UserID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		LastLoginAt:   user.LastLoginAt,
	})
}

func refreshErrorCode(err error) string {
	switch {
	case errors.Is(err, services.ErrMissingRefreshToken):
		return "missing_refresh_token"
	case errors.Is(err, services.ErrInvalidRefreshToken):
		return "invalid_refresh_token"
	case errors.Is(err, services.ErrRevokedRefreshToken):
		return "revoked_refresh_token"
	case errors.Is(err, services.ErrExpiredRefreshToken):
		return "expired_refresh_token"
	case errors.Is(err, services.ErrReusedRefreshToken):
		return "reused_refresh_token"
	case errors.Is(err, services.ErrUserNotFound):
		return "user_not_found"
	}
	return ""
}

func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IP:        c.IP(),
	}
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, raw string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    raw,
		Path:     "/",
		MaxAge:   h.cfg.RefreshTTLDays * 24 * 60 * 60,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
