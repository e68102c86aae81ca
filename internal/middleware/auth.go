package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/trailmark/trailmark-backend/internal/dto"
	"github.com/trailmark/trailmark-backend/internal/security"
	"github.com/trailmark/trailmark-backend/internal/services"
)

const principalKey = "principal"

// ResolvePrincipal inspects the request's credential material and
// attaches a typed principal, or leaves the request anonymous. It runs
// before any business logic; whether anonymous is acceptable is the
// per-route authorization's call.
//
// Bearer branch: an expired access token short-circuits with an
// explicit expired_token response so clients know to refresh; any
// other verification failure falls through unauthenticated so the
// device scheme can still be tried.
//
// Device branch: only a claimed token authenticates. The owning user
// is resolved through the device registration records.
func ResolvePrincipal(tokens *services.TokenService, deviceTokens *services.DeviceTokenService, devices *services.DeviceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			principal, err := tokens.Parse(raw)
			switch {
			case err == nil:
				c.Locals(principalKey, security.Principal(principal))
				return c.Next()
			case errors.Is(err, services.ErrTokenExpired):
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: "expired_token", Message: "Token expired",
				})
			}
			// other failures: fall through unauthenticated
		}

		if raw := strings.TrimSpace(c.Get("X-Device-Token")); raw != "" {
			token, err := deviceTokens.Validate(raw)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: "invalid_device_token", Message: "Device token is invalid or revoked",
				})
			}
			if !token.Claimed() {
				// an unclaimed token is a provisioning artifact, not a credential
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: "invalid_device_token", Message: "Device token is not claimed",
				})
			}

			userID, err := devices.OwnerUserID(*token.DeviceID)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: "invalid_device_token", Message: "Device is not registered",
				})
			}

			c.Locals(principalKey, security.Principal(security.DevicePrincipal{
				UserID:   userID,
				DeviceID: *token.DeviceID,
			}))
		}

		return c.Next()
	}
}

// GetPrincipal returns the principal attached by ResolvePrincipal, or
// nil for anonymous requests.
func GetPrincipal(c *fiber.Ctx) security.Principal {
	if p, ok := c.Locals(principalKey).(security.Principal); ok {
		return p
	}
	return nil
}

// RequireUser admits only requests carrying a UserPrincipal.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetPrincipal(c).(security.UserPrincipal); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "unauthorized", Message: "You are not authorized",
			})
		}
		return c.Next()
	}
}

// RequireDevice admits only requests carrying a DevicePrincipal.
func RequireDevice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetPrincipal(c).(security.DevicePrincipal); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "unauthorized", Message: "You are not authorized",
			})
		}
		return c.Next()
	}
}
