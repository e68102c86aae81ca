package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/trailmark/trailmark-backend/internal/dto"
	"github.com/trailmark/trailmark-backend/internal/services"
)

// TrackableAccess guards /api/trackables/:trackableId routes: the
// resolved principal must own the trackable (user) or be registered
// under it (device).
func TrackableAccess(trackables *services.TrackableService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := GetPrincipal(c)
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "unauthorized", Message: "You are not authorized",
			})
		}

		trackableID := c.Params("trackableId")
		if trackableID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "bad_request", Message: "Missing trackable id",
			})
		}

		granted, err := trackables.CanAccess(principal, trackableID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "access check failed")
		}
		if !granted {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: "forbidden", Message: "You do not have access to this trackable",
			})
		}
		return c.Next()
	}
}
