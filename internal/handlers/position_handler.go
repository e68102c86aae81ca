package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/trailmark/trailmark-backend/internal/dto"
	"github.com/trailmark/trailmark-backend/internal/middleware"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
	"github.com/trailmark/trailmark-backend/internal/services"
	"gorm.io/gorm"
)

type PositionHandler struct {
	positions *services.PositionService
	db        *gorm.DB
}

func NewPositionHandler(positions *services.PositionService, db *gorm.DB) *PositionHandler {
	return &PositionHandler{positions: positions, db: db}
}

// Report accepts telemetry from an authenticated device. The trackable
// is taken from the device registration, never from the payload.
func (h *PositionHandler) Report(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c).(security.DevicePrincipal)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "unauthorized", Message: "You are not authorized",
		})
	}

	var req dto.ReportPositionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "bad_request", Message: "Invalid request body",
		})
	}

	var device models.Device
	if err := h.db.Where("device_id = ?", principal.DeviceID).First(&device).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "unauthorized", Message: "Device is not registered",
		})
	}

	position, err := h.positions.Report(device.TrackableID, device.DeviceID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCoordinates) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "bad_request", Message: "Coordinates out of range",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store position")
	}
	return c.Status(fiber.StatusCreated).JSON(position)
}

// List is the public read side: recent positions for a trackable.
func (h *PositionHandler) List(c *fiber.Ctx) error {
	positions, err := h.positions.List(c.Params("trackableId"), c.QueryInt("limit", 100))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list positions")
	}
	return c.JSON(positions)
}
