package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trailmark/trailmark-backend/internal/dto"
	"github.com/trailmark/trailmark-backend/internal/qr"
	"github.com/trailmark/trailmark-backend/internal/services"
)

type DeviceHandler struct {
	tokens  *services.DeviceTokenService
	devices *services.DeviceService
}

func NewDeviceHandler(tokens *services.DeviceTokenService, devices *services.DeviceService) *DeviceHandler {
	return &DeviceHandler{tokens: tokens, devices: devices}
}

// IssueToken mints a provisioning token for the trackable. The raw
// secret appears in this response and nowhere else.
func (h *DeviceHandler) IssueToken(c *fiber.Ctx) error {
	raw, err := h.tokens.Issue(c.Params("trackableId"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to issue device token")
	}
	return c.JSON(dto.IssueDeviceTokenResponse{DeviceToken: raw})
}

// QuickCreate mints a device id plus token and returns a QR data URL
// embedding both, for one-scan provisioning.
func (h *DeviceHandler) QuickCreate(c *fiber.Ctx) error {
	raw, err := h.tokens.Issue(c.Params("trackableId"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to issue device token")
	}

	deviceID := uuid.NewString()
	payload, _ := json.Marshal(fiber.Map{"deviceId": deviceID, "token": raw})
	dataURL, err := qr.DataURL(string(payload), 320)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render qr")
	}

	return c.JSON(dto.QuickCreateResponse{
		DeviceID:    deviceID,
		DeviceToken: raw,
		QRDataURL:   dataURL,
	})
}

// Register is the public claim endpoint: a device presents the raw
// secret from provisioning and binds its identity to the token.
func (h *DeviceHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterDeviceRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" || req.DeviceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "bad_request", Message: "Invalid request body",
		})
	}

	token, err := h.tokens.Validate(req.Token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "invalid_device_token", Message: "Device token is invalid or revoked",
		})
	}
	if token.TrackableID != c.Params("trackableId") {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "invalid_device_token", Message: "Device token does not match this trackable",
		})
	}

	device, err := h.devices.Register(token, req.DeviceID, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrTokenAlreadyClaimed) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: "token_already_claimed", Message: "This token is bound to another device",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to register device")
	}

	return c.Status(fiber.StatusCreated).JSON(device)
}

func (h *DeviceHandler) List(c *fiber.Ctx) error {
	devices, err := h.devices.List(c.Params("trackableId"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list devices")
	}
	return c.JSON(devices)
}

func (h *DeviceHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.devices.Delete(c.Params("trackableId"), c.Params("deviceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete device")
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "not_found", Message: "Device not found",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
