package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/trailmark/trailmark-backend/internal/dto"
	"github.com/trailmark/trailmark-backend/internal/middleware"
	"github.com/trailmark/trailmark-backend/internal/security"
	"github.com/trailmark/trailmark-backend/internal/services"
)

type TrackableHandler struct {
	trackables *services.TrackableService
}

func NewTrackableHandler(trackables *services.TrackableService) *TrackableHandler {
	return &TrackableHandler{trackables: trackables}
}

func (h *TrackableHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c).(security.UserPrincipal)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "unauthorized", Message: "You are not authorized",
		})
	}

	var req dto.CreateTrackableRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "bad_request", Message: "Invalid request body",
		})
	}

	trackable, err := h.trackables.Create(principal.UserID, req.Name)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "bad_request", Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(trackable)
}

func (h *TrackableHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c).(security.UserPrincipal)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "unauthorized", Message: "You are not authorized",
		})
	}

	trackables, err := h.trackables.ListByUser(principal.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list trackables")
	}
	return c.JSON(trackables)
}

func (h *TrackableHandler) Get(c *fiber.Ctx) error {
	trackable, err := h.trackables.Get(c.Params("trackableId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "not_found", Message: "Trackable not found",
		})
	}
	return c.JSON(trackable)
}
