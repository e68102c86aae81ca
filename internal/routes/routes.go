package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/trailmark/trailmark-backend/internal/handlers"
	"github.com/trailmark/trailmark-backend/internal/middleware"
	"github.com/trailmark/trailmark-backend/internal/services"
)

func Setup(
	app *fiber.App,
	tokenService *services.TokenService,
	deviceTokenService *services.DeviceTokenService,
	deviceService *services.DeviceService,
	trackableService *services.TrackableService,
	authHandler *handlers.AuthHandler,
	deviceHandler *handlers.DeviceHandler,
	trackableHandler *handlers.TrackableHandler,
	positionHandler *handlers.PositionHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no auth)
	api.Get("/health", healthHandler.Check)

	// Credential resolution runs once for everything below.
	api.Use(middleware.ResolvePrincipal(tokenService, deviceTokenService, deviceService))

	// Auth — stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login/email/request", authHandler.RequestLink)
	auth.Post("/login/email/consume", authHandler.Consume)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", middleware.RequireUser(), authHandler.Me)

	// Trackables (user-owned)
	api.Post("/trackables", middleware.RequireUser(), trackableHandler.Create)
	api.Get("/trackables", middleware.RequireUser(), trackableHandler.List)

	// The claim endpoint authenticates by the provisioning token
	// itself, and position reads are public. Both stay outside the
	// access guard.
	api.Post("/trackables/:trackableId/devices/register", deviceHandler.Register)
	api.Get("/trackables/:trackableId/positions", positionHandler.List)

	// Trackable-scoped, principal-guarded routes
	scoped := api.Group("/trackables/:trackableId", middleware.TrackableAccess(trackableService))
	scoped.Get("/", trackableHandler.Get)
	scoped.Post("/devices/tokens", middleware.RequireUser(), deviceHandler.IssueToken)
	scoped.Post("/devices/quick-qr", middleware.RequireUser(), deviceHandler.QuickCreate)
	scoped.Get("/devices", middleware.RequireUser(), deviceHandler.List)
	scoped.Delete("/devices/:deviceId", middleware.RequireUser(), deviceHandler.Delete)

	// Telemetry ingest (device principal only)
	api.Post("/positions", middleware.RequireDevice(), positionHandler.Report)
}
