package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/teamhub-go-api/internal/config"
	"github.com/noah-isme/teamhub-go-api/internal/handler"
	"github.com/noah-isme/teamhub-go-api/internal/middleware"
	"github.com/noah-isme/teamhub-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SessionHandler   *handler.SessionHandler
	SnapshotHandler  *handler.SnapshotHandler
	InventoryHandler *handler.InventoryHandler
	EventHandler     *handler.EventHandler
	ActivityHandler  *handler.ActivityHandler
	TeamHandler      *handler.TeamHandler
	Session          middleware.SessionReader
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Session))
	api.Get("/metrics", observability.MetricsHandler())

	// Every member route needs a valid token for the member signed in to this session.
	protect := make([]fiber.Handler, 0, 2)
	if deps.JWTMiddleware != nil {
		protect = append(protect, deps.JWTMiddleware)
	}
	if deps.Session != nil {
		protect = append(protect, middleware.RequireSession(deps.Session))
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/auth"), protect...)
	}

	if deps.SnapshotHandler != nil {
		deps.SnapshotHandler.Register(api.Group("/snapshot", protect...))
		deps.SnapshotHandler.RegisterSync(api.Group("/sync", protect...))
	}

	if deps.InventoryHandler != nil {
		deps.InventoryHandler.Register(api.Group("/inventory", protect...))
	}

	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events", protect...))
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activities", protect...))
	}

	if deps.TeamHandler != nil {
		deps.TeamHandler.Register(api.Group("/team", protect...))
	}
}
