package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/teamhub-go-api/internal/config"
	"github.com/noah-isme/teamhub-go-api/internal/middleware"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	SignedIn    bool      `json:"signed_in"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config, session middleware.SessionReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}
		if session != nil {
			_, payload.SignedIn = session.Current()
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
