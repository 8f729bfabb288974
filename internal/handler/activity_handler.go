package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/service"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

const maxActivityLimit = 100

// ActivityHandler serves the audit feed, newest first.
type ActivityHandler struct {
	store  service.DataStore
	logger zerolog.Logger
}

// NewActivityHandler constructs the activity handler.
func NewActivityHandler(store service.DataStore, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		store:  store,
		logger: logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	activities := h.store.Activities()
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}

	return utils.SendSuccess(c, "activities retrieved", dto.NewActivityResponseSlice(activities, time.Now()))
}
