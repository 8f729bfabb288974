package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/middleware"
	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/observability"
	"github.com/noah-isme/teamhub-go-api/internal/service"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

// EventHandler exposes the team calendar and attendance voting.
type EventHandler struct {
	store     service.DataStore
	voting    service.VotingEngine
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEventHandler constructs the event handler.
func NewEventHandler(store service.DataStore, voting service.VotingEngine, validate *validator.Validate, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		store:     store,
		voting:    voting,
		validator: validate,
		logger:    logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register attaches routes. Any member may vote; event writes are limited to
// event managers.
func (h *EventHandler) Register(router fiber.Router) {
	managers := middleware.RequireRole(models.EventManagerRoles()...)

	router.Get("", h.list)
	router.Post("", managers, h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", managers, h.update)
	router.Delete("/:id", managers, h.delete)
	router.Post("/:id/votes", h.vote)
	router.Get("/:id/votes/me", h.myVote)
	router.Get("/:id/attendees", h.attendees)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "events retrieved", h.store.Events())
}

func (h *EventHandler) get(c *fiber.Ctx) error {
	event, status, message := h.lookup(c)
	if status != fiber.StatusOK {
		return utils.SendError(c, status, message)
	}
	return utils.SendSuccess(c, "event retrieved", event)
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	var payload dto.EventDraft
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	sanitizeDraft(&payload)

	event, err := h.store.AddEvent(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "create event")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", event)
}

func (h *EventHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	var payload dto.EventUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.ID = id
	payload.Title = sanitizeText(payload.Title)
	payload.Location = sanitizeText(payload.Location)
	payload.Description = sanitizeText(payload.Description)

	// Edits that omit attendees keep the votes already cast.
	if payload.Attendees == nil {
		current, ok := h.store.Event(id)
		if !ok {
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		}
		payload.Attendees = current.Attendees
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", validationDetails(err))
	}

	event, err := h.store.UpdateEvent(c.UserContext(), payload.Event())
	if err != nil {
		return sendServiceError(c, h.logger, err, "update event")
	}

	return utils.SendSuccess(c, "event updated", event)
}

func (h *EventHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	if err := h.store.DeleteEvent(c.UserContext(), id); err != nil {
		return sendServiceError(c, h.logger, err, "delete event")
	}

	return utils.SendSuccess(c, "event deleted", nil)
}

func (h *EventHandler) vote(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	var payload dto.VoteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	memberID := memberIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "not authenticated")
	}

	event, err := h.voting.CastVote(c.UserContext(), id, memberID, memberNameFromContext(c), payload.Status)
	if err != nil {
		return sendServiceError(c, h.logger, err, "record vote")
	}
	observability.Votes().WithLabelValues(payload.Status).Inc()

	return utils.SendSuccess(c, "vote recorded", event)
}

func (h *EventHandler) myVote(c *fiber.Ctx) error {
	event, status, message := h.lookup(c)
	if status != fiber.StatusOK {
		return utils.SendError(c, status, message)
	}

	vote, ok := h.voting.CurrentVote(event, memberIDFromContext(c))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no vote recorded")
	}

	return utils.SendSuccess(c, "vote retrieved", fiber.Map{"status": vote})
}

func (h *EventHandler) attendees(c *fiber.Ctx) error {
	event, status, message := h.lookup(c)
	if status != fiber.StatusOK {
		return utils.SendError(c, status, message)
	}

	filter := strings.ToLower(strings.TrimSpace(c.Query("status")))
	if filter == "" {
		return utils.SendSuccess(c, "attendees retrieved", event.Attendees)
	}
	if !models.IsValidAttendeeStatus(filter) {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid attendee status")
	}

	return utils.SendSuccess(c, "attendees retrieved", h.voting.AttendeesByStatus(event, filter))
}

// lookup resolves the :id event. A status other than 200 comes with the
// message to send back.
func (h *EventHandler) lookup(c *fiber.Ctx) (models.Event, int, string) {
	id, err := parseIDParam(c)
	if err != nil {
		return models.Event{}, fiber.StatusBadRequest, "invalid event id"
	}
	event, ok := h.store.Event(id)
	if !ok {
		return models.Event{}, fiber.StatusNotFound, "event not found"
	}
	return event, fiber.StatusOK, ""
}

func sanitizeDraft(draft *dto.EventDraft) {
	draft.Title = sanitizeText(draft.Title)
	draft.Location = sanitizeText(draft.Location)
	draft.Description = sanitizeText(draft.Description)
	draft.Attendees = nil
}
