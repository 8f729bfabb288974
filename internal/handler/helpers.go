package handler

import (
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/middleware"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
	"github.com/noah-isme/teamhub-go-api/internal/service"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

// textPolicy strips all markup from free text typed by members.
var textPolicy = bluemonday.StrictPolicy()

// sanitizeText drops markup but stores plain text, so "&" stays "&".
func sanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(input)))
}

// chain returns a fresh handler list ending in final.
func chain(pre []fiber.Handler, final fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(pre)+1)
	handlers = append(handlers, pre...)
	return append(handlers, final)
}

func parseIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Params("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func memberIDFromContext(c *fiber.Ctx) int64 {
	id, _ := c.Locals(middleware.LocalMemberID).(int64)
	return id
}

func memberNameFromContext(c *fiber.Ctx) string {
	name, _ := c.Locals(middleware.LocalMemberName).(string)
	return name
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// sendServiceError maps service and sync failures onto HTTP responses.
// Remote rejections surface as 502 with the remote's message.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	log := requestLogger(logger, c)

	var remoteErr *repository.RemoteError
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", validationDetails(err))
	case errors.Is(err, service.ErrValidation):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrNotAuthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "not authenticated")
	case errors.As(err, &remoteErr):
		log.Warn().Err(err).Int("remote_status", remoteErr.Status).Msgf("failed to %s", action)
		message := remoteErr.Message
		if message == "" {
			message = http.StatusText(http.StatusBadGateway)
		}
		return utils.SendError(c, fiber.StatusBadGateway, "failed to "+action+": "+message)
	default:
		log.Error().Err(err).Msgf("failed to %s", action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
