package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/middleware"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
	"github.com/noah-isme/teamhub-go-api/internal/service"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

// SessionConfig controls token issuance.
type SessionConfig struct {
	Secret   string
	TokenTTL time.Duration
	// LoginLimiter, when set, guards the login and register routes.
	LoginLimiter fiber.Handler
}

// SessionHandler signs members in and out.
type SessionHandler struct {
	session service.AuthSession
	store   service.DataStore
	cfg     SessionConfig
	logger  zerolog.Logger
}

// NewSessionHandler constructs the session handler.
func NewSessionHandler(session service.AuthSession, store service.DataStore, cfg SessionConfig, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		session: session,
		store:   store,
		cfg:     cfg,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register wires the auth routes. protect guards the routes that need a
// signed in member.
func (h *SessionHandler) Register(router fiber.Router, protect ...fiber.Handler) {
	var open []fiber.Handler
	if h.cfg.LoginLimiter != nil {
		open = append(open, h.cfg.LoginLimiter)
	}

	router.Post("/login", chain(open, h.login)...)
	router.Post("/register", chain(open, h.register)...)
	router.Post("/logout", chain(protect, h.logout)...)
	router.Get("/me", chain(protect, h.me)...)
}

func (h *SessionHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.session.Login(c.UserContext(), payload)
	if err != nil {
		if rejectedCredentials(err) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid email or password")
		}
		return sendServiceError(c, h.logger, err, "sign in")
	}

	return h.respondWithToken(c, fiber.StatusOK, "signed in", profile)
}

func (h *SessionHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.Name = sanitizeText(payload.Name)
	payload.Role = sanitizeText(payload.Role)

	profile, member, err := h.session.Register(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "register member")
	}
	h.store.TrackMember(member)

	return h.respondWithToken(c, fiber.StatusCreated, "member registered", profile)
}

func (h *SessionHandler) logout(c *fiber.Ctx) error {
	if err := h.session.Logout(c.UserContext()); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("session cache not cleared")
	}
	return utils.SendSuccess(c, "signed out", nil)
}

func (h *SessionHandler) me(c *fiber.Ctx) error {
	profile, ok := h.session.Current()
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "no active session")
	}
	return utils.SendSuccess(c, "session retrieved", profile)
}

func (h *SessionHandler) respondWithToken(c *fiber.Ctx, status int, message string, profile dto.SessionProfile) error {
	token, err := middleware.IssueToken(h.cfg.Secret, profile, h.cfg.TokenTTL)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to issue session token")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to issue session token")
	}
	return utils.SendSuccessWithStatus(c, status, message, dto.LoginResponse{Token: token, Profile: profile})
}

func rejectedCredentials(err error) bool {
	var remoteErr *repository.RemoteError
	if !errors.As(err, &remoteErr) {
		return false
	}
	return remoteErr.Status == http.StatusUnauthorized || remoteErr.Status == http.StatusBadRequest
}
