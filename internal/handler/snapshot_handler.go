package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
	"github.com/noah-isme/teamhub-go-api/internal/service"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

// SnapshotHandler serves the whole session snapshot and manual refreshes.
type SnapshotHandler struct {
	store  service.DataStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewSnapshotHandler constructs the snapshot handler.
func NewSnapshotHandler(store service.DataStore, logger zerolog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		store:  store,
		logger: logger.With().Str("component", "snapshot_handler").Logger(),
		now:    time.Now,
	}
}

// Register attaches the snapshot route.
func (h *SnapshotHandler) Register(router fiber.Router) {
	router.Get("", h.snapshot)
}

// RegisterSync attaches the refresh route.
func (h *SnapshotHandler) RegisterSync(router fiber.Router) {
	router.Post("/refresh", h.refresh)
}

func (h *SnapshotHandler) snapshot(c *fiber.Ctx) error {
	snap := h.store.Snapshot()
	return utils.SendSuccess(c, "snapshot retrieved", dto.SnapshotResponse{
		Inventory:   snap.Inventory,
		Events:      snap.Events,
		Activities:  dto.NewActivityResponseSlice(snap.Activities, h.now()),
		TeamMembers: snap.TeamMembers,
	})
}

func (h *SnapshotHandler) refresh(c *fiber.Ctx) error {
	err := h.store.Refresh(c.UserContext())
	if err == nil {
		return utils.SendSuccess(c, "snapshot refreshed", dto.RefreshResponse{Failed: []string{}})
	}

	failed := failedTables(err)
	requestLogger(h.logger, c).Warn().Err(err).Strs("failed", failed).Msg("refresh incomplete")
	if len(failed) == len(repository.Tables()) {
		return utils.SendError(c, fiber.StatusBadGateway, "failed to refresh snapshot")
	}

	return utils.SendSuccess(c, "snapshot partially refreshed", dto.RefreshResponse{Failed: failed})
}

// failedTables lists the collections named by the remote errors inside err.
func failedTables(err error) []string {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	failed := make([]string, 0, len(errs))
	for _, e := range errs {
		var remoteErr *repository.RemoteError
		if errors.As(e, &remoteErr) && remoteErr.Table != "" {
			failed = append(failed, remoteErr.Table)
		}
	}
	return failed
}
