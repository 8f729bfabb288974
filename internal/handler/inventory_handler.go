package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/middleware"
	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/service"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

// InventoryHandler exposes the parts inventory.
type InventoryHandler struct {
	store  service.DataStore
	logger zerolog.Logger
}

// NewInventoryHandler constructs the inventory handler.
func NewInventoryHandler(store service.DataStore, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		store:  store,
		logger: logger.With().Str("component", "inventory_handler").Logger(),
	}
}

// Register attaches routes. Writes are limited to inventory managers.
func (h *InventoryHandler) Register(router fiber.Router) {
	managers := middleware.RequireRole(models.InventoryManagerRoles()...)

	router.Get("", h.list)
	router.Post("", managers, h.create)
	router.Put("/:id", managers, h.update)
	router.Delete("/:id", managers, h.delete)
}

func (h *InventoryHandler) list(c *fiber.Ctx) error {
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	itemType := strings.ToLower(strings.TrimSpace(c.Query("type")))

	items := h.store.Inventory()
	if status != "" || itemType != "" {
		filtered := make([]models.InventoryItem, 0, len(items))
		for _, item := range items {
			if status != "" && item.Status != status {
				continue
			}
			if itemType != "" && item.Type != itemType {
				continue
			}
			filtered = append(filtered, item)
		}
		items = filtered
	}

	return utils.SendSuccess(c, "inventory retrieved", items)
}

func (h *InventoryHandler) create(c *fiber.Ctx) error {
	var payload dto.InventoryDraft
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.Name = sanitizeText(payload.Name)
	payload.ControlID = sanitizeText(payload.ControlID)

	item, err := h.store.AddInventoryItem(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "add inventory item")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "inventory item added", item)
}

func (h *InventoryHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid inventory id")
	}

	var payload dto.InventoryUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.ID = id
	payload.Name = sanitizeText(payload.Name)
	payload.ControlID = sanitizeText(payload.ControlID)

	item, err := h.store.UpdateInventoryItem(c.UserContext(), payload.Item())
	if err != nil {
		return sendServiceError(c, h.logger, err, "update inventory item")
	}

	return utils.SendSuccess(c, "inventory item updated", item)
}

func (h *InventoryHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid inventory id")
	}

	if err := h.store.DeleteInventoryItem(c.UserContext(), id); err != nil {
		return sendServiceError(c, h.logger, err, "delete inventory item")
	}

	return utils.SendSuccess(c, "inventory item deleted", nil)
}
