package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/service"
	"github.com/noah-isme/teamhub-go-api/internal/utils"
)

// TeamHandler lists the roster.
type TeamHandler struct {
	store service.DataStore
}

// NewTeamHandler constructs the team handler.
func NewTeamHandler(store service.DataStore) *TeamHandler {
	return &TeamHandler{store: store}
}

// Register attaches routes.
func (h *TeamHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *TeamHandler) list(c *fiber.Ctx) error {
	members := h.store.TeamMembers()

	role := strings.TrimSpace(c.Query("role"))
	if role == "" {
		return utils.SendSuccess(c, "team retrieved", members)
	}

	filtered := make([]models.TeamMember, 0, len(members))
	for _, member := range members {
		if strings.EqualFold(member.Role, role) {
			filtered = append(filtered, member)
		}
	}
	return utils.SendSuccess(c, "team retrieved", filtered)
}
