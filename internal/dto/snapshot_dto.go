package dto

import "github.com/noah-isme/teamhub-go-api/internal/models"

// SnapshotResponse mirrors the four collections held by the data store.
type SnapshotResponse struct {
	Inventory   []models.InventoryItem `json:"inventory"`
	Events      []models.Event         `json:"events"`
	Activities  []ActivityResponse     `json:"activities"`
	TeamMembers []models.TeamMember    `json:"team_members"`
}

// RefreshResponse reports which collections failed to load.
type RefreshResponse struct {
	Failed []string `json:"failed"`
}
