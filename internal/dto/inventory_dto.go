package dto

import "github.com/noah-isme/teamhub-go-api/internal/models"

// InventoryDraft is the payload for creating an inventory item. It carries no id.
type InventoryDraft struct {
	Name      string `json:"name" validate:"required,max=255"`
	ControlID string `json:"control_id" validate:"max=64"`
	Quantity  int    `json:"quantity" validate:"min=0"`
	Status    string `json:"status" validate:"required,oneof=available used broken"`
	Type      string `json:"type" validate:"required,oneof=metal consumable sensors motors electronics"`
}

// InventoryUpdateRequest is the full replacement payload for an inventory item.
type InventoryUpdateRequest struct {
	ID        int64  `json:"id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=255"`
	ControlID string `json:"control_id" validate:"max=64"`
	Quantity  int    `json:"quantity" validate:"min=0"`
	Status    string `json:"status" validate:"required,oneof=available used broken"`
	Type      string `json:"type" validate:"required,oneof=metal consumable sensors motors electronics"`
}

// NewInventoryUpdateRequest converts an item into its update payload.
func NewInventoryUpdateRequest(item models.InventoryItem) InventoryUpdateRequest {
	return InventoryUpdateRequest{
		ID:        item.ID,
		Name:      item.Name,
		ControlID: item.ControlID,
		Quantity:  item.Quantity,
		Status:    item.Status,
		Type:      item.Type,
	}
}

// Item converts the payload back into the model.
func (r InventoryUpdateRequest) Item() models.InventoryItem {
	return models.InventoryItem{
		ID:        r.ID,
		Name:      r.Name,
		ControlID: r.ControlID,
		Quantity:  r.Quantity,
		Status:    r.Status,
		Type:      r.Type,
	}
}
