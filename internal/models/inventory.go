package models

// Inventory status values.
const (
	InventoryStatusAvailable = "available"
	InventoryStatusUsed      = "used"
	InventoryStatusBroken    = "broken"
)

// Inventory type values.
const (
	InventoryTypeMetal       = "metal"
	InventoryTypeConsumable  = "consumable"
	InventoryTypeSensors     = "sensors"
	InventoryTypeMotors      = "motors"
	InventoryTypeElectronics = "electronics"
)

// InventoryItem is a piece of team equipment tracked by the remote inventory table.
type InventoryItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ControlID string `json:"control_id"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
	Type      string `json:"type"`
}

// IsBroken reports whether the item is currently marked as broken.
func (i InventoryItem) IsBroken() bool {
	return i.Status == InventoryStatusBroken
}
