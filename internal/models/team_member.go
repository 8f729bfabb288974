package models

import "strings"

// Team member presence values.
const (
	MemberStatusOnline       = "online"
	MemberStatusOffline      = "offline"
	MemberStatusAvailable    = "available"
	MemberStatusNotAvailable = "not-available"
	MemberStatusPending      = "pending"
)

// Roles with management rights.
const (
	RoleCoach   = "Coach"
	RoleAdviser = "Adviser"
	RoleBuilder = "Builder"
)

// TeamMember is a roster entry. Role is free text and drives permission checks.
type TeamMember struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Avatar string `json:"avatar,omitempty"`
}

// EventManagerRoles lists the roles allowed to create and edit events.
func EventManagerRoles() []string {
	return []string{RoleCoach, RoleAdviser}
}

// InventoryManagerRoles lists the roles allowed to change inventory.
func InventoryManagerRoles() []string {
	return []string{RoleCoach, RoleAdviser, RoleBuilder}
}

// CanManageEvents reports whether role may create or edit events.
func CanManageEvents(role string) bool {
	return hasRole(role, EventManagerRoles())
}

// CanManageInventory reports whether role may create, edit or delete inventory.
func CanManageInventory(role string) bool {
	return hasRole(role, InventoryManagerRoles())
}

func hasRole(role string, allowed []string) bool {
	normalized := strings.TrimSpace(role)
	for _, candidate := range allowed {
		if strings.EqualFold(normalized, candidate) {
			return true
		}
	}
	return false
}

// Initials derives a two letter avatar from a display name.
func Initials(name string) string {
	var builder strings.Builder
	for _, word := range strings.Fields(name) {
		builder.WriteRune([]rune(word)[0])
	}
	initials := []rune(strings.ToUpper(builder.String()))
	if len(initials) > 2 {
		initials = initials[:2]
	}
	return string(initials)
}
