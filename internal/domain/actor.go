package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Roles issued by the authorization server.
const (
	RoleStudent = "ROLE_STUDENT"
	RoleSocial  = "ROLE_SOCIAL"
	RoleAdmin   = "ROLE_ADMIN"
)

// Actor is the verified identity behind a request. It is resolved at the HTTP
// boundary and passed explicitly to every operation that needs it.
type Actor struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Roles  []string  `json:"roles"`
}

func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(a.Roles, r) {
			return true
		}
	}
	return false
}

// IsStaff reports whether the actor may manage calls.
func (a Actor) IsStaff() bool {
	return a.HasRole(RoleSocial, RoleAdmin)
}
