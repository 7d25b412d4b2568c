// internal/domain/models/role.go
package models

// Role is a workspace permission tier. Tiers are ordered; compare them with
// Rank or AtLeast, never with string comparison.
type Role string

const (
	RoleGeneral Role = "general"
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
)

// Rank returns the ordinal of r (general=0, admin=1, owner=2).
// Unknown roles rank below general.
func (r Role) Rank() int {
	switch r {
	case RoleGeneral:
		return 0
	case RoleAdmin:
		return 1
	case RoleOwner:
		return 2
	default:
		return -1
	}
}

// AtLeast reports whether r carries at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= 0 && r.Rank() >= min.Rank()
}

// Valid reports whether r is one of the known tiers.
func (r Role) Valid() bool { return r.Rank() >= 0 }

// Roles lists every tier from lowest to highest.
func Roles() []Role { return []Role{RoleGeneral, RoleAdmin, RoleOwner} }
