// internal/app/system/authz/roles.go
package authz

import (
	"net/http"

	"github.com/dalemusser/sfahub/internal/domain/models"
)

// HasRoleAtLeast reports whether the current request's user ranks at
// least min. Returns false if no user is present.
func HasRoleAtLeast(r *http.Request, min models.Role) bool {
	a, ok := ActorFrom(r)
	return ok && a.Role.AtLeast(min)
}

// IsOwner reports whether the current request's user owns their workspace.
func IsOwner(r *http.Request) bool {
	return HasRoleAtLeast(r, models.RoleOwner)
}

// IsAdmin reports whether the current user is an admin or owner.
func IsAdmin(r *http.Request) bool {
	return HasRoleAtLeast(r, models.RoleAdmin)
}
