// Package workspacepolicy holds the actor preconditions for workspace
// membership changes, role updates and owner-only settings.
//
// Membership state of a user:
//   - Unaffiliated: no workspace
//   - PendingJoin: workspace set, membership not yet accepted
//   - Active: workspace set and accepted
//
// Accept, reject and release need an Active actor of at least admin rank in
// the target's workspace. Every check returns errs.ErrPermissionDenied on
// failure so handlers can answer uniformly.
package workspacepolicy

import (
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
)

// MembershipState is where a user stands relative to a workspace.
type MembershipState int

const (
	Unaffiliated MembershipState = iota
	PendingJoin
	Active
)

func (s MembershipState) String() string {
	switch s {
	case PendingJoin:
		return "pending_join"
	case Active:
		return "active"
	default:
		return "unaffiliated"
	}
}

// State derives the membership state of u.
func State(u models.User) MembershipState {
	switch {
	case u.WorkspaceID == nil || u.WorkspaceID.IsZero():
		return Unaffiliated
	case !u.IsWorkspaceActive:
		return PendingJoin
	default:
		return Active
	}
}

// RequireState returns errs.ErrInvalidTransition unless u is in want.
func RequireState(u models.User, want MembershipState) error {
	if State(u) != want {
		return errs.ErrInvalidTransition
	}
	return nil
}

func sameWorkspace(a authz.Actor, target models.User) bool {
	return target.WorkspaceID != nil && *target.WorkspaceID == a.WorkspaceID
}

// CanManageMembership guards accept, reject and release of target.
func CanManageMembership(a authz.Actor, target models.User) error {
	if !a.InWorkspace() || !a.Role.AtLeast(models.RoleAdmin) || !sameWorkspace(a, target) {
		return errs.ErrPermissionDenied
	}
	return nil
}

// CanUpdateRole guards setting target's role to role. The actor must
// outrank or match the target, and may grant at most its own rank.
func CanUpdateRole(a authz.Actor, target models.User, role models.Role) error {
	switch {
	case !role.Valid():
		return errs.Invalid("role", "Role is not a valid choice.")
	case !a.InWorkspace(), !a.Role.AtLeast(models.RoleAdmin), !sameWorkspace(a, target):
		return errs.ErrPermissionDenied
	case a.Role.Rank() < target.Role.Rank(), role.Rank() > a.Role.Rank():
		return errs.ErrPermissionDenied
	}
	return nil
}

// GrantableRoles lists the roles a may hand out, lowest first.
func GrantableRoles(a authz.Actor) []models.Role {
	var out []models.Role
	for _, r := range models.Roles() {
		if r.Rank() <= a.Role.Rank() {
			out = append(out, r)
		}
	}
	return out
}

// CanInvite guards inviting new users into the actor's workspace.
func CanInvite(a authz.Actor) error {
	return requireRank(a, models.RoleAdmin)
}

// CanListUsers guards the workspace user list.
func CanListUsers(a authz.Actor) error {
	return requireRank(a, models.RoleAdmin)
}

// CanViewAudit guards the workspace audit trail.
func CanViewAudit(a authz.Actor) error {
	return requireRank(a, models.RoleAdmin)
}

// CanManageGroups guards replacing a group's member list.
func CanManageGroups(a authz.Actor) error {
	return requireRank(a, models.RoleAdmin)
}

// CanUpdateWorkspace guards renaming the workspace.
func CanUpdateWorkspace(a authz.Actor) error {
	return requireRank(a, models.RoleOwner)
}

// CanEditSettings guards the environment and display settings.
func CanEditSettings(a authz.Actor) error {
	return requireRank(a, models.RoleOwner)
}

// CanAffiliate reports whether u may create or request to join a workspace.
func CanAffiliate(u models.User) error {
	if State(u) != Unaffiliated {
		return errs.ErrInvalidTransition
	}
	return nil
}

func requireRank(a authz.Actor, min models.Role) error {
	if !a.InWorkspace() || !a.Role.AtLeast(min) {
		return errs.ErrPermissionDenied
	}
	return nil
}
