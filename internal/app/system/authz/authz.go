// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the acting user as policies and stores need it: typed IDs,
// ranked role and the groups used for sharing checks.
type Actor struct {
	UserID          primitive.ObjectID
	Email           string
	Name            string
	WorkspaceID     primitive.ObjectID
	WorkspaceActive bool
	Role            models.Role
	GroupIDs        []primitive.ObjectID
}

// InWorkspace reports whether the actor is an active member of a workspace.
func (a Actor) InWorkspace() bool {
	return a.WorkspaceActive && !a.WorkspaceID.IsZero()
}

// ActorFrom builds the Actor for the signed-in user. ok is false when no
// user is present or the session user ID is malformed.
func ActorFrom(r *http.Request) (Actor, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return Actor{}, false
	}
	return FromSessionUser(u)
}

// FromSessionUser converts a SessionUser. Malformed group IDs are dropped;
// a malformed user ID fails closed.
func FromSessionUser(u *auth.SessionUser) (Actor, bool) {
	uid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return Actor{}, false
	}
	a := Actor{
		UserID: uid,
		Email:  u.Email,
		Name:   u.Name,
		Role:   models.Role(strings.ToLower(u.Role)),
	}
	if ws, err := primitive.ObjectIDFromHex(u.WorkspaceID); err == nil {
		a.WorkspaceID = ws
		a.WorkspaceActive = u.WorkspaceActive
	}
	for _, h := range u.GroupIDs {
		if gid, err := primitive.ObjectIDFromHex(h); err == nil {
			a.GroupIDs = append(a.GroupIDs, gid)
		}
	}
	return a, true
}

// FromUser builds an Actor straight from a stored user, for callers
// outside an HTTP request such as the operator CLI.
func FromUser(u models.User, groupIDs []primitive.ObjectID) Actor {
	a := Actor{
		UserID:          u.ID,
		Email:           u.Email,
		Name:            u.FullName(),
		Role:            u.Role,
		WorkspaceActive: u.IsWorkspaceActive,
		GroupIDs:        groupIDs,
	}
	if u.WorkspaceID != nil {
		a.WorkspaceID = *u.WorkspaceID
	}
	return a
}
