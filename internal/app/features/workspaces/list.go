// internal/app/features/workspaces/list.go
package workspaces

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userRow is a workspace member as the member list shows it.
type userRow struct {
	ID                primitive.ObjectID `json:"id"`
	Email             string             `json:"email"`
	FirstName         string             `json:"first_name"`
	LastName          string             `json:"last_name"`
	Role              models.Role        `json:"role"`
	State             string             `json:"state"`
	IsActive          bool               `json:"is_active"`
	IsWorkspaceActive bool               `json:"is_workspace_active"`
	DateJoined        time.Time          `json:"date_joined"`
}

func userView(u models.User) userRow {
	return userRow{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Role:              u.Role,
		State:             workspacepolicy.State(u).String(),
		IsActive:          u.IsActive,
		IsWorkspaceActive: u.IsWorkspaceActive,
		DateJoined:        u.DateJoined,
	}
}

type usersResponse struct {
	Users     []userRow     `json:"users"`
	Page      paging.Page   `json:"page"`
	Grantable []models.Role `json:"grantable_roles"`
}

// ServeUsers handles GET /users: the workspace's users, pending requests
// first. Admins and owners only.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	a, ok := member(w, r)
	if !ok {
		return
	}
	if err := workspacepolicy.CanListUsers(a); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users list")
	defer cancel()

	total, err := h.Users.CountWorkspace(ctx, a.WorkspaceID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	page := paging.Resolve(paging.ParsePage(r), paging.SmallPageSize, total)
	users, err := h.Users.ListWorkspace(ctx, a.WorkspaceID, int64((page.Number-1)*page.Size), int64(page.Size))
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}

	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userView(u))
	}
	uierrors.JSON(w, http.StatusOK, usersResponse{
		Users:     rows,
		Page:      page,
		Grantable: workspacepolicy.GrantableRoles(a),
	})
}
