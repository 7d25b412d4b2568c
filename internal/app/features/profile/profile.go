// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	membershipstore "github.com/dalemusser/sfahub/internal/app/store/memberships"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type profileView struct {
	ID          primitive.ObjectID   `json:"id"`
	Email       string               `json:"email"`
	FirstName   string               `json:"first_name"`
	LastName    string               `json:"last_name"`
	Role        models.Role          `json:"role"`
	State       string               `json:"state"`
	WorkspaceID *primitive.ObjectID  `json:"workspace_id,omitempty"`
	GroupIDs    []primitive.ObjectID `json:"group_ids"`
}

type updateInput struct {
	FirstName string    `json:"first_name" validate:"required,max=30" label:"First name"`
	LastName  string    `json:"last_name" validate:"required,max=150" label:"Last name"`
	GroupIDs  *[]string `json:"group_ids"`
}

type passwordInput struct {
	CurrentPassword string `json:"current_password" validate:"required" label:"Current password"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128" label:"New password"`
}

func (h *Handler) view(ctx context.Context, u models.User) (profileView, error) {
	ids, err := h.Memberships.GroupIDsForUser(ctx, u.ID)
	if err != nil {
		return profileView{}, err
	}
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return profileView{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		State:       workspacepolicy.State(u).String(),
		WorkspaceID: u.WorkspaceID,
		GroupIDs:    ids,
	}, nil
}

// ServeProfile handles GET /profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.ActorFrom(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "profile get")
	defer cancel()

	u, err := h.Users.GetByID(ctx, a.UserID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	v, err := h.view(ctx, u)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	uierrors.JSON(w, http.StatusOK, v)
}

// HandleUpdate handles PUT /profile. group_ids, when present, replaces the
// caller's groups and is only accepted from an active workspace member.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.ActorFrom(r)
	var in updateInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/profile")
		return
	}
	htmlsanitize.Fields(&in.FirstName, &in.LastName)

	verr := &errs.ValidationError{}
	if ve, ok := inputval.Validate(&in).Err().(*errs.ValidationError); ok {
		verr.Merge(ve)
	}
	var groupIDs []primitive.ObjectID
	if in.GroupIDs != nil {
		if !a.InWorkspace() {
			verr.Add("group_ids", "Join a workspace before choosing groups.")
		}
		for _, s := range *in.GroupIDs {
			id, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				verr.Add("group_ids", "Contains an invalid ID.")
				break
			}
			groupIDs = append(groupIDs, id)
		}
	}
	if err := verr.OrNil(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/profile")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "profile update")
	defer cancel()

	if in.GroupIDs != nil {
		res, err := h.Memberships.SetGroupsForUser(ctx, a.WorkspaceID, a.UserID, groupIDs)
		if errors.Is(err, membershipstore.ErrWorkspaceMismatch) {
			err = errs.Invalid("group_ids", "Only groups of your workspace can be chosen.")
		}
		if err != nil {
			uierrors.Handle(w, r, h.Log, err, "/profile")
			return
		}
		h.Log.Info("own groups updated",
			zap.String("user_id", a.UserID.Hex()),
			zap.Int("added", res.Added),
			zap.Int("removed", res.Removed))
	}

	u, err := h.Users.UpdateName(ctx, a.UserID, in.FirstName, in.LastName)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/profile")
		return
	}
	v, err := h.view(ctx, u)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/profile")
		return
	}
	uierrors.JSON(w, http.StatusOK, v)
}

// HandleChangePassword handles PUT /profile/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.ActorFrom(r)
	var in passwordInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/profile")
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/profile")
		return
	}
	if in.NewPassword == in.CurrentPassword {
		uierrors.Handle(w, r, h.Log, errs.Invalid("new_password", "Choose a password different from the current one."), "/profile")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "password change")
	defer cancel()

	err := h.Users.ChangePassword(ctx, a.UserID, in.CurrentPassword, in.NewPassword)
	if errors.Is(err, userstore.ErrBadCredentials) {
		h.Log.Info("password change refused", zap.String("user_id", a.UserID.Hex()))
		err = errs.Invalid("current_password", "Current password is incorrect.")
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
