// internal/app/features/workspaces/invite.go
package workspaces

import (
	"errors"
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/features/register"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/mailer"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/app/system/token"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type inviteInput struct {
	Email     string `json:"email" validate:"required,email,max=254" label:"Email"`
	FirstName string `json:"first_name" validate:"max=30" label:"First name"`
	LastName  string `json:"last_name" validate:"max=150" label:"Last name"`
}

// HandleInvite handles POST /users/invite. The invited account is created
// inactive but already confirmed in the workspace; the emailed link lets
// the invitee pick a password.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	a, ok := member(w, r)
	if !ok {
		return
	}
	if err := workspacepolicy.CanInvite(a); err != nil {
		h.fail(w, r, err)
		return
	}
	var in inviteInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "invite user")
	defer cancel()

	ws, err := h.Workspaces.GetByID(ctx, a.WorkspaceID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	wsID := a.WorkspaceID
	u, err := h.Users.Create(ctx, models.User{
		Email:             in.Email,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		WorkspaceID:       &wsID,
		IsWorkspaceActive: true,
		Role:              models.RoleGeneral,
		IsActive:          false,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.fail(w, r, errs.Invalid("email", "This email address is already registered."))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	tok, err := h.Signer.Sign(u.ID.Hex(), token.SaltInvite)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	link := h.link("/invites/" + url.PathEscape(tok))
	msg := mailer.InviteEmail(u.Email, ws.Name, a.Name, link, register.ExpiresIn(h.Opts.InviteMaxAge))
	if err := h.Mailer.Send(ctx, msg); err != nil {
		h.Log.Error("invite: send mail", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		uierrors.Message(w, http.StatusBadGateway, "The user was created but the invitation email could not be sent.")
		return
	}

	h.Audit.UserInvited(ctx, r, a, u.ID, u.Email)
	uierrors.JSON(w, http.StatusCreated, userView(u))
}

// invitee resolves the token in the URL to the invited user's ID.
func (h *Handler) invitee(r *http.Request) (primitive.ObjectID, error) {
	payload, err := h.Signer.Verify(chi.URLParam(r, "token"), token.SaltInvite, h.Opts.InviteMaxAge)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := primitive.ObjectIDFromHex(payload)
	if err != nil {
		return primitive.NilObjectID, errs.ErrTokenInvalid
	}
	return id, nil
}

// ServeInvite handles GET /invites/{token} and shows who was invited.
func (h *Handler) ServeInvite(w http.ResponseWriter, r *http.Request) {
	id, err := h.invitee(r)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "invite get")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.Handle(w, r, h.Log, errs.ErrTokenInvalid, "/login")
		return
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}
	if u.IsActive {
		uierrors.Message(w, http.StatusBadRequest, "This invitation has already been used.")
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	})
}

type confirmInput struct {
	FirstName string `json:"first_name" validate:"required,max=30" label:"First name"`
	LastName  string `json:"last_name" validate:"required,max=150" label:"Last name"`
	Password  string `json:"password" validate:"required,min=8,max=128" label:"Password"`
}

// HandleConfirmInvite handles POST /invites/{token}.
func (h *Handler) HandleConfirmInvite(w http.ResponseWriter, r *http.Request) {
	id, err := h.invitee(r)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}
	var in confirmInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}
	hash, err := userstore.HashPassword(in.Password)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "confirm invite")
	defer cancel()

	switch err := h.Users.CompleteInvite(ctx, id, in.FirstName, in.LastName, hash); {
	case errors.Is(err, errs.ErrInvalidTransition):
		uierrors.Message(w, http.StatusBadRequest, "This invitation has already been used.")
		return
	case err != nil:
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}
	h.Audit.InviteConfirmed(ctx, r, u)
	uierrors.JSON(w, http.StatusOK, userView(u))
}
