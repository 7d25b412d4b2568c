// internal/app/features/workspaces/new.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	workspacestore "github.com/dalemusser/sfahub/internal/app/store/workspaces"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/mailer"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/app/system/txn"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type nameInput struct {
	Name string `json:"name" validate:"required,max=255" label:"Workspace name"`
}

func (h *Handler) decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in nameInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return "", false
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return "", false
	}
	return in.Name, true
}

// signedInUser loads the stored record of the signed-in user.
func (h *Handler) signedInUser(ctx context.Context, r *http.Request) (models.User, error) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return models.User{}, userstore.ErrNotFound
	}
	return h.Users.GetByID(ctx, id)
}

// HandleCreate handles POST /workspaces. The creator becomes the active
// owner straight away.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create workspace")
	defer cancel()

	u, err := h.signedInUser(ctx, r)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	if err := workspacepolicy.CanAffiliate(u); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}

	var ws models.Workspace
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		ws, err = h.Workspaces.Create(ctx, models.Workspace{Name: name, CreatedBy: &u.ID, UpdatedBy: &u.ID})
		if err != nil {
			return err
		}
		return h.Users.JoinAsOwner(ctx, u.ID, ws.ID)
	})
	if errors.Is(err, workspacestore.ErrDuplicateName) {
		uierrors.Handle(w, r, h.Log, errs.Invalid("name", "A workspace with this name already exists."), "/")
		return
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}

	h.Audit.WorkspaceCreated(ctx, r, u.ID, ws)
	uierrors.JSON(w, http.StatusCreated, ws)
}

// HandleJoin handles POST /workspaces/join. The request stays pending until
// an admin accepts it; every active admin and owner is mailed.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "join workspace")
	defer cancel()

	u, err := h.signedInUser(ctx, r)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	if err := workspacepolicy.CanAffiliate(u); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}

	ws, err := h.Workspaces.GetByName(ctx, name)
	if errors.Is(err, workspacestore.ErrNotFound) {
		uierrors.Handle(w, r, h.Log, errs.Invalid("name", "No workspace has this name."), "/")
		return
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	if err := h.Users.RequestJoin(ctx, u.ID, ws.ID); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	h.Audit.JoinRequested(ctx, r, u.ID, ws.ID)

	h.notifyAdmins(ctx, ws, u)
	uierrors.JSON(w, http.StatusAccepted, map[string]any{"workspace": ws, "state": workspacepolicy.PendingJoin.String()})
}

// notifyAdmins mails the join request to ws's admins and owners. Mail
// failures are logged; the request itself already stands.
func (h *Handler) notifyAdmins(ctx context.Context, ws models.Workspace, requester models.User) {
	admins, err := h.Users.ActiveMembers(ctx, ws.ID, models.RoleAdmin)
	if err != nil {
		h.Log.Error("join request: list admins", zap.String("workspace_id", ws.ID.Hex()), zap.Error(err))
		return
	}
	if len(admins) == 0 {
		return
	}
	to := make([]string, 0, len(admins))
	for _, a := range admins {
		to = append(to, a.Email)
	}
	msg := mailer.JoinRequestEmail(to, ws.Name, requester.FullName(), requester.Email, h.link("/users"))
	if err := h.Mailer.Send(ctx, msg); err != nil {
		h.Log.Warn("join request: send mail", zap.String("workspace_id", ws.ID.Hex()), zap.Error(err))
	}
}

// ServeCurrent handles GET /workspaces/current.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	a, ok := member(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "workspace get")
	defer cancel()

	ws, err := h.Workspaces.GetByID(ctx, a.WorkspaceID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	uierrors.JSON(w, http.StatusOK, ws)
}

// HandleRename handles PUT /workspaces/current. Owners only.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	a, ok := member(w, r)
	if !ok {
		return
	}
	if err := workspacepolicy.CanUpdateWorkspace(a); err != nil {
		h.fail(w, r, err)
		return
	}
	name, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "workspace rename")
	defer cancel()

	err := h.Workspaces.Rename(ctx, a.WorkspaceID, name, a.UserID)
	if errors.Is(err, workspacestore.ErrDuplicateName) {
		uierrors.Handle(w, r, h.Log, errs.Invalid("name", "A workspace with this name already exists."), "/")
		return
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	h.Audit.WorkspaceRenamed(ctx, r, a, name)

	ws, err := h.Workspaces.GetByID(ctx, a.WorkspaceID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	uierrors.JSON(w, http.StatusOK, ws)
}
