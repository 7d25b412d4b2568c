// internal/app/features/workspaces/status.go
package workspaces

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
)

// transition is one membership change: the state the target must be in,
// the store call and the audit entry.
type transition struct {
	op    string
	from  workspacepolicy.MembershipState
	apply func(h *Handler, ctx context.Context, a authz.Actor, target models.User) error
	audit func(h *Handler, ctx context.Context, r *http.Request, a authz.Actor, target models.User)
}

var (
	acceptMember = transition{
		op:   "accept member",
		from: workspacepolicy.PendingJoin,
		apply: func(h *Handler, ctx context.Context, a authz.Actor, t models.User) error {
			return h.Users.Accept(ctx, a.WorkspaceID, t.ID)
		},
		audit: func(h *Handler, ctx context.Context, r *http.Request, a authz.Actor, t models.User) {
			h.Audit.MemberAccepted(ctx, r, a, t.ID)
		},
	}
	rejectMember = transition{
		op:   "reject member",
		from: workspacepolicy.PendingJoin,
		apply: func(h *Handler, ctx context.Context, a authz.Actor, t models.User) error {
			return h.Users.Reject(ctx, a.WorkspaceID, t.ID)
		},
		audit: func(h *Handler, ctx context.Context, r *http.Request, a authz.Actor, t models.User) {
			h.Audit.MemberRejected(ctx, r, a, t.ID)
		},
	}
	releaseMember = transition{
		op:   "release member",
		from: workspacepolicy.Active,
		apply: func(h *Handler, ctx context.Context, a authz.Actor, t models.User) error {
			return h.Users.Release(ctx, a.WorkspaceID, t.ID, h.Log)
		},
		audit: func(h *Handler, ctx context.Context, r *http.Request, a authz.Actor, t models.User) {
			h.Audit.MemberReleased(ctx, r, a, t.ID)
		},
	}
)

// HandleAccept handles POST /users/{id}/accept.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, acceptMember)
}

// HandleReject handles POST /users/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, rejectMember)
}

// HandleRelease handles POST /users/{id}/release.
func (h *Handler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, releaseMember)
}

func (h *Handler) runTransition(w http.ResponseWriter, r *http.Request, tr transition) {
	a, ok := member(w, r)
	if !ok {
		return
	}
	id, err := targetID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, tr.op)
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := workspacepolicy.CanManageMembership(a, target); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := workspacepolicy.RequireState(target, tr.from); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := tr.apply(h, ctx, a, target); err != nil {
		h.fail(w, r, err)
		return
	}
	tr.audit(h, ctx, r, a, target)

	updated, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, userView(updated))
}

type roleInput struct {
	Role models.Role `json:"role" validate:"required,role" label:"Role"`
}

// HandleRole handles PUT /users/{id}/role.
func (h *Handler) HandleRole(w http.ResponseWriter, r *http.Request) {
	a, ok := member(w, r)
	if !ok {
		return
	}
	id, err := targetID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in roleInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update role")
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := workspacepolicy.CanUpdateRole(a, target, in.Role); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Users.SetRole(ctx, a.WorkspaceID, target.ID, in.Role); err != nil {
		h.fail(w, r, err)
		return
	}
	if target.Role != in.Role {
		h.Audit.RoleChanged(ctx, r, a, target.ID, target.Role, in.Role)
	}

	target.Role = in.Role
	uierrors.JSON(w, http.StatusOK, userView(target))
}
