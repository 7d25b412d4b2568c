// internal/app/features/home/handler.go
package home

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	workspacestore "github.com/dalemusser/sfahub/internal/app/store/workspaces"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the landing endpoint. Membership guards redirect here, so
// it tells the caller where they stand and what to do next.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	Workspaces *workspacestore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		Workspaces: workspacestore.New(db),
	}
}

type workspaceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type landing struct {
	SignedIn  bool          `json:"signed_in"`
	Name      string        `json:"name,omitempty"`
	Email     string        `json:"email,omitempty"`
	Role      string        `json:"role,omitempty"`
	State     string        `json:"state,omitempty"`
	Workspace *workspaceRef `json:"workspace,omitempty"`
	Next      []string      `json:"next"`
}

// state mirrors workspacepolicy.State for a session actor.
func state(a authz.Actor) workspacepolicy.MembershipState {
	switch {
	case a.WorkspaceID.IsZero():
		return workspacepolicy.Unaffiliated
	case !a.WorkspaceActive:
		return workspacepolicy.PendingJoin
	default:
		return workspacepolicy.Active
	}
}

// ServeRoot handles GET /.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		uierrors.JSON(w, http.StatusOK, landing{Next: []string{"/login", "/register"}})
		return
	}

	out := landing{
		SignedIn: true,
		Name:     a.Name,
		Email:    a.Email,
		Role:     string(a.Role),
	}
	st := state(a)
	out.State = st.String()

	switch st {
	case workspacepolicy.Unaffiliated:
		out.Next = []string{"/workspaces", "/workspaces/join"}
	case workspacepolicy.PendingJoin:
		// Waiting on an admin; nothing to do but sign out.
		out.Next = []string{"/logout"}
	default:
		out.Next = []string{"/customers", "/contacts", "/addresses", "/groups", "/settings/goal"}
	}

	if !a.WorkspaceID.IsZero() {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "landing workspace")
		defer cancel()
		ws, err := h.Workspaces.GetByID(ctx, a.WorkspaceID)
		if err != nil {
			h.Log.Warn("landing workspace lookup failed", zap.Error(err), zap.String("workspace_id", a.WorkspaceID.Hex()))
		} else {
			out.Workspace = &workspaceRef{ID: ws.ID.Hex(), Name: ws.Name}
		}
	}

	uierrors.JSON(w, http.StatusOK, out)
}
