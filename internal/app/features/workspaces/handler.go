// internal/app/features/workspaces/handler.go
package workspaces

import (
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/sfahub/internal/app/store/memberships"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	workspacestore "github.com/dalemusser/sfahub/internal/app/store/workspaces"
	"github.com/dalemusser/sfahub/internal/app/system/auditlog"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/mailer"
	"github.com/dalemusser/sfahub/internal/app/system/token"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Options carries the settings used to build emailed links.
type Options struct {
	BaseURL      string
	InviteMaxAge time.Duration
}

// Handler provides HTTP handlers for workspace membership: creating and
// joining workspaces, the member list, membership transitions, roles and
// invitations.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Workspaces  *workspacestore.Store
	Users       *userstore.Store
	Memberships *membershipstore.Store
	Signer      *token.Signer
	Mailer      mailer.Mailer
	Audit       *auditlog.Logger
	Opts        Options
}

// NewHandler creates a workspaces Handler. audit may be nil.
func NewHandler(db *mongo.Database, signer *token.Signer, m mailer.Mailer, audit *auditlog.Logger, opts Options, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Workspaces:  workspacestore.New(db),
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
		Signer:      signer,
		Mailer:      m,
		Audit:       audit,
		Opts:        opts,
	}
}

func (h *Handler) link(path string) string {
	return strings.TrimRight(h.Opts.BaseURL, "/") + path
}

// member returns the actor for routes that need an active membership.
func member(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok || !a.InWorkspace() {
		uierrors.Redirect(w, r, "/")
		return authz.Actor{}, false
	}
	return a, true
}

func targetID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, userstore.ErrNotFound
	}
	return id, nil
}

// fail answers membership requests. A refused precondition is a plain
// bad request rather than the redirect other features use.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errs.ErrPermissionDenied) {
		uierrors.Message(w, http.StatusBadRequest, "You cannot make this change.")
		return
	}
	uierrors.Handle(w, r, h.Log, err, "/users")
}
