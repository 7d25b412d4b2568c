// internal/app/features/groups/handler.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	groupstore "github.com/dalemusser/sfahub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/sfahub/internal/app/store/memberships"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/auditlog"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listURL = "/groups"

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
	Audit       *auditlog.Logger
}

// NewHandler wires the groups handler. audit may be nil.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
		Users:       userstore.New(db),
		Audit:       audit,
	}
}

func actor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok || !a.InWorkspace() {
		uierrors.Redirect(w, r, "/")
		return authz.Actor{}, false
	}
	return a, true
}

func (h *Handler) groupID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Handle(w, r, h.Log, groupstore.ErrNotFound, listURL)
		return primitive.NilObjectID, false
	}
	return id, true
}
