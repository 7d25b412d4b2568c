// internal/app/features/settings/handler.go
package settings

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	settingsstore "github.com/dalemusser/sfahub/internal/app/store/settings"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the goal, environment and display settings handlers.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Settings *settingsstore.Store
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Settings: settingsstore.New(db),
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
