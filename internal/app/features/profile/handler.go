// internal/app/features/profile/handler.go
package profile

import (
	groupstore "github.com/dalemusser/sfahub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/sfahub/internal/app/store/memberships"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the signed-in user's own profile endpoints.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Users       *userstore.Store
	Memberships *membershipstore.Store
	Groups      *groupstore.Store
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
		Groups:      groupstore.New(db),
	}
}
