// internal/app/features/auditlog/handler.go
package auditlog

import (
	"time"

	"github.com/dalemusser/sfahub/internal/app/store/audit"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/timezones"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Events *audit.Store
	Users  *userstore.Store

	// Location interprets the from/to filter dates.
	Location *time.Location
}

// NewHandler constructs the audit trail handler. A nil loc means Asia/Tokyo.
func NewHandler(db *mongo.Database, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = timezones.Location(timezones.Default)
	}
	return &Handler{
		DB:       db,
		Log:      logger,
		Events:   audit.New(db),
		Users:    userstore.New(db),
		Location: loc,
	}
}
