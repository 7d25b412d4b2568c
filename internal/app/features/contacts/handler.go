// internal/app/features/contacts/handler.go
package contacts

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	contactstore "github.com/dalemusser/sfahub/internal/app/store/contacts"
	customerstore "github.com/dalemusser/sfahub/internal/app/store/customers"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/timezones"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listURL = "/contacts"

type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	Contacts  *contactstore.Store
	Customers *customerstore.Store

	// Location decides which calendar day "today" is for visit plans and
	// activity counts.
	Location *time.Location
	Now      func() time.Time
}

// NewHandler wires the contacts feature. A nil loc means Asia/Tokyo.
func NewHandler(db *mongo.Database, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = timezones.Location(timezones.Default)
	}
	return &Handler{
		DB:        db,
		Log:       logger,
		Contacts:  contactstore.New(db),
		Customers: customerstore.New(db),
		Location:  loc,
		Now:       time.Now,
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

func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Handle(w, r, h.Log, contactstore.ErrNotFound, listURL)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) today() string {
	return timezones.Today(h.Now(), h.Location)
}
