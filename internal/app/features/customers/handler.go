// internal/app/features/customers/handler.go
package customers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	contactstore "github.com/dalemusser/sfahub/internal/app/store/contacts"
	customerstore "github.com/dalemusser/sfahub/internal/app/store/customers"
	groupstore "github.com/dalemusser/sfahub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/sfahub/internal/app/store/memberships"
	settingsstore "github.com/dalemusser/sfahub/internal/app/store/settings"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/bulkaction"
	"github.com/dalemusser/sfahub/internal/app/system/geocode"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listURL = "/customers"

// Handler serves customer records, their contact history, the map view and
// bulk actions.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Customers   *customerstore.Store
	Contacts    *contactstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
	Groups      *groupstore.Store
	Settings    *settingsstore.Store
	Geocoder    geocode.Geocoder
	Bulk        *bulkaction.Coordinator
}

// NewHandler wires the customers feature. geocoder may be nil, in which
// case records are saved without coordinate lookup.
func NewHandler(db *mongo.Database, geocoder geocode.Geocoder, logger *zap.Logger) *Handler {
	customers := customerstore.New(db)
	settings := settingsstore.New(db)
	return &Handler{
		DB:          db,
		Log:         logger,
		Customers:   customers,
		Contacts:    contactstore.New(db),
		Memberships: membershipstore.New(db),
		Users:       userstore.New(db),
		Groups:      groupstore.New(db),
		Settings:    settings,
		Geocoder:    geocoder,
		Bulk: &bulkaction.Coordinator{
			Customers: customers,
			Geocoder:  geocoder,
			Settings:  settings,
			Log:       logger,
		},
	}
}

// actor returns the signed-in workspace member, or answers 303 to "/".
func actor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok || !a.InWorkspace() {
		uierrors.Redirect(w, r, "/")
		return authz.Actor{}, false
	}
	return a, true
}

// recordID reads the {id} URL parameter. A malformed ID is treated like a
// missing record.
func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Handle(w, r, h.Log, customerstore.ErrNotFound, listURL)
		return primitive.NilObjectID, false
	}
	return id, true
}

// locate fills missing coordinates from the workspace's geocode key.
// Lookup failures are logged and the record is saved without them.
func (h *Handler) locate(ctx context.Context, a authz.Actor, c *models.Customer) {
	if h.Geocoder == nil || c.HasCoordinates() {
		return
	}
	key, err := h.Settings.GeocodeKey(ctx, a.WorkspaceID)
	if err != nil {
		h.Log.Warn("load geocode key", zap.String("workspace_id", a.WorkspaceID.Hex()), zap.Error(err))
		return
	}
	if _, err := geocode.Locate(ctx, h.Geocoder, key, c); err != nil {
		h.Log.Warn("geocode failed", zap.String("customer_id", c.ID.Hex()), zap.Error(err))
	}
}

// checkSharing confirms that the sales person and every shared user are
// active members of the actor's workspace and every shared group belongs
// to it.
func (h *Handler) checkSharing(ctx context.Context, a authz.Actor, c *models.Customer) error {
	ve := new(errs.ValidationError)

	if c.SalesPerson != nil && *c.SalesPerson != a.UserID {
		n, err := h.Users.CountActiveIn(ctx, a.WorkspaceID, []primitive.ObjectID{*c.SalesPerson})
		if err != nil {
			return err
		}
		if n != 1 {
			ve.Add("sales_person", "Select a member of this workspace.")
		}
	}

	for _, f := range []struct {
		field string
		ids   []primitive.ObjectID
	}{
		{"shared_edit_users", c.SharedEditUsers},
		{"shared_view_users", c.SharedViewUsers},
	} {
		ids := uniqueIDs(f.ids)
		if len(ids) == 0 {
			continue
		}
		n, err := h.Users.CountActiveIn(ctx, a.WorkspaceID, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			ve.Add(f.field, "Only members of this workspace can be selected.")
		}
	}

	for _, f := range []struct {
		field string
		ids   []primitive.ObjectID
	}{
		{"shared_edit_groups", c.SharedEditGroups},
		{"shared_view_groups", c.SharedViewGroups},
	} {
		ids := uniqueIDs(f.ids)
		if len(ids) == 0 {
			continue
		}
		n, err := h.Groups.CountIn(ctx, a.WorkspaceID, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			ve.Add(f.field, "Only groups of this workspace can be selected.")
		}
	}

	return ve.OrNil()
}

func uniqueIDs(in []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(in))
	out := make([]primitive.ObjectID, 0, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
