// internal/app/features/uploadcsv/handler.go
package uploadcsv

import (
	"context"

	groupstore "github.com/dalemusser/sfahub/internal/app/store/groups"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/csvimport"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides HTTP handlers for CSV imports.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Importer *csvimport.Importer
	Users    *userstore.Store
	Groups   *groupstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Importer: csvimport.New(db, logger),
		Users:    userstore.New(db),
		Groups:   groupstore.New(db),
	}
}

// checkOverrides confirms that the form-level sales person and sharing
// targets all belong to the actor's workspace.
func (h *Handler) checkOverrides(ctx context.Context, a authz.Actor, opts csvimport.CustomerOptions) error {
	ve := new(errs.ValidationError)

	users := []struct {
		field string
		ids   []primitive.ObjectID
	}{
		{"shared_edit_users", opts.SharedEditUsers},
		{"shared_view_users", opts.SharedViewUsers},
	}
	if opts.SalesPerson != nil {
		users = append(users, struct {
			field string
			ids   []primitive.ObjectID
		}{"sales_person", []primitive.ObjectID{*opts.SalesPerson}})
	}
	for _, u := range users {
		if len(u.ids) == 0 {
			continue
		}
		n, err := h.Users.CountActiveIn(ctx, a.WorkspaceID, u.ids)
		if err != nil {
			return err
		}
		if n != int64(len(u.ids)) {
			ve.Add(u.field, "Only members of this workspace can be selected.")
		}
	}

	for _, g := range []struct {
		field string
		ids   []primitive.ObjectID
	}{
		{"shared_edit_groups", opts.SharedEditGroups},
		{"shared_view_groups", opts.SharedViewGroups},
	} {
		if len(g.ids) == 0 {
			continue
		}
		n, err := h.Groups.CountIn(ctx, a.WorkspaceID, g.ids)
		if err != nil {
			return err
		}
		if n != int64(len(g.ids)) {
			ve.Add(g.field, "Only groups of this workspace can be selected.")
		}
	}

	return ve.OrNil()
}
