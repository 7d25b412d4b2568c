// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/hashicorp/go-multierror"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and attaches JSON-Schema
// validators. Servers without collMod validator support are logged and
// skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var result *multierror.Error

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", coll, err))
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			result = multierror.Append(result, fmt.Errorf("%s: %w", coll, err))
		}
	}

	ensure("workspaces", workspacesSchema())
	ensure("users", usersSchema())
	ensure("groups", groupsSchema())
	ensure("group_memberships", groupMembershipsSchema())
	ensure("customers", customersSchema())
	ensure("contacts", contactsSchema())
	ensure("addresses", addressesSchema())
	ensure("goal_settings", nil)
	ensure("workspace_settings", nil)

	return result.ErrorOrNil()
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection returns created==true only if it actually created name.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	if exists, err := collectionExists(ctx, db, name); err == nil && exists {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErr(err error) (mongo.CommandError, bool) {
	var ce mongo.CommandError
	ok := errors.As(err, &ce)
	return ce, ok
}

func isNamespaceExistsErr(err error) bool {
	if ce, ok := commandErr(err); ok && ce.Code == 48 {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if ce, ok := commandErr(err); ok && ce.Code == 59 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if ce, ok := commandErr(err); ok && ce.Code == 115 {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonEmpty  = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	objectID  = bson.M{"bsonType": "objectId"}
	optOID    = bson.M{"bsonType": bson.A{"objectId", "null"}}
	oidArray  = bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "objectId"}}
	boolean   = bson.M{"bsonType": "bool"}
	timestamp = bson.M{"bsonType": "date"}
)

func enum[T ~string](vals ...T) bson.M {
	a := bson.A{}
	for _, v := range vals {
		a = append(a, string(v))
	}
	return bson.M{"enum": a}
}

func schema(required bson.A, props bson.M) bson.M {
	return bson.M{"$jsonSchema": bson.M{
		"bsonType":   "object",
		"required":   required,
		"properties": props,
	}}
}

func workspacesSchema() bson.M {
	return schema(bson.A{"name", "name_ci"}, bson.M{
		"name":    nonEmpty,
		"name_ci": nonEmpty,
	})
}

func usersSchema() bson.M {
	return schema(bson.A{"email", "role", "is_active", "is_workspace_active"}, bson.M{
		"email":               nonEmpty,
		"workspace_id":        optOID,
		"role":                enum(models.Roles()...),
		"is_active":           boolean,
		"is_workspace_active": boolean,
	})
}

func groupsSchema() bson.M {
	return schema(bson.A{"workspace_id", "name", "name_ci"}, bson.M{
		"workspace_id": objectID,
		"name":         nonEmpty,
		"name_ci":      nonEmpty,
	})
}

func groupMembershipsSchema() bson.M {
	return schema(bson.A{"workspace_id", "group_id", "user_id"}, bson.M{
		"workspace_id": objectID,
		"group_id":     objectID,
		"user_id":      objectID,
		"created_at":   timestamp,
	})
}

func customersSchema() bson.M {
	return schema(bson.A{"workspace_id", "customer_name", "public_status", "action_status", "delete_flg", "author"}, bson.M{
		"workspace_id":       objectID,
		"customer_name":      nonEmpty,
		"public_status":      enum(models.PublicPrivate, models.PublicViewShared, models.PublicEditShared),
		"action_status":      enum(models.ActionNotStarted, models.ActionPlanned, models.ActionInProgress, models.ActionFinished),
		"sales_person":       optOID,
		"shared_edit_groups": oidArray,
		"shared_view_groups": oidArray,
		"shared_edit_users":  oidArray,
		"shared_view_users":  oidArray,
		"delete_flg":         boolean,
		"author":             bson.M{"bsonType": "string"},
	})
}

func contactsSchema() bson.M {
	return schema(bson.A{"workspace_id", "customer_id", "operator_id", "contact_type", "delete_flg"}, bson.M{
		"workspace_id": objectID,
		"customer_id":  objectID,
		"operator_id":  objectID,
		"contact_type": enum(models.ContactVisit, models.ContactInboundCall, models.ContactOutboundCall,
			models.ContactMail, models.ContactFax, models.ContactDM),
		"contact_at": timestamp,
		"delete_flg": boolean,
	})
}

func addressesSchema() bson.M {
	return schema(bson.A{"workspace_id"}, bson.M{
		"workspace_id": objectID,
		"related_flg":  boolean,
		"author_id":    objectID,
	})
}
