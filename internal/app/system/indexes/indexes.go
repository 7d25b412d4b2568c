// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called from EnsureSchema and by `sfactl ensure-schema`. Each
collection's set is reconciled independently; every problem is collected
so one bad index does not hide the others.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var result *multierror.Error
	for _, spec := range specs() {
		if err := ensureIndexSet(ctx, db.Collection(spec.collection), spec.models); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", spec.collection, err))
		}
	}
	return result.ErrorOrNil()
}

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func uniq(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func specs() []collectionIndexes {
	return []collectionIndexes{
		{"workspaces", []mongo.IndexModel{
			uniq("uniq_workspaces_nameci", bson.D{{Key: "name_ci", Value: 1}}),
		}},
		{"users", []mongo.IndexModel{
			uniq("uniq_users_email", bson.D{{Key: "email", Value: 1}}),
			idx("idx_users_workspace_active", bson.D{{Key: "workspace_id", Value: 1}, {Key: "is_workspace_active", Value: 1}, {Key: "_id", Value: 1}}),
			idx("idx_users_workspace_role", bson.D{{Key: "workspace_id", Value: 1}, {Key: "role", Value: 1}}),
		}},
		{"groups", []mongo.IndexModel{
			uniq("uniq_groups_workspace_nameci", bson.D{{Key: "workspace_id", Value: 1}, {Key: "name_ci", Value: 1}}),
			idx("idx_groups_workspace_nameci_id", bson.D{{Key: "workspace_id", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}),
		}},
		{"group_memberships", []mongo.IndexModel{
			uniq("uniq_gm_group_user", bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}}),
			idx("idx_gm_user", bson.D{{Key: "user_id", Value: 1}}),
			idx("idx_gm_workspace_user", bson.D{{Key: "workspace_id", Value: 1}, {Key: "user_id", Value: 1}}),
		}},
		{"customers", []mongo.IndexModel{
			idx("idx_customers_ws_del_created", bson.D{{Key: "workspace_id", Value: 1}, {Key: "delete_flg", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_customers_ws_sales", bson.D{{Key: "workspace_id", Value: 1}, {Key: "sales_person", Value: 1}}),
			idx("idx_customers_ws_tel1", bson.D{{Key: "workspace_id", Value: 1}, {Key: "tel_number1", Value: 1}}),
			idx("idx_customers_ws_tel2", bson.D{{Key: "workspace_id", Value: 1}, {Key: "tel_number2", Value: 1}}),
			idx("idx_customers_ws_tel3", bson.D{{Key: "workspace_id", Value: 1}, {Key: "tel_number3", Value: 1}}),
		}},
		{"contacts", []mongo.IndexModel{
			idx("idx_contacts_ws_customer_at", bson.D{{Key: "workspace_id", Value: 1}, {Key: "customer_id", Value: 1}, {Key: "contact_at", Value: -1}}),
			idx("idx_contacts_operator_at", bson.D{{Key: "operator_id", Value: 1}, {Key: "contact_at", Value: -1}}),
			idx("idx_contacts_operator_visitplan", bson.D{{Key: "operator_id", Value: 1}, {Key: "visit_date_plan", Value: 1}, {Key: "start_time_plan", Value: 1}}),
		}},
		{"addresses", []mongo.IndexModel{
			idx("idx_addresses_ws_related_created", bson.D{{Key: "workspace_id", Value: 1}, {Key: "related_flg", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{"goal_settings", []mongo.IndexModel{
			uniq("uniq_goal_settings_user", bson.D{{Key: "user_id", Value: 1}}),
		}},
		{"workspace_settings", []mongo.IndexModel{
			uniq("uniq_workspace_settings_ws", bson.D{{Key: "workspace_id", Value: 1}}),
		}},
		{"audit_events", []mongo.IndexModel{
			idx("idx_audit_ws_ts", bson.D{{Key: "workspace_id", Value: 1}, {Key: "timestamp", Value: -1}}),
			idx("idx_audit_target_ts", bson.D{{Key: "target_id", Value: 1}, {Key: "timestamp", Value: -1}}),
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var ix existingIndex
		if err := cur.Decode(&ix); err != nil {
			zap.L().Warn("failed to decode existing index", zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(ix.Key)] = ix
	}
	return out, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A missing collection lists as an error on some servers; create below.
		existing = map[string]existingIndex{}
	}

	var result *multierror.Error
	for _, m := range models {
		name := *m.Options.Name
		unique := boolVal(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && boolVal(ex.Unique) == unique {
				log.Debug("reusing existing index")
				continue
			}
			// Same keys, different name or options: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				result = multierror.Append(result, fmt.Errorf("%s: drop %s: %w", name, ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && isDuplicateKeyErr(err) {
				err = fmt.Errorf("cannot create unique index (duplicates present on %s): %w", sig, err)
			}
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}
	return result.ErrorOrNil()
}

func isDuplicateKeyErr(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
