// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to workspace_settings and goal_settings.
// Each workspace has one settings document (one per workspace_id) holding
// both the environment and the display block; each user has one goal.
type Store struct {
	ws    *mongo.Collection
	goals *mongo.Collection
}

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{
		ws:    db.Collection("workspace_settings"),
		goals: db.Collection("goal_settings"),
	}
}

// Get returns the settings for a workspace, or defaults when none were
// saved yet.
func (s *Store) Get(ctx context.Context, workspaceID primitive.ObjectID) (models.WorkspaceSettings, error) {
	var settings models.WorkspaceSettings
	err := s.ws.FindOne(ctx, bson.M{"workspace_id": workspaceID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.WorkspaceSettings{
			WorkspaceID: workspaceID,
			Display:     models.DefaultDisplay(),
		}, nil
	}
	if err != nil {
		return models.WorkspaceSettings{}, err
	}
	return settings, nil
}

// GeocodeKey returns the workspace's geocoding API key, empty when unset.
func (s *Store) GeocodeKey(ctx context.Context, workspaceID primitive.ObjectID) (string, error) {
	settings, err := s.Get(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	return settings.Environment.GeocodeAPIKey, nil
}

// SaveEnvironment replaces the environment block. Uses upsert so it works
// whether settings exist or not; a fresh document gets the default display.
func (s *Store) SaveEnvironment(ctx context.Context, workspaceID primitive.ObjectID, env models.EnvironmentSetting, by primitive.ObjectID) error {
	return s.save(ctx, workspaceID, "environment", env, "display", models.DefaultDisplay(), by)
}

// SaveDisplay replaces the display block.
func (s *Store) SaveDisplay(ctx context.Context, workspaceID primitive.ObjectID, disp models.DisplaySetting, by primitive.ObjectID) error {
	return s.save(ctx, workspaceID, "display", disp, "environment", models.EnvironmentSetting{}, by)
}

func (s *Store) save(ctx context.Context, workspaceID primitive.ObjectID, field string, val any, otherField string, otherDefault any, by primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"workspace_id":  workspaceID,
			field:           val,
			"updated_at":    time.Now().UTC(),
			"updated_by_id": by,
		},
		"$setOnInsert": bson.M{
			"_id":      primitive.NewObjectID(),
			otherField: otherDefault,
		},
	}
	_, err := s.ws.UpdateOne(ctx, bson.M{"workspace_id": workspaceID}, update, options.Update().SetUpsert(true))
	return err
}

// GetGoal returns userID's goal, zero-valued when none was saved.
func (s *Store) GetGoal(ctx context.Context, userID primitive.ObjectID) (models.GoalSetting, error) {
	var g models.GoalSetting
	err := s.goals.FindOne(ctx, bson.M{"user_id": userID}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GoalSetting{UserID: userID}, nil
	}
	if err != nil {
		return models.GoalSetting{}, err
	}
	return g, nil
}

// SaveGoal upserts userID's goal.
func (s *Store) SaveGoal(ctx context.Context, userID primitive.ObjectID, outbound, visits int) (models.GoalSetting, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"user_id":        userID,
			"outbound_count": outbound,
			"visit_count":    visits,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var g models.GoalSetting
	if err := s.goals.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&g); err != nil {
		return models.GoalSetting{}, err
	}
	return g, nil
}
