package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
// It reads the user and its group memberships from MongoDB.
type Fetcher struct {
	users       *mongo.Collection
	memberships *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users:       db.Collection("users"),
		memberships: db.Collection("group_memberships"),
	}
}

// FetchSessionUser returns auth.ErrUserGone when the user is missing or not
// active, so the session is dropped. Other errors are transient.
func (f *Fetcher) FetchSessionUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, auth.ErrUserGone
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":                 1,
		"email":               1,
		"first_name":          1,
		"last_name":           1,
		"role":                1,
		"is_active":           1,
		"workspace_id":        1,
		"is_workspace_active": 1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserGone
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, auth.ErrUserGone
	}

	su := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName(),
		Email: u.Email,
		Role:  string(u.Role),
	}
	if u.WorkspaceID == nil {
		return su, nil
	}
	su.WorkspaceID = u.WorkspaceID.Hex()
	su.WorkspaceActive = u.IsWorkspaceActive

	gids, err := f.memberships.Distinct(ctx, "group_id", bson.M{"user_id": oid, "workspace_id": *u.WorkspaceID})
	if err != nil {
		return nil, err
	}
	for _, v := range gids {
		if id, ok := v.(primitive.ObjectID); ok {
			su.GroupIDs = append(su.GroupIDs, id.Hex())
		}
	}
	return su, nil
}
