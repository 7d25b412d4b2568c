// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sfahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c      *mongo.Collection
	users  *mongo.Collection
	groups *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("group_memberships"),
		users:  db.Collection("users"),
		groups: db.Collection("groups"),
	}
}

var (
	ErrDuplicateMembership = errors.New("user is already a member of this group")
	ErrWorkspaceMismatch   = errors.New("user and group belong to different workspaces")
	ErrNotMember           = errors.New("user is not an active member of the workspace")
)

// Add creates a membership after checking that the user is an active
// member of the group's workspace.
func (s *Store) Add(ctx context.Context, groupID, userID primitive.ObjectID) error {
	var g models.Group
	if err := s.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&g); err != nil {
		return err
	}

	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		return err
	}
	if u.WorkspaceID == nil || *u.WorkspaceID != g.WorkspaceID {
		return ErrWorkspaceMismatch
	}
	if !u.IsWorkspaceActive {
		return ErrNotMember
	}

	_, err := s.c.InsertOne(ctx, models.GroupMembership{
		ID:          primitive.NewObjectID(),
		WorkspaceID: g.WorkspaceID,
		GroupID:     groupID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Remove deletes the membership document for (groupID, userID).
func (s *Store) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	return err
}

// SetResult contains counts from a SetMembers call.
type SetResult struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// SetMembers makes userIDs the exact member set of a group in ws. Every
// user must be an active member of ws.
func (s *Store) SetMembers(ctx context.Context, ws, groupID primitive.ObjectID, userIDs []primitive.ObjectID) (SetResult, error) {
	userIDs = dedupe(userIDs)
	if len(userIDs) > 0 {
		n, err := s.users.CountDocuments(ctx, bson.M{
			"_id":                 bson.M{"$in": userIDs},
			"workspace_id":        ws,
			"is_workspace_active": true,
		})
		if err != nil {
			return SetResult{}, err
		}
		if n != int64(len(userIDs)) {
			return SetResult{}, ErrNotMember
		}
	}

	del, err := s.c.DeleteMany(ctx, bson.M{
		"group_id": groupID,
		"user_id":  bson.M{"$nin": userIDs},
	})
	if err != nil {
		return SetResult{}, err
	}
	res := SetResult{Removed: int(del.DeletedCount)}
	if len(userIDs) == 0 {
		return res, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(userIDs))
	for _, uid := range userIDs {
		docs = append(docs, models.GroupMembership{
			ID:          primitive.NewObjectID(),
			WorkspaceID: ws,
			GroupID:     groupID,
			UserID:      uid,
			CreatedAt:   now,
		})
	}

	// Unordered so existing members only cost a duplicate-key error each.
	ins, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if ins != nil {
		res.Added = len(ins.InsertedIDs)
	}
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			for _, we := range bulkErr.WriteErrors {
				if we.Code != 11000 {
					return res, err
				}
			}
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// SetGroupsForUser makes groupIDs the exact set of ws groups userID belongs
// to. Every group must belong to ws; memberships elsewhere are untouched.
func (s *Store) SetGroupsForUser(ctx context.Context, ws, userID primitive.ObjectID, groupIDs []primitive.ObjectID) (SetResult, error) {
	groupIDs = dedupe(groupIDs)
	if len(groupIDs) > 0 {
		n, err := s.groups.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": groupIDs}, "workspace_id": ws})
		if err != nil {
			return SetResult{}, err
		}
		if n != int64(len(groupIDs)) {
			return SetResult{}, ErrWorkspaceMismatch
		}
	}

	del, err := s.c.DeleteMany(ctx, bson.M{
		"workspace_id": ws,
		"user_id":      userID,
		"group_id":     bson.M{"$nin": groupIDs},
	})
	if err != nil {
		return SetResult{}, err
	}
	res := SetResult{Removed: int(del.DeletedCount)}

	now := time.Now().UTC()
	for _, gid := range groupIDs {
		up, err := s.c.UpdateOne(ctx,
			bson.M{"group_id": gid, "user_id": userID},
			bson.M{"$setOnInsert": bson.M{
				"_id":          primitive.NewObjectID(),
				"workspace_id": ws,
				"created_at":   now,
			}},
			options.Update().SetUpsert(true))
		if err != nil {
			return res, err
		}
		if up.UpsertedCount > 0 {
			res.Added++
		}
	}
	return res, nil
}

// DeleteByUserInWorkspace removes every membership userID holds in ws.
func (s *Store) DeleteByUserInWorkspace(ctx context.Context, ws, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": ws, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Exists checks if a membership exists for the given group and user.
func (s *Store) Exists(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GroupIDsForUser returns the groups userID belongs to.
func (s *Store) GroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctIDs(ctx, "group_id", bson.M{"user_id": userID})
}

// MemberIDs returns the users in a group.
func (s *Store) MemberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctIDs(ctx, "user_id", bson.M{"group_id": groupID})
}

// PeersOf returns every user sharing at least one group with userID,
// always including userID itself.
func (s *Store) PeersOf(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	groups, err := s.GroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []primitive.ObjectID{userID}, nil
	}
	peers, err := s.distinctIDs(ctx, "user_id", bson.M{"group_id": bson.M{"$in": groups}})
	if err != nil {
		return nil, err
	}
	for _, p := range peers {
		if p == userID {
			return peers, nil
		}
	}
	return append(peers, userID), nil
}

func (s *Store) distinctIDs(ctx context.Context, field string, filter bson.M) ([]primitive.ObjectID, error) {
	vals, err := s.c.Distinct(ctx, field, filter)
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(primitive.ObjectID); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
