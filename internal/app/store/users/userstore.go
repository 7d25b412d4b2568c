package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/sfahub/internal/app/system/normalize"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	db *mongo.Database
	c  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when no user matches.
	ErrNotFound = fmt.Errorf("user %w", errs.ErrNotFound)
	errBadRole  = errors.New(`role must be "general"|"admin"|"owner"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a new user after normalizing & validating fields.
// It does not write any group memberships.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	if u.Role == "" {
		u.Role = models.RoleGeneral
	}
	if !u.Role.Valid() {
		return models.User{}, errBadRole
	}
	if u.WorkspaceID == nil {
		u.IsWorkspaceActive = false
	}

	now := time.Now().UTC()
	u.DateJoined = now
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ListWorkspace returns one page of ws's users, pending members first.
func (s *Store) ListWorkspace(ctx context.Context, ws primitive.ObjectID, skip, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "is_workspace_active", Value: 1}, {Key: "last_name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": ws}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountWorkspace counts ws's users, pending and active.
func (s *Store) CountWorkspace(ctx context.Context, ws primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"workspace_id": ws})
}

// ActiveMembers returns the active members of ws whose role is at least min.
func (s *Store) ActiveMembers(ctx context.Context, ws primitive.ObjectID, min models.Role) ([]models.User, error) {
	var roles []models.Role
	for _, r := range models.Roles() {
		if r.AtLeast(min) {
			roles = append(roles, r)
		}
	}
	cur, err := s.c.Find(ctx, bson.M{
		"workspace_id":        ws,
		"is_workspace_active": true,
		"is_active":           true,
		"role":                bson.M{"$in": roles},
	}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateName sets the user's own first and last name.
func (s *Store) UpdateName(ctx context.Context, userID primitive.ObjectID, first, last string) (models.User, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": stamp(bson.M{
		"first_name": first,
		"last_name":  last,
	})})
	if err != nil {
		return models.User{}, err
	}
	if res.MatchedCount == 0 {
		return models.User{}, ErrNotFound
	}
	return s.GetByID(ctx, userID)
}

// NamesByIDs maps each found ID to the user's full name. Users who have
// since left a workspace are still resolved.
func (s *Store) NamesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"first_name": 1, "last_name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u.FullName()
	}
	return out, cur.Err()
}

// CountActiveIn reports how many of ids are active members of ws. Callers
// use it to reject foreign user IDs in sharing lists and assignments.
func (s *Store) CountActiveIn(ctx context.Context, ws primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{
		"_id":                 bson.M{"$in": ids},
		"workspace_id":        ws,
		"is_workspace_active": true,
	})
}
