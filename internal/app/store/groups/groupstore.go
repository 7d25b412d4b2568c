// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateGroupName = errors.New("a group with this name already exists in the workspace")
	ErrNotFound           = fmt.Errorf("group %w", errs.ErrNotFound)
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// Get loads a group only if it belongs to ws.
func (s *Store) Get(ctx context.Context, ws, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "workspace_id": ws}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.Name = strings.TrimSpace(g.Name)
	g.NameCI = text.Fold(g.Name)
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	return g, nil
}

// Rename updates a group's name inside ws.
func (s *Store) Rename(ctx context.Context, ws, id primitive.ObjectID, name string, by primitive.ObjectID) error {
	name = strings.TrimSpace(name)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "workspace_id": ws}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_by": by,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroupName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one keyset page of ws's groups ordered by folded name.
func (s *Store) List(ctx context.Context, ws primitive.ObjectID, cfg paging.KeysetConfig) ([]models.Group, paging.Result, error) {
	filter := bson.M{"workspace_id": ws}
	if win := cfg.KeysetWindow("name_ci"); win != nil {
		filter = bson.M{"$and": []bson.M{filter, win}}
	}

	cur, err := s.c.Find(ctx, filter, cfg.ApplyToFind(options.Find(), "name_ci"))
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)

	var rows []models.Group
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Result{}, err
	}
	return rows, paging.TrimPage(&rows, cfg), nil
}

// ListAll returns every group in ws ordered by name, for pickers.
func (s *Store) ListAll(ctx context.Context, ws primitive.ObjectID) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": ws},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Group
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountIn reports how many of ids are groups of ws. Callers use it to
// reject foreign group IDs in sharing lists.
func (s *Store) CountIn(ctx context.Context, ws primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"workspace_id": ws, "_id": bson.M{"$in": ids}})
}
