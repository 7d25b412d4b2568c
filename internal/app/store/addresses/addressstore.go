// internal/app/store/addresses/addressstore.go
package addressstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/sfahub/internal/app/system/normalize"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = fmt.Errorf("address %w", errs.ErrNotFound)

// ListOrder puts unrelated cards first, newest first within each.
var ListOrder = bson.D{
	{Key: "related_flg", Value: 1},
	{Key: "created_at", Value: -1},
	{Key: "_id", Value: -1},
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("addresses")}
}

// NormalizeFields rewrites phone and postal fields into their stored form.
func NormalizeFields(a *models.Address) {
	a.PhoneNumber = normalize.Digits(a.PhoneNumber, normalize.Phone)
	a.FaxNumber = normalize.Digits(a.FaxNumber, normalize.Phone)
	a.MobilePhoneNumber = normalize.Digits(a.MobilePhoneNumber, normalize.Phone)
	a.PhoneNumber2 = normalize.Digits(a.PhoneNumber2, normalize.Phone)
	a.FaxNumber2 = normalize.Digits(a.FaxNumber2, normalize.Phone)
	a.ZipCode = normalize.Digits(a.ZipCode, normalize.Postal)
	a.ZipCode2 = normalize.Digits(a.ZipCode2, normalize.Postal)
	a.MailAddress = normalize.Email(a.MailAddress)
}

// Prepare stamps a new entry with its workspace, author and timestamps.
func Prepare(a *models.Address, workspaceID, by primitive.ObjectID, now time.Time) {
	a.ID = primitive.NewObjectID()
	a.WorkspaceID = workspaceID
	a.AuthorID = by
	a.ModifierID = by
	a.CreatedAt = now
	a.UpdatedAt = now
	NormalizeFields(a)
}

// Create prepares and inserts an entry.
func (s *Store) Create(ctx context.Context, a models.Address, workspaceID, by primitive.ObjectID) (models.Address, error) {
	Prepare(&a, workspaceID, by, time.Now().UTC())
	if err := s.Insert(ctx, a); err != nil {
		return models.Address{}, err
	}
	return a, nil
}

// Insert stores an already prepared entry.
func (s *Store) Insert(ctx context.Context, a models.Address) error {
	_, err := s.c.InsertOne(ctx, a)
	return err
}

func (s *Store) Get(ctx context.Context, workspaceID, id primitive.ObjectID) (models.Address, error) {
	var a models.Address
	err := s.c.FindOne(ctx, bson.M{"_id": id, "workspace_id": workspaceID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Address{}, ErrNotFound
	}
	return a, err
}

// Update replaces an entry's content, keeping its identity, author and
// creation time.
func (s *Store) Update(ctx context.Context, a models.Address, by primitive.ObjectID) (models.Address, error) {
	existing, err := s.Get(ctx, a.WorkspaceID, a.ID)
	if err != nil {
		return models.Address{}, err
	}
	NormalizeFields(&a)
	a.AuthorID = existing.AuthorID
	a.CreatedAt = existing.CreatedAt
	a.ModifierID = by
	a.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": a.ID, "workspace_id": a.WorkspaceID}, a)
	if err != nil {
		return models.Address{}, err
	}
	if res.MatchedCount == 0 {
		return models.Address{}, ErrNotFound
	}
	return a, nil
}

// Delete removes an entry permanently.
func (s *Store) Delete(ctx context.Context, workspaceID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "workspace_id": workspaceID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of a workspace's entries in ListOrder.
func (s *Store) List(ctx context.Context, workspaceID primitive.ObjectID, page paging.Page) ([]models.Address, error) {
	find := page.ApplyToFind(options.Find().SetSort(ListOrder))
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID}, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Address
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of entries in a workspace.
func (s *Store) Count(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"workspace_id": workspaceID})
}
