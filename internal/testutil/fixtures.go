// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures inserts test documents directly, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database { return f.db }

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert %s fixture: %v", coll, err)
	}
}

// CreateWorkspace creates a workspace with the given name.
func (f *Fixtures) CreateWorkspace(ctx context.Context, name string) models.Workspace {
	f.t.Helper()
	now := time.Now().UTC()
	ws := models.Workspace{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "workspaces", ws)
	return ws
}

// TestPassword is the password of every user created by Fixtures.
const TestPassword = "correct-horse-battery"

var testPasswordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateUser creates an active account. ws may be nil for an unaffiliated
// user; wsActive decides between pending and confirmed membership.
func (f *Fixtures) CreateUser(ctx context.Context, email string, role models.Role, ws *primitive.ObjectID, wsActive bool) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:                primitive.NewObjectID(),
		Email:             email,
		FirstName:         "Test",
		LastName:          email,
		PasswordHash:      testPasswordHash,
		WorkspaceID:       ws,
		IsWorkspaceActive: ws != nil && wsActive,
		Role:              role,
		IsActive:          true,
		DateJoined:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateMember creates an active member of ws with role.
func (f *Fixtures) CreateMember(ctx context.Context, email string, role models.Role, ws primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, email, role, &ws, true)
}

// CreateGroup creates a group in ws.
func (f *Fixtures) CreateGroup(ctx context.Context, ws primitive.ObjectID, name string) models.Group {
	f.t.Helper()
	now := time.Now().UTC()
	g := models.Group{
		ID:          primitive.NewObjectID(),
		WorkspaceID: ws,
		Name:        name,
		NameCI:      text.Fold(name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "groups", g)
	return g
}

// AddToGroup joins user to group.
func (f *Fixtures) AddToGroup(ctx context.Context, ws, group, user primitive.ObjectID) {
	f.t.Helper()
	f.insert(ctx, "group_memberships", models.GroupMembership{
		ID:          primitive.NewObjectID(),
		WorkspaceID: ws,
		GroupID:     group,
		UserID:      user,
		CreatedAt:   time.Now().UTC(),
	})
}

// CreateCustomer inserts c after filling ID, timestamps, statuses and the
// author (from owner) when they are empty.
func (f *Fixtures) CreateCustomer(ctx context.Context, owner models.User, c models.Customer) models.Customer {
	f.t.Helper()
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.WorkspaceID.IsZero() && owner.WorkspaceID != nil {
		c.WorkspaceID = *owner.WorkspaceID
	}
	if c.Author == "" {
		c.Author = owner.Email
		c.Modifier = owner.Email
	}
	if c.SalesPerson == nil {
		id := owner.ID
		c.SalesPerson = &id
	}
	if c.PublicStatus == "" {
		c.PublicStatus = models.PublicPrivate
	}
	if c.ActionStatus == "" {
		c.ActionStatus = models.ActionNotStarted
	}
	if c.CustomerName == "" {
		c.CustomerName = "Customer " + c.ID.Hex()[18:]
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	f.insert(ctx, "customers", c)
	return c
}

// Actor builds the authz.Actor for u, loading its group IDs.
func (f *Fixtures) Actor(ctx context.Context, u models.User) authz.Actor {
	f.t.Helper()
	cur, err := f.db.Collection("group_memberships").Find(ctx, bson.M{"user_id": u.ID})
	if err != nil {
		f.t.Fatalf("load memberships: %v", err)
	}
	var rows []models.GroupMembership
	if err := cur.All(ctx, &rows); err != nil {
		f.t.Fatalf("decode memberships: %v", err)
	}
	var gids []primitive.ObjectID
	for _, m := range rows {
		gids = append(gids, m.GroupID)
	}
	return authz.FromUser(u, gids)
}
