package profile_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/sfahub/internal/app/features/profile"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/sfahub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	db     *mongo.Database
	router chi.Router
	fx     *testutil.Fixtures
	ws     models.Workspace
	rep    models.User
}

type view struct {
	FirstName string               `json:"first_name"`
	LastName  string               `json:"last_name"`
	State     string               `json:"state"`
	GroupIDs  []primitive.ObjectID `json:"group_ids"`
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-0123", "test-session", "", 24*time.Hour, false, logger)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	ws := fx.CreateWorkspace(ctx, "Acme Sales")
	return env{
		db:     db,
		router: profile.Routes(profile.NewHandler(db, logger), sm),
		fx:     fx,
		ws:     ws,
		rep:    fx.CreateMember(ctx, "rep@example.com", models.RoleGeneral, ws.ID),
	}
}

func (e env) do(u models.User, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, testutil.WithUser(req, testutil.UserFrom(u)))
	return rec
}

func TestServeProfile(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	g := e.fx.CreateGroup(ctx, e.ws.ID, "East")
	e.fx.AddToGroup(ctx, e.ws.ID, g.ID, e.rep.ID)

	rec := e.do(e.rep, httptest.NewRequest("GET", "/", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var v view
	testutil.DecodeJSON(t, rec, &v)
	assert.Equal(t, "active", v.State)
	assert.Equal(t, []primitive.ObjectID{g.ID}, v.GroupIDs)

	pending := e.fx.CreateUser(ctx, "pending@example.com", models.RoleGeneral, &e.ws.ID, false)
	rec = e.do(pending, httptest.NewRequest("GET", "/", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	v = view{}
	testutil.DecodeJSON(t, rec, &v)
	assert.Equal(t, "pending_join", v.State)
	assert.Empty(t, v.GroupIDs)
}

func TestServeProfile_Unauthenticated(t *testing.T) {
	e := setup(t)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}

func TestHandleUpdate(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	east := e.fx.CreateGroup(ctx, e.ws.ID, "East")
	west := e.fx.CreateGroup(ctx, e.ws.ID, "West")
	foreign := e.fx.CreateGroup(ctx, e.fx.CreateWorkspace(ctx, "Rival Sales").ID, "Theirs")
	e.fx.AddToGroup(ctx, e.ws.ID, east.ID, e.rep.ID)

	rec := e.do(e.rep, testutil.JSONRequest(t, "PUT", "/", map[string]any{
		"first_name": "Taro",
		"last_name":  "Yamada",
		"group_ids":  []string{west.ID.Hex()},
	}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var v view
	testutil.DecodeJSON(t, rec, &v)
	assert.Equal(t, "Taro", v.FirstName)
	assert.Equal(t, "Yamada", v.LastName)
	assert.Equal(t, []primitive.ObjectID{west.ID}, v.GroupIDs)

	// Omitting group_ids leaves the groups alone.
	rec = e.do(e.rep, testutil.JSONRequest(t, "PUT", "/", map[string]any{"first_name": "Jiro", "last_name": "Yamada"}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	v = view{}
	testutil.DecodeJSON(t, rec, &v)
	assert.Equal(t, []primitive.ObjectID{west.ID}, v.GroupIDs)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing first name", map[string]any{"last_name": "Yamada"}},
		{"long first name", map[string]any{"first_name": strings.Repeat("a", 31), "last_name": "Yamada"}},
		{"foreign group", map[string]any{"first_name": "Taro", "last_name": "Yamada", "group_ids": []string{foreign.ID.Hex()}}},
		{"bad group id", map[string]any{"first_name": "Taro", "last_name": "Yamada", "group_ids": []string{"nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(e.rep, testutil.JSONRequest(t, "PUT", "/", tt.body))
			testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)
		})
	}
}

func TestHandleUpdate_GroupsNeedActiveMembership(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	loner := e.fx.CreateUser(ctx, "loner@example.com", models.RoleGeneral, nil, false)

	rec := e.do(loner, testutil.JSONRequest(t, "PUT", "/", map[string]any{
		"first_name": "Lone", "last_name": "Wolf", "group_ids": []string{},
	}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)

	rec = e.do(loner, testutil.JSONRequest(t, "PUT", "/", map[string]any{"first_name": "Lone", "last_name": "Wolf"}))
	testutil.AssertStatus(t, rec, http.StatusOK)
}

func TestHandleChangePassword(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := e.do(e.rep, testutil.JSONRequest(t, "PUT", "/password", map[string]string{
		"current_password": "wrong-password", "new_password": "brand-new-secret",
	}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)

	rec = e.do(e.rep, testutil.JSONRequest(t, "PUT", "/password", map[string]string{
		"current_password": testutil.TestPassword, "new_password": "short",
	}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)

	rec = e.do(e.rep, testutil.JSONRequest(t, "PUT", "/password", map[string]string{
		"current_password": testutil.TestPassword, "new_password": testutil.TestPassword,
	}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)

	rec = e.do(e.rep, testutil.JSONRequest(t, "PUT", "/password", map[string]string{
		"current_password": testutil.TestPassword, "new_password": "brand-new-secret",
	}))
	testutil.AssertStatus(t, rec, http.StatusNoContent)

	users := userstore.New(e.db)
	_, err := users.Authenticate(ctx, "rep@example.com", "brand-new-secret")
	assert.NoError(t, err)
	_, err = users.Authenticate(ctx, "rep@example.com", testutil.TestPassword)
	assert.ErrorIs(t, err, userstore.ErrBadCredentials)
}
