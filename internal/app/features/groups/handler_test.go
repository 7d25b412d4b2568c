package groups_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/sfahub/internal/app/features/groups"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/sfahub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	router chi.Router
	fx     *testutil.Fixtures
	ws     models.Workspace
	admin  models.User
	rep    models.User
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
		router: groups.Routes(groups.NewHandler(db, nil, logger), sm),
		fx:     fx,
		ws:     ws,
		admin:  fx.CreateMember(ctx, "admin@example.com", models.RoleAdmin, ws.ID),
		rep:    fx.CreateMember(ctx, "rep@example.com", models.RoleGeneral, ws.ID),
	}
}

func (e env) do(u models.User, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, testutil.WithUser(req, testutil.UserFrom(u)))
	return rec
}

func TestCreateAndRename(t *testing.T) {
	e := setup(t)

	rec := e.do(e.rep, testutil.JSONRequest(t, "POST", "/", map[string]string{"name": "East"}))
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var g models.Group
	testutil.DecodeJSON(t, rec, &g)
	assert.Equal(t, e.ws.ID, g.WorkspaceID)
	assert.Equal(t, "East", g.Name)

	rec = e.do(e.rep, testutil.JSONRequest(t, "POST", "/", map[string]string{"name": "east"}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)

	rec = e.do(e.rep, testutil.JSONRequest(t, "POST", "/", map[string]string{"name": ""}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)

	rec = e.do(e.rep, testutil.JSONRequest(t, "PUT", "/"+g.ID.Hex(), map[string]string{"name": "East Japan"}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.DecodeJSON(t, rec, &g)
	assert.Equal(t, "East Japan", g.Name)
}

func TestOtherWorkspaceGroupIsHidden(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	other := e.fx.CreateWorkspace(ctx, "Rival Sales")
	foreign := e.fx.CreateGroup(ctx, other.ID, "Theirs")

	rec := e.do(e.admin, httptest.NewRequest("GET", "/"+foreign.ID.Hex(), nil))
	testutil.AssertRedirect(t, rec, "/groups")

	rec = e.do(e.admin, testutil.JSONRequest(t, "PUT", "/"+foreign.ID.Hex(), map[string]string{"name": "Mine now"}))
	testutil.AssertRedirect(t, rec, "/groups")
}

func TestListPagesByName(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 12; i >= 1; i-- {
		e.fx.CreateGroup(ctx, e.ws.ID, fmt.Sprintf("Team %02d", i))
	}

	type page struct {
		Groups  []models.Group `json:"groups"`
		HasNext bool           `json:"has_next"`
		HasPrev bool           `json:"has_prev"`
		Next    string         `json:"next"`
	}

	rec := e.do(e.rep, httptest.NewRequest("GET", "/", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var first page
	testutil.DecodeJSON(t, rec, &first)
	require.Len(t, first.Groups, 10)
	assert.Equal(t, "Team 01", first.Groups[0].Name)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)
	require.NotEmpty(t, first.Next)

	rec = e.do(e.rep, httptest.NewRequest("GET", "/?after="+url.QueryEscape(first.Next), nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var second page
	testutil.DecodeJSON(t, rec, &second)
	require.Len(t, second.Groups, 2)
	assert.Equal(t, "Team 11", second.Groups[0].Name)
	assert.True(t, second.HasPrev)
	assert.False(t, second.HasNext)
}

func TestSetMembers(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := e.fx.CreateGroup(ctx, e.ws.ID, "East")
	other := e.fx.CreateWorkspace(ctx, "Rival Sales")
	outsider := e.fx.CreateMember(ctx, "rival@example.com", models.RoleGeneral, other.ID)
	path := "/" + g.ID.Hex() + "/members"

	rec := e.do(e.rep, testutil.JSONRequest(t, "PUT", path, map[string]any{"user_ids": []string{e.rep.ID.Hex()}}))
	testutil.AssertRedirect(t, rec, "/groups")

	rec = e.do(e.admin, testutil.JSONRequest(t, "PUT", path, map[string]any{"user_ids": []string{outsider.ID.Hex()}}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)

	rec = e.do(e.admin, testutil.JSONRequest(t, "PUT", path, map[string]any{
		"user_ids": []string{e.rep.ID.Hex(), e.admin.ID.Hex(), e.rep.ID.Hex()},
	}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var body struct {
		Added     int                  `json:"added"`
		MemberIDs []primitive.ObjectID `json:"member_ids"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, 2, body.Added)
	assert.ElementsMatch(t, []primitive.ObjectID{e.rep.ID, e.admin.ID}, body.MemberIDs)

	rec = e.do(e.admin, testutil.JSONRequest(t, "PUT", path, map[string]any{"user_ids": []string{e.admin.ID.Hex()}}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, []primitive.ObjectID{e.admin.ID}, body.MemberIDs)

	rec = e.do(e.rep, httptest.NewRequest("GET", "/"+g.ID.Hex(), nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
}

func TestServeGroup_Direct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	ws := fx.CreateWorkspace(ctx, "Acme Sales")
	rep := fx.CreateMember(ctx, "rep@example.com", models.RoleGeneral, ws.ID)
	g := fx.CreateGroup(ctx, ws.ID, "East")
	fx.AddToGroup(ctx, ws.ID, g.ID, rep.ID)

	h := groups.NewHandler(db, nil, zap.NewNop())
	tests := []struct {
		name string
		id   string
		want int
	}{
		{"member of workspace", g.ID.Hex(), http.StatusOK},
		{"malformed id", "not-an-id", http.StatusSeeOther},
		{"unknown id", primitive.NewObjectID().Hex(), http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(httptest.NewRequest("GET", "/groups/"+tt.id, nil), testutil.UserFrom(rep))
			req = testutil.WithChiURLParam(req, "id", tt.id)
			rec := httptest.NewRecorder()
			h.ServeGroup(rec, req)
			testutil.AssertStatus(t, rec, tt.want)
		})
	}
}
