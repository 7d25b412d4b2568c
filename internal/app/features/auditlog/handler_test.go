package auditlog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/sfahub/internal/app/features/auditlog"
	"github.com/dalemusser/sfahub/internal/app/store/audit"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/sfahub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	router chi.Router
	store  *audit.Store
	ws     models.Workspace
	admin  models.User
	rep    models.User
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-0123", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ws := fx.CreateWorkspace(ctx, "Acme Sales")
	return env{
		router: auditlog.Routes(auditlog.NewHandler(db, time.UTC, logger), sm),
		store:  audit.New(db),
		ws:     ws,
		admin:  fx.CreateMember(ctx, "admin@example.com", models.RoleAdmin, ws.ID),
		rep:    fx.CreateMember(ctx, "rep@example.com", models.RoleGeneral, ws.ID),
	}
}

func (e env) get(u models.User, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := testutil.WithUser(httptest.NewRequest("GET", target, nil), testutil.UserFrom(u))
	e.router.ServeHTTP(rec, req)
	return rec
}

type listBody struct {
	Events []struct {
		EventType  string `json:"event_type"`
		ActorName  string `json:"actor_name"`
		TargetName string `json:"target_name"`
	} `json:"events"`
	Page struct {
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"page"`
}

func TestServeList(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	other := primitive.NewObjectID()
	_ = e.store.Log(ctx, audit.Event{WorkspaceID: &e.ws.ID, Category: audit.CategoryMembership,
		EventType: audit.EventRoleChanged, ActorID: &e.admin.ID, TargetID: &e.rep.ID, Success: true})
	_ = e.store.Log(ctx, audit.Event{WorkspaceID: &e.ws.ID, Category: audit.CategoryAuth,
		EventType: audit.EventLoginSuccess, ActorID: &e.rep.ID, Success: true})
	_ = e.store.Log(ctx, audit.Event{WorkspaceID: &other, Category: audit.CategoryAuth,
		EventType: audit.EventLoginSuccess, Success: true})

	rec := e.get(e.admin, "/")
	testutil.AssertStatus(t, rec, http.StatusOK)
	var body listBody
	testutil.DecodeJSON(t, rec, &body)
	if body.Page.Total != 2 || len(body.Events) != 2 {
		t.Fatalf("got %d events (total %d), want 2", len(body.Events), body.Page.Total)
	}

	rec = e.get(e.admin, "/?category=membership")
	body = listBody{}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Events) != 1 {
		t.Fatalf("membership events = %d, want 1", len(body.Events))
	}
	ev := body.Events[0]
	if ev.EventType != audit.EventRoleChanged || ev.ActorName != e.admin.FullName() || ev.TargetName != e.rep.FullName() {
		t.Errorf("event = %+v", ev)
	}
}

func TestServeList_Filters(t *testing.T) {
	e := setup(t)

	tests := []struct {
		query string
		want  int
	}{
		{"/?category=billing", http.StatusUnprocessableEntity},
		{"/?category=auth&event_type=member_accepted", http.StatusUnprocessableEntity},
		{"/?event_type=member_accepted", http.StatusOK},
		{"/?target=nope", http.StatusUnprocessableEntity},
		{"/?from=2026-02-01&to=2026-01-01", http.StatusUnprocessableEntity},
		{"/?from=2026-01-01", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			testutil.AssertStatus(t, e.get(e.admin, tt.query), tt.want)
		})
	}
}

func TestServeList_GeneralMemberRedirected(t *testing.T) {
	e := setup(t)
	testutil.AssertRedirect(t, e.get(e.rep, "/"), "/")
}
