package home_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sfahub/internal/app/features/home"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/sfahub/internal/testutil"
	"go.uber.org/zap"
)

type landing struct {
	SignedIn  bool   `json:"signed_in"`
	State     string `json:"state"`
	Workspace *struct {
		Name string `json:"name"`
	} `json:"workspace"`
	Next []string `json:"next"`
}

func serve(t *testing.T, h *home.Handler, req *http.Request) landing {
	t.Helper()
	rec := httptest.NewRecorder()
	home.Routes(h).ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var out landing
	testutil.DecodeJSON(t, rec, &out)
	return out
}

func TestServeRoot_Anonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := home.NewHandler(db, zap.NewNop())

	got := serve(t, h, httptest.NewRequest("GET", "/", nil))
	if got.SignedIn || got.State != "" {
		t.Errorf("anonymous landing = %+v", got)
	}
	if len(got.Next) != 2 || got.Next[0] != "/login" {
		t.Errorf("next = %v", got.Next)
	}
}

func TestServeRoot_States(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	h := home.NewHandler(db, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ws := fx.CreateWorkspace(ctx, "Acme Sales")

	loner := fx.CreateUser(ctx, "loner@example.com", models.RoleGeneral, nil, true)
	pending := fx.CreateUser(ctx, "pending@example.com", models.RoleGeneral, &ws.ID, false)
	member := fx.CreateMember(ctx, "member@example.com", models.RoleGeneral, ws.ID)

	tests := []struct {
		name      string
		user      models.User
		state     string
		workspace string
	}{
		{"unaffiliated", loner, "unaffiliated", ""},
		{"pending", pending, "pending_join", "Acme Sales"},
		{"active", member, "active", "Acme Sales"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.UserFrom(tt.user))
			got := serve(t, h, req)
			if !got.SignedIn || got.State != tt.state {
				t.Errorf("landing = %+v, want state %q", got, tt.state)
			}
			name := ""
			if got.Workspace != nil {
				name = got.Workspace.Name
			}
			if name != tt.workspace {
				t.Errorf("workspace = %q, want %q", name, tt.workspace)
			}
		})
	}
}
