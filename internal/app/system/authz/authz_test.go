package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestActorFrom(t *testing.T) {
	uid := primitive.NewObjectID()
	ws := primitive.NewObjectID()
	g1 := primitive.NewObjectID()

	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{
		ID:              uid.Hex(),
		Email:           "sales@example.com",
		Role:            "Admin",
		WorkspaceID:     ws.Hex(),
		WorkspaceActive: true,
		GroupIDs:        []string{g1.Hex(), "not-an-id"},
	})

	a, ok := authz.ActorFrom(req)
	if !ok {
		t.Fatal("expected ActorFrom to succeed")
	}
	if a.UserID != uid || a.WorkspaceID != ws {
		t.Errorf("ids = %v/%v, want %v/%v", a.UserID, a.WorkspaceID, uid, ws)
	}
	if a.Role != models.RoleAdmin {
		t.Errorf("Role = %q, want admin", a.Role)
	}
	if len(a.GroupIDs) != 1 || a.GroupIDs[0] != g1 {
		t.Errorf("GroupIDs = %v, want [%v]", a.GroupIDs, g1)
	}
	if !a.InWorkspace() {
		t.Error("expected InWorkspace")
	}
}

func TestActorFrom_NoUser(t *testing.T) {
	if _, ok := authz.ActorFrom(httptest.NewRequest("GET", "/", nil)); ok {
		t.Error("expected ok=false without a user")
	}
}

func TestActorFrom_MalformedID(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "bad", Role: "owner"})
	if _, ok := authz.ActorFrom(req); ok {
		t.Error("expected ok=false for malformed user id")
	}
}

func TestActorFrom_PendingWorkspace(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{
		ID:          primitive.NewObjectID().Hex(),
		Role:        "general",
		WorkspaceID: primitive.NewObjectID().Hex(),
	})
	a, ok := authz.ActorFrom(req)
	if !ok {
		t.Fatal("expected ok")
	}
	if a.InWorkspace() {
		t.Error("pending member must not count as in workspace")
	}
}

func TestHasRoleAtLeast(t *testing.T) {
	tests := []struct {
		role    string
		isAdmin bool
		isOwner bool
	}{
		{"owner", true, true},
		{"admin", true, false},
		{"general", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{
				ID:   primitive.NewObjectID().Hex(),
				Role: tt.role,
			})
			if got := authz.IsAdmin(req); got != tt.isAdmin {
				t.Errorf("IsAdmin = %v, want %v", got, tt.isAdmin)
			}
			if got := authz.IsOwner(req); got != tt.isOwner {
				t.Errorf("IsOwner = %v, want %v", got, tt.isOwner)
			}
		})
	}
}
