package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/sfahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email:     "  Sales@Example.COM ",
		FirstName: " Taro ",
		LastName:  "Yamada",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "sales@example.com" {
		t.Errorf("Email = %q, want normalized", created.Email)
	}
	if created.FirstName != "Taro" {
		t.Errorf("FirstName = %q, want trimmed", created.FirstName)
	}
	if created.Role != models.RoleGeneral {
		t.Errorf("Role = %q, want general default", created.Role)
	}
	if created.CreatedAt.IsZero() || created.DateJoined.IsZero() {
		t.Error("expected timestamps to be set")
	}

	if _, err := store.Create(ctx, models.User{Email: "sales@example.com"}); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("duplicate: err = %v, want ErrDuplicateEmail", err)
	}
	if _, err := store.Create(ctx, models.User{Email: "x@example.com", Role: "superuser"}); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "lookup@example.com", models.RoleGeneral, nil, false)

	got, err := store.GetByEmail(ctx, "LOOKUP@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("got %v, want %v", got.ID, u.ID)
	}
	if _, err := store.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_Authenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "login@example.com", models.RoleGeneral, nil, false)

	id, err := store.Authenticate(ctx, "login@example.com", testutil.TestPassword)
	if err != nil || id != u.ID.Hex() {
		t.Fatalf("Authenticate = %q, %v", id, err)
	}
	if _, err := store.Authenticate(ctx, "login@example.com", "wrong"); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := store.Authenticate(ctx, "nobody@example.com", "x"); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("unknown email: err = %v", err)
	}

	if _, err := db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"is_active": false}}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := store.Authenticate(ctx, "login@example.com", testutil.TestPassword); !errors.Is(err, userstore.ErrInactive) {
		t.Errorf("inactive: err = %v", err)
	}
}

func TestStore_JoinLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Acme")
	u := fixtures.CreateUser(ctx, "joiner@example.com", models.RoleAdmin, nil, false)

	if err := store.Accept(ctx, ws.ID, u.ID); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Errorf("accept before request: err = %v", err)
	}

	if err := store.RequestJoin(ctx, u.ID, ws.ID); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if got.WorkspaceID == nil || *got.WorkspaceID != ws.ID || got.IsWorkspaceActive || got.Role != models.RoleGeneral {
		t.Fatalf("after request: %+v", got)
	}
	if err := store.RequestJoin(ctx, u.ID, ws.ID); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Errorf("second request: err = %v", err)
	}

	if err := store.Reject(ctx, ws.ID, u.ID); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	got, _ = store.GetByID(ctx, u.ID)
	if got.WorkspaceID != nil {
		t.Fatalf("after reject workspace = %v, want nil", got.WorkspaceID)
	}

	if err := store.RequestJoin(ctx, u.ID, ws.ID); err != nil {
		t.Fatalf("RequestJoin again failed: %v", err)
	}
	if err := store.Accept(ctx, ws.ID, u.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	got, _ = store.GetByID(ctx, u.ID)
	if !got.IsWorkspaceActive {
		t.Fatal("expected active membership after accept")
	}
	if err := store.Reject(ctx, ws.ID, u.ID); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Errorf("reject active: err = %v", err)
	}
}

func TestStore_Release(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Acme")
	g := fixtures.CreateGroup(ctx, ws.ID, "Sales")
	u := fixtures.CreateMember(ctx, "admin@example.com", models.RoleAdmin, ws.ID)
	fixtures.AddToGroup(ctx, ws.ID, g.ID, u.ID)

	if err := store.Release(ctx, ws.ID, u.ID, zap.NewNop()); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if got.WorkspaceID != nil || got.IsWorkspaceActive || got.Role != models.RoleGeneral {
		t.Errorf("after release: %+v", got)
	}
	n, _ := db.Collection("group_memberships").CountDocuments(ctx, bson.M{"user_id": u.ID})
	if n != 0 {
		t.Errorf("memberships left = %d, want 0", n)
	}

	if err := store.Release(ctx, ws.ID, u.ID, zap.NewNop()); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Errorf("second release: err = %v", err)
	}
}

func TestStore_JoinAsOwnerAndRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Acme")
	u := fixtures.CreateUser(ctx, "founder@example.com", models.RoleGeneral, nil, false)

	if err := store.JoinAsOwner(ctx, u.ID, ws.ID); err != nil {
		t.Fatalf("JoinAsOwner failed: %v", err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if got.Role != models.RoleOwner || !got.IsWorkspaceActive {
		t.Errorf("after JoinAsOwner: %+v", got)
	}

	other := fixtures.CreateMember(ctx, "other@example.com", models.RoleGeneral, ws.ID)
	if err := store.SetRole(ctx, ws.ID, other.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	admins, err := store.ActiveMembers(ctx, ws.ID, models.RoleAdmin)
	if err != nil || len(admins) != 2 {
		t.Errorf("ActiveMembers = %d, %v; want 2", len(admins), err)
	}
	if err := store.SetRole(ctx, primitive.NewObjectID(), other.ID, models.RoleAdmin); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("foreign workspace: err = %v", err)
	}
}

func TestStore_ActivateAndInvite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Email: "new@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Activate(ctx, u.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if err := store.Activate(ctx, u.ID); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Errorf("second Activate: err = %v", err)
	}

	inv, _ := store.Create(ctx, models.User{Email: "invitee@example.com"})
	hash, err := userstore.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := store.CompleteInvite(ctx, inv.ID, "Hanako", "Sato", hash); err != nil {
		t.Fatalf("CompleteInvite failed: %v", err)
	}
	if _, err := store.Authenticate(ctx, "invitee@example.com", "s3cret-pass"); err != nil {
		t.Errorf("Authenticate after invite: %v", err)
	}
}

func TestStore_ListWorkspacePendingFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Acme")
	fixtures.CreateMember(ctx, "a@example.com", models.RoleOwner, ws.ID)
	pending := fixtures.CreateUser(ctx, "p@example.com", models.RoleGeneral, &ws.ID, false)
	fixtures.CreateMember(ctx, "b@example.com", models.RoleGeneral, ws.ID)

	users, err := store.ListWorkspace(ctx, ws.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListWorkspace failed: %v", err)
	}
	if len(users) != 3 || users[0].ID != pending.ID {
		t.Errorf("first user = %v, want pending %v", users[0].ID, pending.ID)
	}
	if n, _ := store.CountWorkspace(ctx, ws.ID); n != 3 {
		t.Errorf("CountWorkspace = %d", n)
	}
}

func TestFetcher_FetchSessionUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fetcher := userstore.NewFetcher(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Acme")
	g := fixtures.CreateGroup(ctx, ws.ID, "Sales")
	u := fixtures.CreateMember(ctx, "me@example.com", models.RoleAdmin, ws.ID)
	fixtures.AddToGroup(ctx, ws.ID, g.ID, u.ID)

	su, err := fetcher.FetchSessionUser(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("FetchSessionUser failed: %v", err)
	}
	if su.Email != "me@example.com" || su.Role != "admin" || su.WorkspaceID != ws.ID.Hex() || !su.WorkspaceActive {
		t.Errorf("session user = %+v", su)
	}
	if len(su.GroupIDs) != 1 || su.GroupIDs[0] != g.ID.Hex() {
		t.Errorf("GroupIDs = %v", su.GroupIDs)
	}

	if _, err := fetcher.FetchSessionUser(ctx, primitive.NewObjectID().Hex()); !errors.Is(err, auth.ErrUserGone) {
		t.Errorf("missing user: err = %v, want ErrUserGone", err)
	}
	if _, err := fetcher.FetchSessionUser(ctx, "garbage"); !errors.Is(err, auth.ErrUserGone) {
		t.Errorf("bad id: err = %v, want ErrUserGone", err)
	}
}

func TestStore_ChangePasswordAndName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "me@example.com", models.RoleGeneral, nil, false)

	if err := store.ChangePassword(ctx, u.ID, "wrong", "new-password-1"); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Fatalf("wrong current: err = %v", err)
	}
	if err := store.ChangePassword(ctx, u.ID, testutil.TestPassword, "new-password-1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := store.Authenticate(ctx, "me@example.com", "new-password-1"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if _, err := store.Authenticate(ctx, "me@example.com", testutil.TestPassword); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("old password still accepted: %v", err)
	}

	got, err := store.UpdateName(ctx, u.ID, "Hanako", "Suzuki")
	if err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if got.FullName() != "Suzuki Hanako" {
		t.Errorf("FullName = %q", got.FullName())
	}
	if _, err := store.UpdateName(ctx, primitive.NewObjectID(), "a", "b"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("missing user: err = %v", err)
	}
}
