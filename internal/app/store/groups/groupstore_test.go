package groupstore_test

import (
	"errors"
	"fmt"
	"testing"

	groupstore "github.com/dalemusser/sfahub/internal/app/store/groups"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/sfahub/internal/testutil"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Acme")

	created, err := store.Create(ctx, models.Group{Name: " East Team ", WorkspaceID: ws.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "East Team" || created.NameCI == "" {
		t.Errorf("name fields = %q/%q", created.Name, created.NameCI)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.Get(ctx, ws.ID, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "East Team" {
		t.Errorf("Get name = %q", got.Name)
	}
}

func TestStore_DuplicateNamePerWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws1 := fixtures.CreateWorkspace(ctx, "One")
	ws2 := fixtures.CreateWorkspace(ctx, "Two")

	if _, err := store.Create(ctx, models.Group{Name: "Sales", WorkspaceID: ws1.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Group{Name: "SALES", WorkspaceID: ws1.ID}); !errors.Is(err, groupstore.ErrDuplicateGroupName) {
		t.Errorf("same workspace: err = %v, want ErrDuplicateGroupName", err)
	}
	if _, err := store.Create(ctx, models.Group{Name: "Sales", WorkspaceID: ws2.ID}); err != nil {
		t.Errorf("other workspace: unexpected error %v", err)
	}
}

func TestStore_GetIsWorkspaceScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "One")
	other := fixtures.CreateWorkspace(ctx, "Two")
	g := fixtures.CreateGroup(ctx, ws.ID, "Sales")

	if _, err := store.Get(ctx, other.ID, g.ID); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := store.Rename(ctx, other.ID, g.ID, "Hijack", primitive.NewObjectID()); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("Rename err = %v, want ErrNotFound", err)
	}
	if err := store.Rename(ctx, ws.ID, g.ID, "Field Sales", primitive.NewObjectID()); err != nil {
		t.Errorf("Rename failed: %v", err)
	}
}

func TestStore_ListKeyset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Acme")
	for i := 0; i < 5; i++ {
		fixtures.CreateGroup(ctx, ws.ID, fmt.Sprintf("Group %d", i))
	}
	fixtures.CreateGroup(ctx, fixtures.CreateWorkspace(ctx, "Other").ID, "Foreign")

	first, res, err := store.List(ctx, ws.ID, paging.ConfigureKeyset("", "", 2))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(first) != 2 || first[0].Name != "Group 0" || !res.HasNext || res.HasPrev {
		t.Fatalf("first page = %v, %+v", first, res)
	}

	last := first[len(first)-1]
	after := wafflemongo.EncodeCursor(last.NameCI, last.ID)
	second, res, err := store.List(ctx, ws.ID, paging.ConfigureKeyset("", after, 2))
	if err != nil {
		t.Fatalf("List page 2 failed: %v", err)
	}
	if len(second) != 2 || second[0].Name != "Group 2" || !res.HasPrev || !res.HasNext {
		t.Fatalf("second page = %v, %+v", second, res)
	}

	all, err := store.ListAll(ctx, ws.ID)
	if err != nil || len(all) != 5 {
		t.Fatalf("ListAll = %d, %v", len(all), err)
	}

	n, err := store.CountIn(ctx, ws.ID, []primitive.ObjectID{all[0].ID, primitive.NewObjectID()})
	if err != nil || n != 1 {
		t.Errorf("CountIn = %d, %v; want 1", n, err)
	}
}
