package settingsstore_test

import (
	"testing"

	settingsstore "github.com/dalemusser/sfahub/internal/app/store/settings"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/sfahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Get_NoSettings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := settingsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()

	settings, err := store.Get(ctx, wsID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if settings.WorkspaceID != wsID {
		t.Errorf("WorkspaceID: got %v, want %v", settings.WorkspaceID, wsID)
	}
	if settings.Display != models.DefaultDisplay() {
		t.Errorf("Display: got %+v, want defaults", settings.Display)
	}
	if key, _ := store.GeocodeKey(ctx, wsID); key != "" {
		t.Errorf("GeocodeKey = %q, want empty", key)
	}
}

func TestStore_SaveEnvironmentThenDisplay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := settingsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()
	by := primitive.NewObjectID()

	env := models.EnvironmentSetting{GeocodeAPIKey: "geo-key", IPPhoneCallURL: "https://phone.example.com/call"}
	if err := store.SaveEnvironment(ctx, wsID, env, by); err != nil {
		t.Fatalf("SaveEnvironment failed: %v", err)
	}

	got, err := store.Get(ctx, wsID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Environment != env {
		t.Errorf("Environment = %+v, want %+v", got.Environment, env)
	}
	if got.Display != models.DefaultDisplay() {
		t.Errorf("Display after env save = %+v, want defaults", got.Display)
	}

	disp := models.DisplaySetting{OptionalCode1Name: "Branch", OptionalCode1Active: true}
	if err := store.SaveDisplay(ctx, wsID, disp, by); err != nil {
		t.Fatalf("SaveDisplay failed: %v", err)
	}
	got, _ = store.Get(ctx, wsID)
	if got.Display != disp || got.Environment != env {
		t.Errorf("after display save: %+v", got)
	}
	if got.UpdatedByID == nil || *got.UpdatedByID != by {
		t.Errorf("UpdatedByID = %v, want %v", got.UpdatedByID, by)
	}

	key, err := store.GeocodeKey(ctx, wsID)
	if err != nil || key != "geo-key" {
		t.Errorf("GeocodeKey = %q, %v", key, err)
	}

	n, _ := db.Collection("workspace_settings").CountDocuments(ctx, bson.M{"workspace_id": wsID})
	if n != 1 {
		t.Errorf("documents = %d, want 1", n)
	}
}

func TestStore_Goals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := settingsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()

	g, err := store.GetGoal(ctx, uid)
	if err != nil || g.OutboundCount != 0 || g.UserID != uid {
		t.Fatalf("GetGoal empty = %+v, %v", g, err)
	}

	if _, err := store.SaveGoal(ctx, uid, 40, 10); err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}
	g, err = store.SaveGoal(ctx, uid, 50, 12)
	if err != nil {
		t.Fatalf("SaveGoal update failed: %v", err)
	}
	if g.OutboundCount != 50 || g.VisitCount != 12 {
		t.Errorf("goal = %+v", g)
	}

	n, _ := db.Collection("goal_settings").CountDocuments(ctx, bson.M{"user_id": uid})
	if n != 1 {
		t.Errorf("goal documents = %d, want 1", n)
	}
}
