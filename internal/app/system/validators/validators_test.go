package validators_test

import (
	"testing"

	"github.com/dalemusser/sfahub/internal/app/system/validators"
	"github.com/dalemusser/sfahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"workspaces", "users", "groups", "group_memberships", "customers",
		"contacts", "addresses", "goal_settings", "workspace_settings"} {
		if !have[want] {
			t.Errorf("collection %q not created", want)
		}
	}
}

func TestUsersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	users := db.Collection("users")

	valid := bson.M{"email": "a@example.com", "role": "general", "is_active": true, "is_workspace_active": false}
	if _, err := users.InsertOne(ctx, valid); err != nil {
		t.Errorf("insert valid user: %v", err)
	}

	for _, role := range []string{"general", "admin", "owner"} {
		doc := bson.M{"email": role + "@example.com", "role": role, "is_active": true, "is_workspace_active": true}
		if _, err := users.InsertOne(ctx, doc); err != nil {
			t.Errorf("insert role %q: %v", role, err)
		}
	}

	bad := bson.M{"email": "b@example.com", "role": "superadmin", "is_active": true, "is_workspace_active": false}
	if _, err := users.InsertOne(ctx, bad); err == nil {
		t.Error("expected validation error for unknown role")
	}
	if _, err := users.InsertOne(ctx, bson.M{"first_name": "x"}); err == nil {
		t.Error("expected validation error for missing required fields")
	}
}

func TestCustomersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	customers := db.Collection("customers")

	doc := bson.M{
		"workspace_id":  primitive.NewObjectID(),
		"customer_name": "Acme",
		"public_status": "0",
		"action_status": "1",
		"delete_flg":    false,
		"author":        "a@example.com",
	}
	if _, err := customers.InsertOne(ctx, doc); err != nil {
		t.Errorf("insert valid customer: %v", err)
	}

	doc["action_status"] = "7"
	delete(doc, "_id")
	if _, err := customers.InsertOne(ctx, doc); err == nil {
		t.Error("expected validation error for unknown action_status")
	}
}

func TestContactsValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	if _, err := db.Collection("contacts").InsertOne(ctx, bson.M{"remarks": "x"}); err == nil {
		t.Error("expected validation error when inserting contact without required fields")
	}
}
