package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/sfahub/internal/app/store/audit"
	"github.com/dalemusser/sfahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	target := primitive.NewObjectID()
	for _, typ := range []string{audit.EventJoinRequested, audit.EventMemberAccepted} {
		if err := store.Log(ctx, audit.Event{
			Category:    audit.CategoryMembership,
			EventType:   typ,
			WorkspaceID: &ws,
			TargetID:    &target,
			Success:     true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	other := primitive.NewObjectID()
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryMembership, EventType: audit.EventMemberAccepted, WorkspaceID: &other}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{WorkspaceID: &ws})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID.IsZero() || events[0].Timestamp.IsZero() {
		t.Error("expected ID and Timestamp to be filled in")
	}

	accepted, err := store.Query(ctx, audit.QueryFilter{TargetID: &target, EventType: audit.EventMemberAccepted})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(accepted) != 1 {
		t.Errorf("expected 1 accepted event, got %d", len(accepted))
	}
}

func TestStore_QuerySinceAndLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old := time.Now().Add(-48 * time.Hour).UTC()
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: old})
	for i := 0; i < 3; i++ {
		_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess})
	}

	since := time.Now().Add(-time.Hour)
	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth, Since: &since, Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(events))
	}
	for _, e := range events {
		if e.EventType != audit.EventLoginSuccess {
			t.Errorf("unexpected event %q before cutoff", e.EventType)
		}
	}
}

func TestStore_CountAndOffset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	base := time.Now().Add(-10 * time.Minute).UTC()
	for i := 0; i < 5; i++ {
		_ = store.Log(ctx, audit.Event{
			WorkspaceID: &ws,
			Category:    audit.CategoryMembership,
			EventType:   audit.EventGroupCreated,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryMembership, EventType: audit.EventGroupCreated})

	f := audit.QueryFilter{WorkspaceID: &ws}
	n, err := store.Count(ctx, f)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 5 {
		t.Errorf("count = %d, want 5", n)
	}

	until := base.Add(2 * time.Minute)
	f.Until = &until
	if n, _ := store.Count(ctx, f); n != 2 {
		t.Errorf("count before %s = %d, want 2", until, n)
	}

	page, err := store.Query(ctx, audit.QueryFilter{WorkspaceID: &ws, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page) != 2 || !page[0].Timestamp.Equal(base.Add(2*time.Minute).Truncate(time.Millisecond)) {
		t.Errorf("second page = %+v", page)
	}
}
