package customers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/sfahub/internal/app/features/customers"
	settingsstore "github.com/dalemusser/sfahub/internal/app/store/settings"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/dalemusser/sfahub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeGeocoder struct {
	calls int
}

func (g *fakeGeocoder) Geocode(_ context.Context, _, _ string) (float64, float64, error) {
	g.calls++
	return 35.68, 139.76, nil
}

type env struct {
	db     *mongo.Database
	fx     *testutil.Fixtures
	router chi.Router
	geo    *fakeGeocoder
	ws     models.Workspace
	me     models.User
	other  models.User
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-0123", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	geo := &fakeGeocoder{}
	h := customers.NewHandler(db, geo, logger)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	ws := fx.CreateWorkspace(ctx, "Acme Sales")
	return &env{
		db:     db,
		fx:     fx,
		router: customers.Routes(h, sm),
		geo:    geo,
		ws:     ws,
		me:     fx.CreateMember(ctx, "me@example.com", models.RoleGeneral, ws.ID),
		other:  fx.CreateMember(ctx, "other@example.com", models.RoleGeneral, ws.ID),
	}
}

func (e *env) do(t *testing.T, u models.User, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, testutil.WithUser(req, testutil.UserFrom(u)))
	return rec
}

type listBody struct {
	Customers []models.Customer `json:"customers"`
	Page      struct {
		Number int   `json:"page"`
		Total  int64 `json:"total"`
	} `json:"page"`
	Query string `json:"query"`
}

func (e *env) list(t *testing.T, u models.User, rawQuery string) listBody {
	t.Helper()
	rec := e.do(t, u, httptest.NewRequest("GET", "/?"+rawQuery, nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var body listBody
	testutil.DecodeJSON(t, rec, &body)
	return body
}

func TestServeList_DefaultsToMineAndHidesFinished(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateCustomer(ctx, e.me, models.Customer{CustomerName: "Open"})
	e.fx.CreateCustomer(ctx, e.me, models.Customer{CustomerName: "Done", ActionStatus: models.ActionFinished})
	e.fx.CreateCustomer(ctx, e.other, models.Customer{CustomerName: "Theirs", PublicStatus: models.PublicViewShared})

	body := e.list(t, e.me, "")
	if len(body.Customers) != 1 || body.Customers[0].CustomerName != "Open" {
		t.Fatalf("default list = %+v, want only Open", body.Customers)
	}

	body = e.list(t, e.me, "action_status_ex=")
	if len(body.Customers) != 2 {
		t.Errorf("blank action_status_ex should include finished records, got %d", len(body.Customers))
	}

	body = e.list(t, e.me, "breadth=all")
	if len(body.Customers) != 2 {
		t.Errorf("breadth=all should include the shared record, got %d", len(body.Customers))
	}
}

func TestServeList_PreviousQueryCarryover(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateCustomer(ctx, e.me, models.Customer{CustomerName: "Tokyo Widgets"})
	e.fx.CreateCustomer(ctx, e.me, models.Customer{CustomerName: "Osaka Gadgets"})

	body := e.list(t, e.me, "customer_name=Tokyo")
	if len(body.Customers) != 1 {
		t.Fatalf("search returned %d records", len(body.Customers))
	}
	if body.Query != "customer_name=Tokyo" {
		t.Errorf("query = %q", body.Query)
	}

	body = e.list(t, e.me, "prev="+url.QueryEscape(body.Query))
	if len(body.Customers) != 1 || body.Customers[0].CustomerName != "Tokyo Widgets" {
		t.Errorf("carryover returned %+v", body.Customers)
	}
}

func TestServeList_PageBeyondLastResets(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateCustomer(ctx, e.me, models.Customer{})

	body := e.list(t, e.me, "page=9")
	if body.Page.Number != 1 || len(body.Customers) != 1 {
		t.Errorf("page = %d with %d rows, want page 1 with 1 row", body.Page.Number, len(body.Customers))
	}
}

func TestHandleCreate_AppliesDefaultsAndGeocodes(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := settingsstore.New(e.db).SaveEnvironment(ctx, e.ws.ID, models.EnvironmentSetting{GeocodeAPIKey: "k"}, e.me.ID); err != nil {
		t.Fatalf("SaveEnvironment: %v", err)
	}
	e.fx.CreateCustomer(ctx, e.me, models.Customer{TelNumber1: "0312345678"})

	rec := e.do(t, e.me, testutil.JSONRequest(t, "POST", "/", map[string]any{
		"customer_name": "New Co",
		"tel_number1":   "03-1234-5678",
		"address1":      "Chiyoda",
		"remarks":       "<b>call</b> back",
	}))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var got models.Customer
	testutil.DecodeJSON(t, rec, &got)
	if got.Potential != models.DefaultPotential {
		t.Errorf("potential = %d", got.Potential)
	}
	if got.SalesPerson == nil || *got.SalesPerson != e.me.ID {
		t.Errorf("sales_person = %v, want creator", got.SalesPerson)
	}
	if got.Author != "me@example.com" || got.Modifier != "me@example.com" {
		t.Errorf("author/modifier = %q/%q", got.Author, got.Modifier)
	}
	if got.TelNumber1 != "0312345678" {
		t.Errorf("tel_number1 = %q", got.TelNumber1)
	}
	if got.DuplicateCounts[0] != 1 {
		t.Errorf("duplicate count = %d, want 1", got.DuplicateCounts[0])
	}
	if got.Remarks != "call back" {
		t.Errorf("remarks = %q", got.Remarks)
	}
	if !got.HasCoordinates() || e.geo.calls != 1 {
		t.Errorf("expected geocoded coordinates, calls=%d", e.geo.calls)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	e := setup(t)

	rec := e.do(t, e.me, testutil.JSONRequest(t, "POST", "/", map[string]any{
		"url1":              "ftp://example.com",
		"shared_view_users": []string{primitive.NewObjectID().Hex()},
	}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Errors["customer_name"]) == 0 || len(body.Errors["url1"]) == 0 {
		t.Errorf("errors = %v", body.Errors)
	}
}

func TestHandleCreate_RejectsForeignShareTargets(t *testing.T) {
	e := setup(t)
	rec := e.do(t, e.me, testutil.JSONRequest(t, "POST", "/", map[string]any{
		"customer_name":      "Shared",
		"shared_view_users":  []string{primitive.NewObjectID().Hex()},
		"shared_edit_groups": []string{primitive.NewObjectID().Hex()},
	}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Errors["shared_view_users"]) == 0 || len(body.Errors["shared_edit_groups"]) == 0 {
		t.Errorf("errors = %v", body.Errors)
	}
}

func TestServeCustomer_HiddenRecordRedirects(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	theirs := e.fx.CreateCustomer(ctx, e.other, models.Customer{})

	rec := e.do(t, e.me, httptest.NewRequest("GET", "/"+theirs.ID.Hex(), nil))
	testutil.AssertRedirect(t, rec, "/customers")

	rec = e.do(t, e.me, httptest.NewRequest("GET", "/not-an-id", nil))
	testutil.AssertRedirect(t, rec, "/customers")

	rec = e.do(t, e.other, httptest.NewRequest("GET", "/"+theirs.ID.Hex(), nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
}

func TestHandleUpdate(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mine := e.fx.CreateCustomer(ctx, e.me, models.Customer{CustomerName: "Before", Potential: 5000, ActionStatus: models.ActionPlanned})
	viewOnly := e.fx.CreateCustomer(ctx, e.other, models.Customer{PublicStatus: models.PublicViewShared})

	rec := e.do(t, e.me, testutil.JSONRequest(t, "PUT", "/"+mine.ID.Hex(), map[string]any{"customer_name": "After"}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got models.Customer
	testutil.DecodeJSON(t, rec, &got)
	if got.CustomerName != "After" || got.Potential != 5000 || got.ActionStatus != models.ActionPlanned {
		t.Errorf("updated = %+v", got)
	}
	if got.SalesPerson == nil || *got.SalesPerson != e.me.ID {
		t.Errorf("sales_person lost on update: %v", got.SalesPerson)
	}

	rec = e.do(t, e.me, testutil.JSONRequest(t, "PUT", "/"+viewOnly.ID.Hex(), map[string]any{"customer_name": "Hijack"}))
	testutil.AssertRedirect(t, rec, "/customers")
}

func TestHandleDelete(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mine := e.fx.CreateCustomer(ctx, e.me, models.Customer{})

	rec := e.do(t, e.other, httptest.NewRequest("DELETE", "/"+mine.ID.Hex(), nil))
	testutil.AssertRedirect(t, rec, "/customers")

	rec = e.do(t, e.me, httptest.NewRequest("DELETE", "/"+mine.ID.Hex(), nil))
	testutil.AssertStatus(t, rec, http.StatusNoContent)

	rec = e.do(t, e.me, httptest.NewRequest("GET", "/"+mine.ID.Hex(), nil))
	testutil.AssertRedirect(t, rec, "/customers")
}

func TestHandleBulk(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mine := e.fx.CreateCustomer(ctx, e.me, models.Customer{})
	theirs := e.fx.CreateCustomer(ctx, e.other, models.Customer{PublicStatus: models.PublicViewShared})

	rec := e.do(t, e.me, testutil.JSONRequest(t, "POST", "/bulk", map[string]any{
		"ids":    []string{mine.ID.Hex(), theirs.ID.Hex(), primitive.NewObjectID().Hex()},
		"action": "2",
	}))
	testutil.AssertRedirect(t, rec, "/customers")
	if got := rec.Header().Get("X-Bulk-Updated"); got != "1" {
		t.Errorf("X-Bulk-Updated = %q", got)
	}
	if got := rec.Header().Get("X-Bulk-Skipped"); got != "2" {
		t.Errorf("X-Bulk-Skipped = %q", got)
	}

	var stored models.Customer
	if err := e.db.Collection("customers").FindOne(ctx, bson.M{"_id": mine.ID}).Decode(&stored); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ActionStatus != models.ActionInProgress || stored.Modifier != "me@example.com" {
		t.Errorf("stored = %+v", stored)
	}

	rec = e.do(t, e.me, testutil.JSONRequest(t, "POST", "/bulk", map[string]any{"ids": []string{mine.ID.Hex()}, "action": 7}))
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestServeDuplicates(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateCustomer(ctx, e.me, models.Customer{TelNumber2: "0612345678"})
	e.fx.CreateCustomer(ctx, e.other, models.Customer{TelNumber1: "0612345678"})

	rec := e.do(t, e.me, httptest.NewRequest("GET", "/duplicates?tel=06-1234-5678", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var body struct {
		Tel   string `json:"tel"`
		Count int64  `json:"count"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Tel != "0612345678" || body.Count != 1 {
		t.Errorf("duplicates = %+v, want one visible match", body)
	}
}

func TestServeMap(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	lat, lng := 35.0, 135.0
	e.fx.CreateCustomer(ctx, e.me, models.Customer{Latitude: &lat, Longitude: &lng})
	e.fx.CreateCustomer(ctx, e.me, models.Customer{})

	rec := e.do(t, e.me, httptest.NewRequest("GET", "/map", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var body struct {
		Points []map[string]any `json:"points"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Points) != 1 {
		t.Errorf("points = %v", body.Points)
	}
}

func TestRoutes_RequireWorkspaceMember(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	loner := e.fx.CreateUser(ctx, "loner@example.com", models.RoleGeneral, nil, false)

	rec := e.do(t, loner, httptest.NewRequest("GET", "/", nil))
	testutil.AssertRedirect(t, rec, "/")
}
