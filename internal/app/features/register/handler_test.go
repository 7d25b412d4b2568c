package register_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/dalemusser/sfahub/internal/app/features/register"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/mailer"
	"github.com/dalemusser/sfahub/internal/app/system/token"
	"github.com/dalemusser/sfahub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type outbox struct {
	sent []mailer.Email
	err  error
}

func (o *outbox) Send(_ context.Context, e mailer.Email) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, e)
	return nil
}

var linkRE = regexp.MustCompile(`/register/activate/(\S+)`)

func newTestHandler(t *testing.T, enabled bool) (*register.Handler, *outbox, chi.Router) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	signer, err := token.NewSigner("test-token-secret")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	box := &outbox{}
	h := register.NewHandler(db, signer, box, nil, register.Options{
		Enabled:     enabled,
		BaseURL:     "https://sfa.example.com/",
		TokenMaxAge: 24 * time.Hour,
	}, zap.NewNop())
	return h, box, register.Routes(h)
}

func signup(t *testing.T, router http.Handler, email string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.JSONRequest(t, "POST", "/", map[string]string{
		"email":      email,
		"password":   "long-enough-pw",
		"first_name": "Taro",
		"last_name":  "Yamada",
	}))
	return rec
}

func TestRegister_CreatesInactiveUserAndMailsLink(t *testing.T) {
	h, box, router := newTestHandler(t, true)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := signup(t, router, "Taro@Example.com")
	testutil.AssertStatus(t, rec, http.StatusCreated)

	u, err := h.Users.GetByEmail(ctx, "taro@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.IsActive {
		t.Error("new account must start inactive")
	}
	if len(box.sent) != 1 || box.sent[0].To[0] != "taro@example.com" {
		t.Fatalf("expected one activation mail to taro@example.com, got %+v", box.sent)
	}
	if !linkRE.MatchString(box.sent[0].TextBody) {
		t.Errorf("mail body has no activation link: %q", box.sent[0].TextBody)
	}

	if _, err := h.Users.Authenticate(ctx, "taro@example.com", "long-enough-pw"); !errors.Is(err, userstore.ErrInactive) {
		t.Errorf("Authenticate before activation = %v, want ErrInactive", err)
	}
}

func TestRegister_ActivateThenSecondUseFails(t *testing.T) {
	h, box, router := newTestHandler(t, true)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.AssertStatus(t, signup(t, router, "hana@example.com"), http.StatusCreated)
	tok := linkRE.FindStringSubmatch(box.sent[0].TextBody)[1]

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/activate/"+tok, nil))
	testutil.AssertStatus(t, rec, http.StatusOK)

	if _, err := h.Users.Authenticate(ctx, "hana@example.com", "long-enough-pw"); err != nil {
		t.Errorf("Authenticate after activation: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/activate/"+tok, nil))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestRegister_BadTokenIs400(t *testing.T) {
	_, _, router := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/activate/not-a-token", nil))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, _, router := newTestHandler(t, true)

	testutil.AssertStatus(t, signup(t, router, "dup@example.com"), http.StatusCreated)
	rec := signup(t, router, "DUP@example.com")
	testutil.AssertStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestRegister_Disabled(t *testing.T) {
	_, box, router := newTestHandler(t, false)

	testutil.AssertStatus(t, signup(t, router, "x@example.com"), http.StatusNotFound)
	if len(box.sent) != 0 {
		t.Error("no mail expected when sign-up is disabled")
	}
}

func TestRegister_MailFailure(t *testing.T) {
	_, box, router := newTestHandler(t, true)
	box.err = errors.New("smtp down")

	testutil.AssertStatus(t, signup(t, router, "x@example.com"), http.StatusBadGateway)
}

func TestExpiresIn(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{24 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
		{2 * time.Hour, "2 hours"},
		{30 * time.Minute, "30 minutes"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := register.ExpiresIn(tt.d); got != tt.want {
			t.Errorf("ExpiresIn(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
