// internal/testutil/http.go
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser is the identity a handler test runs as.
type TestUser struct {
	ID              string
	Name            string
	Email           string
	Role            string
	WorkspaceID     string
	WorkspaceActive bool
	GroupIDs        []string
}

// UserFrom converts a stored user into a TestUser.
func UserFrom(u models.User, groupIDs ...primitive.ObjectID) TestUser {
	tu := TestUser{
		ID:              u.ID.Hex(),
		Name:            u.FullName(),
		Email:           u.Email,
		Role:            string(u.Role),
		WorkspaceActive: u.IsWorkspaceActive,
	}
	if u.WorkspaceID != nil {
		tu.WorkspaceID = u.WorkspaceID.Hex()
	}
	for _, g := range groupIDs {
		tu.GroupIDs = append(tu.GroupIDs, g.Hex())
	}
	return tu
}

// WithUser injects user into the request context, bypassing the session.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		WorkspaceID:     user.WorkspaceID,
		WorkspaceActive: user.WorkspaceActive,
		GroupIDs:        user.GroupIDs,
	})
}

// JSONRequest builds a request with body marshalled as JSON.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

// DecodeJSON decodes a recorded response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// AssertStatus fails the test when the recorder's status differs.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}

// AssertRedirect checks for a 303 to location.
func AssertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}
