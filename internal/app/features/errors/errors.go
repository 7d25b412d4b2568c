// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/sfahub/internal/app/system/auth"
)

// Handler serves the landing endpoints that auth middleware redirects to.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

type pageData struct {
	Title      string `json:"title"`
	IsLoggedIn bool   `json:"is_logged_in"`
	Role       string `json:"role,omitempty"`
	UserName   string `json:"user_name,omitempty"`
	Message    string `json:"message"`
	BackURL    string `json:"back_url"`
}

func page(r *http.Request, title, msg, back string) pageData {
	data := pageData{Title: title, Message: msg, BackURL: back}
	if u, ok := auth.CurrentUser(r); ok {
		data.IsLoggedIn = true
		data.Role = u.Role
		data.UserName = u.Name
	}
	return data
}

// Forbidden answers GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusForbidden, page(r, "Access denied", "You don't have permission to view this page.", "/"))
}

// Unauthorized answers GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusUnauthorized, page(r, "Sign in required", "Please sign in to continue.", "/login"))
}

// NotFound answers unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusNotFound, page(r, "Not found", "The page you requested does not exist.", "/"))
}
