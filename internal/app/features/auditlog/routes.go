// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit trail, typically at "/audit". Admins and owners
// see their own workspace's events.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireWorkspaceMember)
		pr.Get("/", h.ServeList)
	})

	return r
}
