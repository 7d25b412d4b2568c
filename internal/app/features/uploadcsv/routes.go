// internal/app/features/uploadcsv/routes.go
package uploadcsv

import (
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the CSV import routes.
// Typically: r.Mount("/upload_csv", uploadcsv.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireWorkspaceMember)

		pr.Post("/customers", h.HandleCustomers)
		pr.Post("/addresses", h.HandleAddresses)
	})

	return r
}
