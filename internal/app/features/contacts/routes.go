// internal/app/features/contacts/routes.go
package contacts

import (
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireWorkspaceMember)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/visits", h.ServeVisits)
		pr.Get("/counts", h.ServeCounts)

		pr.Get("/{id}", h.ServeContact)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
