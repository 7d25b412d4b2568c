// internal/app/features/customers/routes.go
package customers

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
		pr.Get("/duplicates", h.ServeDuplicates)
		pr.Get("/map", h.ServeMap)
		pr.Post("/bulk", h.HandleBulk)

		pr.Get("/{id}", h.ServeCustomer)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Get("/{id}/contacts", h.ServeContacts)
	})

	return r
}
