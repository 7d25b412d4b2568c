// internal/app/features/groups/routes.go
package groups

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
		pr.Get("/options", h.ServeOptions)

		pr.Get("/{id}", h.ServeGroup)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Put("/{id}/members", h.HandleSetMembers)
	})

	return r
}
