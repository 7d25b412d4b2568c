// internal/app/features/workspaces/routes.go
package workspaces

import (
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts workspace creation, join requests and the current
// workspace. Typically: r.Mount("/workspaces", workspaces.Routes(h, sm))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	// Unaffiliated users only; the handlers check the state.
	r.Post("/", h.HandleCreate)
	r.Post("/join", h.HandleJoin)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireWorkspaceMember)
		pr.Get("/current", h.ServeCurrent)
		pr.Put("/current", h.HandleRename)
	})

	return r
}

// UserRoutes mounts the member list and membership changes.
// Typically: r.Mount("/users", workspaces.UserRoutes(h, sm))
func UserRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireWorkspaceMember)

	r.Get("/", h.ServeUsers)
	r.Post("/invite", h.HandleInvite)
	r.Post("/{id}/accept", h.HandleAccept)
	r.Post("/{id}/reject", h.HandleReject)
	r.Post("/{id}/release", h.HandleRelease)
	r.Put("/{id}/role", h.HandleRole)

	return r
}

// InviteRoutes mounts the public invitation endpoints.
// Typically: r.Mount("/invites", workspaces.InviteRoutes(h))
func InviteRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{token}", h.ServeInvite)
	r.Post("/{token}", h.HandleConfirmInvite)
	return r
}
