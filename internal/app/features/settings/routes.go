// internal/app/features/settings/routes.go
package settings

import "github.com/go-chi/chi/v5"

// MountRoutes mounts all settings routes on the given router.
// The caller requires workspace membership; saving the workspace blocks is
// owner only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/goal", h.ServeGoal)
	r.Put("/goal", h.HandleGoal)

	r.Get("/environment", h.ServeEnvironment)
	r.Put("/environment", h.HandleEnvironment)

	r.Get("/display", h.ServeDisplay)
	r.Put("/display", h.HandleDisplay)
}
