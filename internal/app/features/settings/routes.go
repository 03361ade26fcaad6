// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the settings router. All routes require an admin.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	h.MountRoutes(r)
	return r
}

// MountRoutes mounts the settings routes on the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeSettings)
	r.Post("/", h.HandleSettings)
}
