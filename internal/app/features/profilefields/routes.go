// internal/app/features/profilefields/routes.go
package profilefields

import (
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the catalog admin under BasePath. Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
