// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Path is where the audit log is mounted.
const Path = "/audit"

// Routes returns the audit log router. Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	return r
}
