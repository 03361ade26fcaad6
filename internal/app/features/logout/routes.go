// internal/app/features/logout/routes.go
package logout

import (
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Post("/", h.HandleLogout)
	return r
}
