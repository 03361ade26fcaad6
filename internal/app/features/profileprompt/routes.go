// internal/app/features/profileprompt/routes.go
package profileprompt

import "github.com/go-chi/chi/v5"

// Routes mounts the form at /profile-completion.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.SessionMgr.RequireSignedIn)
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleSubmit)
	return r
}
