// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

func render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backURL),
		Status:  status,
		Message: msg,
	}
	data.BackURL = backURL

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	render(w, r, http.StatusUnauthorized, "Sign in required", "Please sign in to continue.", backURL)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}

// RenderNotFound shows a "not found" page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderBadRequest shows a "bad request" page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadRequest, "Bad request", msg, backURL)
}

// RenderServerError shows a generic server error page.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}

/*─────────────────────────────────────────────────────────────────────────────*
| HTMX variants                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// IsHTMX reports whether the request came from an htmx swap.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// HTMXError writes msg as a small fragment with status for htmx requests,
// and calls fallback for full-page requests.
func HTMXError(w http.ResponseWriter, r *http.Request, status int, msg string, fallback func()) {
	if !IsHTMX(r) {
		fallback()
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// htmx does not swap error responses by default; point it at the
	// page-level alert slot.
	w.Header().Set("HX-Retarget", "#page-alert")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.WriteHeader(status)
	templates.RenderSnippet(w, "error_alert", pageData{Status: status, Message: msg})
}

// HTMXBadRequest renders a 400 alert for htmx requests or a full page otherwise.
func HTMXBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusBadRequest, msg, func() {
		RenderBadRequest(w, r, msg, backURL)
	})
}

// HTMXForbidden renders a 403 alert for htmx requests or a full page otherwise.
func HTMXForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusForbidden, msg, func() {
		RenderForbidden(w, r, msg, backURL)
	})
}
