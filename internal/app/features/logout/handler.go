// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /logout. The whole session goes, so a pending
// profile completion prompt does not survive into the next sign-in.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Log.Info("user logged out",
			zap.String("user_id", u.ID),
			zap.Bool("prompt_pending", h.SessionMgr.Flags(r).Get(completion.PendingKey)))
		h.AuditLog.Logout(r.Context(), r, u.ID)
	}

	if err := h.SessionMgr.Destroy(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
