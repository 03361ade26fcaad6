// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/profilecompletion/internal/app/features/errors"
	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/app/system/authutil"
	"github.com/dalemusser/profilecompletion/internal/app/system/normalize"
	"github.com/dalemusser/profilecompletion/internal/app/system/ratelimit"
	"github.com/dalemusser/profilecompletion/internal/app/system/signin"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users         *userstore.Store
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
	SignIn        *signin.Completer
	Limiter       *ratelimit.LoginLimiter
	AuditLog      *auditlog.Logger
	GoogleEnabled bool // True if Google OAuth is configured
}

func NewHandler(
	db *mongo.Database,
	completer *signin.Completer,
	errLog *uierrors.ErrorLogger,
	limiter *ratelimit.LoginLimiter,
	googleEnabled bool,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:         userstore.New(db),
		Log:           logger,
		ErrLog:        errLog,
		SignIn:        completer,
		Limiter:       limiter,
		AuditLog:      audit,
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	LoginID       string
	ReturnURL     string
	GoogleEnabled bool
}

// Messages for the ?error= codes other sign-in sources redirect with.
var errorCodeMessages = map[string]string{
	"google_not_configured": "Google sign-in is not available.",
	"google_denied":         "Google sign-in was cancelled.",
	"invalid_state":         "Your sign-in link expired. Please try again.",
	"no_account":            "No account is linked to that Google login.",
	"account_disabled":      "Your account is currently disabled. Please contact an administrator.",
	"session":               "Unable to create session. Please try again.",
}

const defaultErrorMessage = "Something went wrong signing you in. Please try again."

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var msg string
	if code := query.Get(r, "error"); code != "" {
		msg = errorCodeMessages[code]
		if msg == "" {
			msg = defaultErrorMessage
		}
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Login", "/"),
		Error:         msg,
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	loginID := strings.TrimSpace(r.FormValue("login_id"))
	password := r.FormValue("password")
	returnURL := r.FormValue("return")

	if loginID == "" || password == "" {
		h.fail(w, r, http.StatusBadRequest, "Please enter your login ID and password.", loginID, returnURL)
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, loginID); !ok {
			h.Log.Warn("login rate limited",
				zap.String("login_id", loginID),
				zap.String("ip", ratelimit.ClientIP(r)))
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, loginID)
			h.fail(w, r, http.StatusTooManyRequests, msg, loginID, returnURL)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByLoginID(ctx, loginID, models.AuthMethodPassword)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, loginID)
		h.fail(w, r, http.StatusUnauthorized, "No account found for that login ID.", loginID, returnURL)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error finding user", err, "A database error occurred.", "/login")
		return
	}

	if normalize.Status(u.Status) == models.StatusDisabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID)
		h.fail(w, r, http.StatusForbidden, "Your account is currently disabled. Please contact an administrator.", loginID, returnURL)
		return
	}
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, "no password set")
		h.fail(w, r, http.StatusUnauthorized, "No password set for this account. Please contact an administrator.", loginID, returnURL)
		return
	}
	if !authutil.CheckPassword(password, *u.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, "wrong password")
		h.fail(w, r, http.StatusUnauthorized, "Incorrect password. Please try again.", loginID, returnURL)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetAccount(loginID)
	}

	interactive := auth.WantsHTML(r)
	if err := h.SignIn.Complete(w, r, u, interactive); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("login_id", loginID))
		h.fail(w, r, http.StatusInternalServerError, "Unable to create session. Please try again.", loginID, returnURL)
		return
	}

	h.Log.Info("user logged in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("login_id", loginID),
		zap.Bool("interactive", interactive))

	if !interactive {
		writeJSON(w, http.StatusOK, loginResponse{OK: true, UserID: u.ID.Hex()})
		return
	}

	dest := urlutil.SafeReturn(returnURL, "", "/")
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

type loginResponse struct {
	OK     bool   `json:"ok"`
	UserID string `json:"user_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// fail answers a rejected login: the form with msg for browsers, a JSON
// error with status for API clients.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, msg, loginID, returnURL string) {
	if !auth.WantsHTML(r) {
		writeJSON(w, status, loginResponse{Error: msg})
		return
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Login", "/"),
		Error:         msg,
		LoginID:       loginID,
		ReturnURL:     returnURL,
		GoogleEnabled: h.GoogleEnabled,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
