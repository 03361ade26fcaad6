// internal/app/features/authgoogle/handler.go
package authgoogle

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/profilecompletion/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"github.com/dalemusser/profilecompletion/internal/app/system/normalize"
	"github.com/dalemusser/profilecompletion/internal/app/system/signin"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const authMethod = models.AuthMethodGoogle

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SignIn     *signin.Completer
	StateStore *oauthstate.Store
	AuditLog   *auditlog.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://example.com/auth/google/callback"
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	db *mongo.Database,
	completer *signin.Completer,
	clientID, clientSecret, baseURL string,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        userstore.New(db),
		Log:          logger,
		SignIn:       completer,
		StateStore:   oauthstate.New(db),
		AuditLog:     audit,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	state, err := h.StateStore.Issue(ctx, returnURL)
	if err != nil {
		h.Log.Error("failed to issue OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOnline)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("redirect_url", url),
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, looks the Google account up and signs the user in.       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.reject(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.reject(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Redeem(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.reject(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.reject(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.reject(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.reject(w, r, "token_exchange")
		return
	}

	googleUser, err := fetchUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.reject(w, r, "user_info")
		return
	}

	user, err := h.FindUser(ctxTimeout, googleUser.ID, googleUser.Email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		h.Log.Info("Google OAuth: user not found",
			zap.String("google_id", googleUser.ID),
			zap.String("email", googleUser.Email))
		h.reject(w, r, "no_account")
		return
	case errors.Is(err, ErrUserDisabled):
		h.Log.Info("Google OAuth: user disabled", zap.String("google_id", googleUser.ID))
		h.reject(w, r, "account_disabled")
		return
	case err != nil:
		h.Log.Error("failed to look up user", zap.Error(err))
		h.reject(w, r, "internal")
		return
	}

	// Fill blank profile fields before the completion check runs so the
	// prompt only asks for what Google could not supply.
	if fill := googleUser.CoreFill(user); len(fill) > 0 {
		if err := h.Users.UpdateCoreFields(ctxTimeout, user.ID, fill); err != nil {
			h.Log.Warn("failed to copy Google profile fields",
				zap.Error(err),
				zap.String("user_id", user.ID.Hex()))
		} else {
			h.Log.Info("profile fields filled from Google",
				zap.String("user_id", user.ID.Hex()),
				zap.Int("fields", len(fill)))
		}
	}

	// A Google sign-in always has a person at the browser.
	if err := h.SignIn.Complete(w, r, user, true); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		h.reject(w, r, "session")
		return
	}

	h.Log.Info("user logged in via Google OAuth", zap.String("user_id", user.ID.Hex()))
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/"), http.StatusSeeOther)
}

// reject records a failed Google sign-in and sends the browser back to the
// login page with code.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, code string) {
	h.AuditLog.LoginFailedGoogle(r.Context(), r, code)
	http.Redirect(w, r, "/login?error="+code, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| User lookup                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserDisabled = errors.New("user disabled")
)

// UserInfo is the Google userinfo response.
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func fetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// FindUser looks up a Google account holder:
//  1. auth_return_id = Google's user id (already linked)
//  2. login_id = email with auth_method google; the Google id is linked on first match
func (h *Handler) FindUser(ctx context.Context, googleID, email string) (*models.User, error) {
	u, err := h.Users.GetByAuthReturnID(ctx, authMethod, googleID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		u, err = h.Users.GetByLoginID(ctx, email, authMethod)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		if err == nil && (u.AuthReturnID == nil || *u.AuthReturnID == "") {
			if linkErr := h.Users.SetAuthReturnID(ctx, u.ID, googleID); linkErr != nil {
				h.Log.Warn("failed to update auth_return_id",
					zap.Error(linkErr),
					zap.String("user_id", u.ID.Hex()))
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if normalize.Status(u.Status) == models.StatusDisabled {
		return nil, ErrUserDisabled
	}
	return u, nil
}

// CoreFill returns the built-in profile fields Google can supply that are
// blank on u. The email is only used when Google has verified it.
func (info UserInfo) CoreFill(u *models.User) map[string]string {
	offer := map[string]string{
		"firstname": info.GivenName,
		"lastname":  info.FamilyName,
	}
	if info.EmailVerified {
		offer["email"] = info.Email
	}

	fill := map[string]string{}
	for name, v := range offer {
		if strings.TrimSpace(v) == "" || strings.TrimSpace(u.CoreValue(name)) != "" {
			continue
		}
		fill[name] = v
	}
	return fill
}
