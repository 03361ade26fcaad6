// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	auditlogfeature "github.com/dalemusser/profilecompletion/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/profilecompletion/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/profilecompletion/internal/app/features/errors"
	healthfeature "github.com/dalemusser/profilecompletion/internal/app/features/health"
	homefeature "github.com/dalemusser/profilecompletion/internal/app/features/home"
	loginfeature "github.com/dalemusser/profilecompletion/internal/app/features/login"
	logoutfeature "github.com/dalemusser/profilecompletion/internal/app/features/logout"
	profilefieldsfeature "github.com/dalemusser/profilecompletion/internal/app/features/profilefields"
	profilepromptfeature "github.com/dalemusser/profilecompletion/internal/app/features/profileprompt"
	settingsfeature "github.com/dalemusser/profilecompletion/internal/app/features/settings"
	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	loginstore "github.com/dalemusser/profilecompletion/internal/app/store/logins"
	profilefieldstore "github.com/dalemusser/profilecompletion/internal/app/store/profilefields"
	settingsstore "github.com/dalemusser/profilecompletion/internal/app/store/settings"
	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/app/system/authz"
	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/ratelimit"
	"github.com/dalemusser/profilecompletion/internal/app/system/signin"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// stopBackground ends goroutines started by BuildHandler; Shutdown calls it.
var stopBackground context.CancelFunc = func() {}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It boots the template engine, wires the
// profile completion services, applies CSRF and session middleware, and
// mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// LoadSessionUser fetches fresh user data on each request so role
	// changes and disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Profile completion services shared by every sign-in source, the page
	// hook and the form.
	settings := settingsstore.New(db)
	eval := completion.NewEvaluator(userstore.New(db), profilefieldstore.New(db), settings)
	prompt := completion.NewPrompt(eval, logger)

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	completer := signin.New(sessionMgr, prompt, loginstore.New(db), auditLog, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	limiter := ratelimit.NewLoginLimiter()
	bg, cancel := context.WithCancel(context.Background())
	stopBackground = cancel
	go limiter.Run(bg)

	promptHandler := profilepromptfeature.NewHandler(db, sessionMgr, prompt, authz.RequestChecker{}, errLog, auditLog, logger)

	r := chi.NewRouter()

	r.Use(csrfExemptions(secure))
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName("gorilla.csrf.Token"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed", zap.String("path", r.URL.Path), zap.Error(csrf.FailureReason(r)))
			errorsfeature.HTMXForbidden(w, r, "Your form expired. Please reload the page and try again.", "/")
		})),
	))

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Offers the "complete your profile" notification on page renders.
	r.Use(promptHandler.PageHook)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, settings, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, completer, errLog, limiter, appCfg.GoogleEnabled(), auditLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	googleHandler := authgooglefeature.NewHandler(db, completer, appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, auditLog, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Profile completion form
	r.Mount(profilepromptfeature.FormURL, profilepromptfeature.Routes(promptHandler))

	// Administration
	settingsHandler := settingsfeature.NewHandler(db, errLog, auditLog, logger)
	r.Mount(settingsfeature.Path, settingsfeature.Routes(settingsHandler, sessionMgr))

	fieldsHandler := profilefieldsfeature.NewHandler(db, errLog, auditLog, logger)
	r.Mount(profilefieldsfeature.BasePath, profilefieldsfeature.Routes(fieldsHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
	r.Mount(auditlogfeature.Path, auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// csrfExemptions prepares requests for csrf.Protect. Plain-HTTP requests
// in non-production mode skip the TLS referer check, and password logins
// from API clients (no HTML accept) carry no token.
func csrfExemptions(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			if r.Method == http.MethodPost && r.URL.Path == "/login" && !auth.WantsHTML(r) {
				r = csrf.UnsafeSkipCheck(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
