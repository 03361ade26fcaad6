// internal/app/features/profileprompt/handler.go
package profileprompt

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/profilecompletion/internal/app/features/errors"
	profilefieldstore "github.com/dalemusser/profilecompletion/internal/app/store/profilefields"
	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/app/system/authz"
	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/profilefield"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgForbidden = "You do not have permission to edit your profile."

// Handler serves the "complete your profile" form and the page-render
// middleware that offers it.
type Handler struct {
	Users      *userstore.Store
	Fields     *profilefieldstore.Store
	Prompt     *completion.Prompt
	SessionMgr *auth.SessionManager
	Authz      authz.Checker
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	prompt *completion.Prompt,
	checker authz.Checker,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Fields:     profilefieldstore.New(db),
		Prompt:     prompt,
		SessionMgr: sessionMgr,
		Authz:      checker,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

type formData struct {
	viewdata.BaseVM
	FormID     string
	FormURL    string
	ModalTitle string
	Header     string
	SaveLabel  string
	Controls   []profilefield.Control
	Error      string
	ReturnURL  string
	Complete   bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /profile-completion                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeForm renders the form for the fields the user is missing right now:
// a modal fragment for htmx, a full page otherwise.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if !h.Authz.CanCompleteProfile(r) {
		uierrors.HTMXForbidden(w, r, msgForbidden, "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}

	missing, err := h.Prompt.Eval.Missing(ctx, u)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "evaluate missing profile fields", err, "Unable to load the form.", "/")
		return
	}

	h.render(w, r, missing, u, nil, nil, "", query.Get(r, "return"))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile-completion                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSubmit validates and saves the missing fields. Permission is
// checked before the form is read.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.Authz.CanCompleteProfile(r) {
		h.ErrLog.HTMXLogForbidden(w, r, "profile completion submit refused", msgForbidden, "/")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	returnURL := r.PostForm.Get("return")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "save profile completion")
	defer cancel()

	u, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}

	// One evaluation per request: the form is validated against exactly
	// the fields that are missing now.
	missing, err := h.Prompt.Eval.Missing(ctx, u)
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "evaluate missing profile fields", err, "Unable to save your profile.", "/")
		return
	}

	sub := Validate(missing, r.PostForm)
	if !sub.Valid() {
		h.render(w, r, missing, u, r.PostForm, sub.Errors, "", returnURL)
		return
	}

	// Custom values first: a field deleted since the form was built fails
	// here before any core value is written. Core keys are checked up
	// front so the core write cannot reject them afterwards.
	if err := userstore.CheckCoreFields(sub.Core); err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "check core profile fields", err, "Unable to save your profile.", "/")
		return
	}
	if err := h.Fields.SaveUserValues(ctx, u.ID, sub.Custom); err != nil {
		if errors.Is(err, profilefieldstore.ErrNotFound) {
			h.render(w, r, missing, u, r.PostForm, nil, "The profile fields changed while you were editing. Please try again.", returnURL)
			return
		}
		h.ErrLog.HTMXLogServerError(w, r, "save custom profile fields", err, "Unable to save your profile.", "/")
		return
	}
	if err := h.Users.UpdateCoreFields(ctx, u.ID, sub.Core); err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "save core profile fields", err, "Unable to save your profile.", "/")
		return
	}

	flags := h.SessionMgr.Flags(r)
	still, err := h.Prompt.AfterSubmit(ctx, flags, u.ID.Hex())
	if err != nil {
		h.Log.Warn("re-evaluate after profile completion failed",
			zap.Error(err),
			zap.String("user_id", u.ID.Hex()))
	}
	if err := flags.Save(r, w); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	h.Log.Info("profile completion saved",
		zap.String("user_id", u.ID.Hex()),
		zap.Int("core", len(sub.Core)),
		zap.Int("custom", len(sub.Custom)),
		zap.Int("still_missing", still.Len()))
	h.AuditLog.ProfileCompleted(ctx, r, u.ID, len(sub.Core), len(sub.Custom))

	if uierrors.IsHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(SavedSuccess))
		return
	}
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/"), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// loadUser returns the signed-in user's record. It writes the error
// response itself when it returns false.
func (h *Handler) loadUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return nil, false
	}
	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		uierrors.RenderUnauthorized(w, r, "/login")
		return nil, false
	}
	u, err := h.Users.GetByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderUnauthorized(w, r, "/login")
		return nil, false
	}
	if err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "load user", err, "A database error occurred.", "/")
		return nil, false
	}
	return u, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, missing completion.Missing, u *models.User, form url.Values, errs map[string]string, formErr, returnURL string) {
	data := formData{
		BaseVM:     viewdata.NewBaseVM(r, ModalTitle, "/"),
		FormID:     FormID,
		FormURL:    FormURL,
		ModalTitle: ModalTitle,
		Header:     FormHeader,
		SaveLabel:  SaveButton,
		Controls:   Controls(missing, u, form, errs),
		Error:      formErr,
		ReturnURL:  returnURL,
		Complete:   missing.Empty(),
	}
	// The page hosting the modal already shows the notification.
	data.Prompt = nil

	if uierrors.IsHTMX(r) {
		templates.RenderSnippet(w, "profilecompletion_modal", data)
		return
	}
	templates.Render(w, r, "profilecompletion_page", data)
}
