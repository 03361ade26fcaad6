// internal/app/features/profileprompt/middleware.go
package profileprompt

import (
	"net/http"
	"strings"

	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Paths where the notification is never offered.
var skipPrefixes = []string{
	"/login",
	"/logout",
	"/auth/",
	FormURL,
	"/static/",
	"/health",
	"/forbidden",
	"/unauthorized",
}

// PageHook attaches the notification to full page renders of sessions
// with a pending prompt. It must run after LoadSessionUser.
func (h *Handler) PageHook(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if vm := h.promptFor(w, r); vm != nil {
			r = viewdata.WithPrompt(r, vm)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) promptFor(w http.ResponseWriter, r *http.Request) *viewdata.PromptVM {
	if r.Method != http.MethodGet || r.Header.Get("HX-Request") == "true" {
		return nil
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return nil
		}
	}
	su, ok := auth.CurrentUser(r)
	if !ok || !h.Authz.CanCompleteProfile(r) {
		return nil
	}

	flags := h.SessionMgr.Flags(r)
	if !flags.Get(completion.PendingKey) {
		return nil
	}

	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return nil
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "profile completion page check")
	defer cancel()

	u, err := h.Users.GetByID(ctx, oid)
	if err != nil {
		h.Log.Warn("profile completion: load user failed",
			zap.Error(err), zap.String("user_id", su.ID))
		return nil
	}

	missing, err := h.Prompt.OnPageRender(ctx, flags, u)
	if err != nil {
		h.Log.Warn("profile completion: evaluation failed",
			zap.Error(err), zap.String("user_id", su.ID))
		return nil
	}
	if err := flags.Save(r, w); err != nil {
		h.Log.Warn("profile completion: save session failed",
			zap.Error(err), zap.String("user_id", su.ID))
	}
	if missing.Empty() {
		return nil
	}

	return NewPromptVM(missing.Len())
}

// NewPromptVM builds the notification offering a form with n fields.
func NewPromptVM(n int) *viewdata.PromptVM {
	return &viewdata.PromptVM{
		ID:           "profilecompletion-prompt-" + uuid.NewString(),
		Title:        PromptTitle,
		Body:         PromptBody,
		ButtonLabel:  PromptButton,
		DelayMS:      PromptDelayMS,
		FormID:       FormID,
		FormURL:      FormURL,
		ModalTitle:   ModalTitle,
		SaveLabel:    SaveButton,
		MissingCount: n,
	}
}
