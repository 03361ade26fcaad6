// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"net/http"

	"github.com/dalemusser/profilecompletion/internal/app/system/authz"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// PromptVM is the "complete your profile" notification shown on a page.
// A nil *PromptVM means no notification.
type PromptVM struct {
	ID          string // element id, unique per render
	Title       string
	Body        string
	ButtonLabel string
	DelayMS     int // auto-hide delay for the toast

	// Modal form
	FormID     string
	FormURL    string
	ModalTitle string
	SaveLabel  string

	// MissingCount is the number of fields the form will ask for.
	MissingCount int
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsAdmin    bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Profile completion notification, set by the page-render middleware.
	Prompt *PromptVM
}

type ctxKey struct{}

// WithPrompt returns a request carrying vm for NewBaseVM to pick up.
func WithPrompt(r *http.Request, vm *PromptVM) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, vm))
}

// PromptFromRequest returns the notification attached by WithPrompt, or nil.
func PromptFromRequest(r *http.Request) *PromptVM {
	vm, _ := r.Context().Value(ctxKey{}).(*PromptVM)
	return vm
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	return BaseVM{
		SiteName:    models.DefaultSiteName,
		IsLoggedIn:  signedIn,
		IsAdmin:     authz.IsAdmin(r),
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Prompt:      PromptFromRequest(r),
	}
}
