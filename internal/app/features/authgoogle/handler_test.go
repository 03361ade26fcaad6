package authgoogle_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/profilecompletion/internal/app/features/authgoogle"
	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"github.com/dalemusser/profilecompletion/internal/app/system/signin"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/profilecompletion/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, clientID, clientSecret string) (*authgoogle.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	auditLog := testutil.NewAuditLogger(db)
	completer := signin.New(testutil.NewSessionManager(t), testutil.NewPrompt(db), nil, auditLog, logger)
	return authgoogle.NewHandler(db, completer, clientID, clientSecret, "http://localhost:8080", auditLog, logger), db
}

func newTestHandler(t *testing.T) *authgoogle.Handler {
	t.Helper()
	h, _ := newHandler(t, "test-client-id", "test-client-secret")
	return h
}

func TestIsConfigured(t *testing.T) {
	if !newTestHandler(t).IsConfigured() {
		t.Error("IsConfigured() should return true with client ID and secret")
	}
	h, _ := newHandler(t, "", "")
	if h.IsConfigured() {
		t.Error("IsConfigured() should return false without client ID and secret")
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h, _ := newHandler(t, "", "")

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "google_not_configured") {
		t.Errorf("Location = %q, want to contain 'google_not_configured'", loc)
	}
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google?return=/settings", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Errorf("expected status %d, got %d", http.StatusTemporaryRedirect, rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("Location = %q, want to contain 'accounts.google.com'", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Errorf("Location = %q, want a state parameter", loc)
	}
}

func TestServeCallback_Rejections(t *testing.T) {
	handler, db := newHandler(t, "test-client-id", "test-client-secret")

	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"google error", "/auth/google/callback?error=access_denied", "google_denied"},
		{"missing state", "/auth/google/callback?code=test-code", "invalid_state"},
		{"unknown state", "/auth/google/callback?state=invalid-state&code=test-code", "invalid_state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeCallback(rec, httptest.NewRequest("GET", tt.target, nil))

			if rec.Code != http.StatusSeeOther {
				t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
			}
			if loc := rec.Header().Get("Location"); !strings.Contains(loc, tt.code) {
				t.Errorf("Location = %q, want to contain %q", loc, tt.code)
			}
		})
	}

	events := testutil.AuditEvents(t, db, audit.EventLoginFailedGoogle)
	if len(events) != len(tests) {
		t.Fatalf("expected %d google failure audit events, got %d", len(tests), len(events))
	}
	// newest first
	if events[0].FailureReason != "invalid_state" || events[len(events)-1].FailureReason != "google_denied" {
		t.Errorf("failure reasons: first %q, last %q", events[0].FailureReason, events[len(events)-1].FailureReason)
	}
}

func TestFindUser(t *testing.T) {
	h, db := newHandler(t, "id", "secret")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := userstore.New(db)
	login := "Grace@Example.com"
	created, err := users.Create(ctx, models.User{LoginID: &login, AuthMethod: "google", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// First sign-in matches on email and links the Google id.
	u, err := h.FindUser(ctx, "google-sub-1", "grace@example.com")
	if err != nil {
		t.Fatalf("FindUser by email: %v", err)
	}
	if u.ID != created.ID {
		t.Fatalf("FindUser returned %s, want %s", u.ID.Hex(), created.ID.Hex())
	}

	// Later sign-ins match on the linked id even if the email changed.
	u, err = h.FindUser(ctx, "google-sub-1", "renamed@example.com")
	if err != nil {
		t.Fatalf("FindUser by linked id: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("FindUser returned %s, want %s", u.ID.Hex(), created.ID.Hex())
	}

	if _, err := h.FindUser(ctx, "google-sub-2", "nobody@example.com"); !errors.Is(err, authgoogle.ErrUserNotFound) {
		t.Errorf("unknown account: got %v, want ErrUserNotFound", err)
	}
}

func TestFindUser_Disabled(t *testing.T) {
	h, db := newHandler(t, "id", "secret")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	login := "off@example.com"
	created, err := userstore.New(db).Create(ctx, models.User{LoginID: &login, AuthMethod: "google", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	testutil.NewFixtures(t, db).SetStatus(ctx, created.ID, models.StatusDisabled)

	if _, err := h.FindUser(ctx, "google-sub-3", login); !errors.Is(err, authgoogle.ErrUserDisabled) {
		t.Errorf("got %v, want ErrUserDisabled", err)
	}
}

func TestFindUser_PasswordAccountNotMatched(t *testing.T) {
	h, db := newHandler(t, "id", "secret")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.NewFixtures(t, db).CreateMember(ctx, "pw@example.com")

	if _, err := h.FindUser(ctx, "google-sub-4", "pw@example.com"); !errors.Is(err, authgoogle.ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestRoutes(t *testing.T) {
	if authgoogle.Routes(newTestHandler(t)) == nil {
		t.Fatal("Routes() returned nil")
	}
}

func TestUserInfo_CoreFill(t *testing.T) {
	info := authgoogle.UserInfo{
		ID:            "google-sub-9",
		Email:         "ada@example.com",
		EmailVerified: true,
		GivenName:     "Ada",
		FamilyName:    "Lovelace",
	}

	tests := []struct {
		name     string
		user     models.User
		verified bool
		want     map[string]string
	}{
		{
			name:     "blank profile",
			user:     models.User{},
			verified: true,
			want:     map[string]string{"firstname": "Ada", "lastname": "Lovelace", "email": "ada@example.com"},
		},
		{
			name:     "keeps existing values",
			user:     models.User{FirstName: "Augusta", Email: "a@example.com"},
			verified: true,
			want:     map[string]string{"lastname": "Lovelace"},
		},
		{
			name:     "whitespace counts as blank",
			user:     models.User{FirstName: "  ", LastName: "King", Email: "a@example.com"},
			verified: true,
			want:     map[string]string{"firstname": "Ada"},
		},
		{
			name:     "unverified email is not used",
			user:     models.User{FirstName: "Ada", LastName: "King"},
			verified: false,
			want:     map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := info
			in.EmailVerified = tt.verified
			got := in.CoreFill(&tt.user)
			if len(got) != len(tt.want) {
				t.Fatalf("CoreFill: got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s: got %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
