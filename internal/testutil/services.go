package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	profilefieldstore "github.com/dalemusser/profilecompletion/internal/app/store/profilefields"
	settingsstore "github.com/dalemusser/profilecompletion/internal/app/store/settings"
	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie name used by NewSessionManager.
const SessionCookieName = "test-session"

// NewSessionManager returns a dev-mode session manager for handler tests.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", SessionCookieName, "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

// NewPrompt wires a completion prompt to the stores in db.
func NewPrompt(db *mongo.Database) *completion.Prompt {
	eval := completion.NewEvaluator(userstore.New(db), profilefieldstore.New(db), settingsstore.New(db))
	return completion.NewPrompt(eval, zap.NewNop())
}

// CarryCookies returns req with every cookie set on rec added to it.
func CarryCookies(rec *httptest.ResponseRecorder, req *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// PendingAfter reports whether the session written to rec carries the
// profile completion pending flag.
func PendingAfter(sm *auth.SessionManager, rec *httptest.ResponseRecorder) bool {
	req := CarryCookies(rec, httptest.NewRequest("GET", "/", nil))
	return sm.Flags(req).Get(completion.PendingKey)
}

// NewAuditLogger returns an audit logger that writes every category to db only.
func NewAuditLogger(db *mongo.Database) *auditlog.Logger {
	return auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{
		Auth:  auditlog.DestDB,
		Admin: auditlog.DestDB,
	})
}

// AuditEvents returns the stored audit events of eventType, newest first.
func AuditEvents(t *testing.T, db *mongo.Database, eventType string) []audit.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events, err := audit.New(db).Query(ctx, audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("audit Query failed: %v", err)
	}
	return events
}
