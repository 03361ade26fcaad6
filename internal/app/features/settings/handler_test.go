package settings_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	uierrors "github.com/dalemusser/profilecompletion/internal/app/features/errors"
	"github.com/dalemusser/profilecompletion/internal/app/features/settings"
	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	settingsstore "github.com/dalemusser/profilecompletion/internal/app/store/settings"
	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/fieldkeys"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/profilecompletion/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*settings.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	return settings.NewHandler(db, errLog, testutil.NewAuditLogger(db), logger), db
}

func post(form url.Values) *http.Request {
	return testutil.WithUser(testutil.NewFormRequest(settings.Path, form), testutil.AdminUser())
}

func TestBuildOptions(t *testing.T) {
	catalog := []models.ProfileField{{Shortname: "house", Name: "House"}}
	selected := fieldkeys.ResolveList([]string{"core:city", "custom:house", "custom:wand"})

	opts, warnings := settings.BuildOptions(catalog, selected)

	if len(opts) != len(fieldkeys.CoreFields)+1 {
		t.Fatalf("got %d options, want %d", len(opts), len(fieldkeys.CoreFields)+1)
	}
	if opts[0].Value != "core:firstname" || opts[0].Label != "Core: First name" {
		t.Errorf("first option: %+v", opts[0])
	}
	last := opts[len(opts)-1]
	if last.Value != "custom:house" || last.Label != "Custom: House (house)" || !last.Selected {
		t.Errorf("custom option: %+v", last)
	}

	var picked []string
	for _, o := range opts {
		if o.Selected {
			picked = append(picked, o.Value)
		}
	}
	if want := []string{"core:city", "custom:house"}; !reflect.DeepEqual(picked, want) {
		t.Errorf("selected: got %v, want %v", picked, want)
	}

	want := []string{`The custom profile field "wand" does not exist anymore and was ignored.`}
	if !reflect.DeepEqual(warnings, want) {
		t.Errorf("warnings: got %v, want %v", warnings, want)
	}
}

func TestHandleSettings_Saves(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.NewFixtures(t, db).CreateProfileField(ctx, "house", "House", models.FieldText)

	rec := httptest.NewRecorder()
	handler.HandleSettings(rec, post(url.Values{
		"enabled":   {"1"},
		"fieldkeys": {"core:city", "custom:house", "core:city"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != settings.Path+"?saved=1" {
		t.Errorf("Location: got %q", loc)
	}

	s, err := settingsstore.New(db).Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !s.Enabled || !s.IsList {
		t.Errorf("unexpected settings: %+v", s)
	}
	got := fieldkeys.Strings(completion.ConfiguredKeys(s))
	if want := []string{"core:city", "custom:house"}; !reflect.DeepEqual(got, want) {
		t.Errorf("fieldkeys: got %v, want %v", got, want)
	}
	if s.UpdatedByName != testutil.AdminUser().Name {
		t.Errorf("UpdatedByName: got %q", s.UpdatedByName)
	}

	events := testutil.AuditEvents(t, db, audit.EventSettingsUpdated)
	if len(events) != 1 {
		t.Fatalf("expected 1 settings audit event, got %d", len(events))
	}
	if events[0].Details["fieldkeys"] != "core:city,custom:house" || events[0].Details["enabled"] != "true" {
		t.Errorf("audit details: %v", events[0].Details)
	}
}

func TestHandleSettings_WhitespaceVariants(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := httptest.NewRecorder()
	handler.HandleSettings(rec, post(url.Values{
		"enabled":   {"1"},
		"fieldkeys": {"core:city", " core:city", "   ", "core:phone1 "},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	s, err := settingsstore.New(db).Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got := fieldkeys.Strings(completion.ConfiguredKeys(s))
	if want := []string{"core:city", "core:phone1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("fieldkeys: got %v, want %v", got, want)
	}
}

func TestHandleSettings_Disable(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.NewFixtures(t, db).ConfigureCompletion(ctx, true, "core:city")

	rec := httptest.NewRecorder()
	handler.HandleSettings(rec, post(url.Values{"fieldkeys": {"core:city"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	s, err := settingsstore.New(db).Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Enabled {
		t.Error("an unchecked box must disable the prompt")
	}
}

func TestHandleSettings_RejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{"custom field not in catalog", []string{"core:city", "custom:wand"}},
		{"malformed key", []string{"core:city", "core:favourite_food"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, db := newTestHandler(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			rec := httptest.NewRecorder()
			func() {
				// Template rendering may panic without initialized templates.
				defer func() { recover() }()
				handler.HandleSettings(rec, post(url.Values{"enabled": {"1"}, "fieldkeys": tt.keys}))
			}()

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
			}
			s, err := settingsstore.New(db).Get(ctx)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if s.UpdatedAt != nil {
				t.Error("settings must not be saved")
			}
			if n := len(testutil.AuditEvents(t, db, audit.EventSettingsUpdated)); n != 0 {
				t.Errorf("a rejected save must not be audited, got %d events", n)
			}
		})
	}
}

func TestServeSettings_AdminUser(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", settings.Path, testutil.AdminUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		handler.ServeSettings(rec, req)
	}()
}

func TestRoutes_AdminOnly(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := settings.Routes(handler, testutil.NewSessionManager(t))

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"signed out", httptest.NewRequest("GET", "/", nil), http.StatusUnauthorized},
		{"member", testutil.NewAuthenticatedRequest("GET", "/", testutil.MemberUser()), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}
