package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
)

// roundTrip saves the session set up by prepare and returns a request that
// carries the resulting cookie.
func roundTrip(t *testing.T, sm *auth.SessionManager, prepare func(w http.ResponseWriter, r *http.Request)) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	prepare(rec, httptest.NewRequest("GET", "/", nil))

	next := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	return next
}

func TestSessionFlags_SetClearAndSave(t *testing.T) {
	sm := newTestSessionManager(t)

	req := roundTrip(t, sm, func(w http.ResponseWriter, r *http.Request) {
		flags := sm.Flags(r)
		if flags.Get("pending") {
			t.Fatal("flag set on a fresh session")
		}
		flags.Set("pending")
		if !flags.Dirty() {
			t.Fatal("expected dirty after Set")
		}
		if err := flags.Save(r, w); err != nil {
			t.Fatalf("Save: %v", err)
		}
	})

	flags := sm.Flags(req)
	if !flags.Get("pending") {
		t.Fatal("flag did not survive the cookie round trip")
	}

	flags.Set("pending")
	if flags.Dirty() {
		t.Error("setting an already-set flag should not mark dirty")
	}
	flags.Clear("pending")
	if flags.Get("pending") || !flags.Dirty() {
		t.Error("Clear should remove the flag and mark dirty")
	}
}

type stubFetcher map[string]*auth.SessionUser

func (s stubFetcher) FetchUser(_ context.Context, id string) *auth.SessionUser { return s[id] }

func TestLoadSessionUser_UsesFetcher(t *testing.T) {
	sm := newTestSessionManager(t)
	const id = "507f1f77bcf86cd799439011"
	sm.SetUserFetcher(stubFetcher{id: {ID: id, Name: "Hermione", Role: "member"}})

	req := roundTrip(t, sm, func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.GetSession(r)
		auth.SignIn(sess, id)
		if err := sess.Save(r, w); err != nil {
			t.Fatalf("Save: %v", err)
		}
	})

	var got *auth.SessionUser
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Name != "Hermione" {
		t.Fatalf("expected fetched user in context, got %+v", got)
	}
}

func TestLoadSessionUser_FetcherRejects(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(stubFetcher{})

	req := roundTrip(t, sm, func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.GetSession(r)
		auth.SignIn(sess, "507f1f77bcf86cd799439011")
		_ = sess.Save(r, w)
	})

	found := true
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Error("expected no user when the fetcher returns nil")
	}
}

func TestDestroy_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	if err := sm.Destroy(rec, httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expired cookie, got %+v", cookies)
	}
}
