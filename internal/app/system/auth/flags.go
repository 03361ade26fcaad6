package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionFlags exposes boolean session attributes to code that should not
// know about cookies. Changes are written back by Save.
type SessionFlags struct {
	sess  *sessions.Session
	dirty bool
}

// Flags wraps sess.
func Flags(sess *sessions.Session) *SessionFlags {
	return &SessionFlags{sess: sess}
}

// Get reports whether key is set to true. Absence reads as false.
func (f *SessionFlags) Get(key string) bool {
	v, _ := f.sess.Values[key].(bool)
	return v
}

// Set stores true under key.
func (f *SessionFlags) Set(key string) {
	if f.Get(key) {
		return
	}
	f.sess.Values[key] = true
	f.dirty = true
}

// Clear removes key.
func (f *SessionFlags) Clear(key string) {
	if _, ok := f.sess.Values[key]; !ok {
		return
	}
	delete(f.sess.Values, key)
	f.dirty = true
}

// Dirty reports whether Set or Clear changed anything.
func (f *SessionFlags) Dirty() bool { return f.dirty }

// Save writes the session cookie if a flag changed.
func (f *SessionFlags) Save(r *http.Request, w http.ResponseWriter) error {
	if !f.dirty {
		return nil
	}
	if err := f.sess.Save(r, w); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// Flags loads the request's session flags. A broken cookie yields a fresh
// session so callers can still clear state.
func (sm *SessionManager) Flags(r *http.Request) *SessionFlags {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logDecodeError(err)
	}
	return Flags(sess)
}
