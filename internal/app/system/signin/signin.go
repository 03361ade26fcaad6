// Package signin turns a verified user into an authenticated session and
// fires the login hooks that hang off a completed sign-in.
package signin

import (
	"context"
	"net/http"

	loginstore "github.com/dalemusser/profilecompletion/internal/app/store/logins"
	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/ratelimit"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"go.uber.org/zap"
)

// Completer finishes a sign-in for every login source.
type Completer struct {
	SessionMgr *auth.SessionManager
	Prompt     *completion.Prompt
	Logins     *loginstore.Store
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

// New returns a Completer. prompt may be nil, which disables the profile
// completion hook; logins may be nil, which skips the sign-in history;
// audit may be nil, which skips the audit trail.
func New(sm *auth.SessionManager, prompt *completion.Prompt, logins *loginstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Completer {
	return &Completer{SessionMgr: sm, Prompt: prompt, Logins: logins, AuditLog: audit, Log: logger}
}

// Complete marks the session authenticated for u, runs the profile
// completion login hook and saves the session cookie. interactive is false
// for callers no person will see (API clients). Only a failed session save
// is returned; hook failures are logged and leave the prompt cleared. The
// audit event is written only once the session is saved.
func (c *Completer) Complete(w http.ResponseWriter, r *http.Request, u *models.User, interactive bool) error {
	sess, err := c.SessionMgr.GetSession(r)
	if err != nil {
		c.Log.Warn("session store error during login, using fresh session",
			zap.Error(err),
			zap.String("user_id", u.ID.Hex()))
	}

	auth.SignIn(sess, u.ID.Hex())

	flags := auth.Flags(sess)
	pending := false
	if c.Prompt != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		var err error
		pending, err = c.Prompt.OnLogin(ctx, flags, completion.LoginEvent{
			UserID:      u.ID.Hex(),
			Interactive: interactive,
		})
		cancel()
		if err != nil {
			c.Log.Warn("profile completion check failed at login",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		} else if pending {
			c.Log.Info("profile completion prompt pending", zap.String("user_id", u.ID.Hex()))
		}
	}

	if c.Logins != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		if err := c.Logins.Record(ctx, u.ID, u.AuthMethod, ratelimit.ClientIP(r), pending); err != nil {
			c.Log.Warn("failed to record sign-in",
				zap.Error(err),
				zap.String("user_id", u.ID.Hex()))
		}
		cancel()
	}

	if err := sess.Save(r, w); err != nil {
		return err
	}

	loginID := ""
	if u.LoginID != nil {
		loginID = *u.LoginID
	}
	c.AuditLog.LoginSuccess(r.Context(), r, u.ID, u.AuthMethod, loginID, pending)
	return nil
}
