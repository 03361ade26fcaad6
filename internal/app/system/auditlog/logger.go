// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	"github.com/dalemusser/profilecompletion/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination values accepted by Config.Auth and Config.Admin.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off" // disabled
)

// ValidDestination reports whether v is one of the accepted destinations.
func ValidDestination(v string) bool {
	switch v {
	case DestAll, DestDB, DestLog, DestOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in and sign-out events.
	Auth string
	// Admin controls logging for settings, catalog and profile data changes.
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers and tests can run without one.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = DestAll
	}

	if setting == DestOff {
		return
	}

	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}

	if setting == DestAll || setting == DestDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a completed sign-in. promptPending records whether the
// completion prompt was armed for this session.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod, loginID string, promptPending bool) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{
		"auth_method":    authMethod,
		"login_id":       loginID,
		"prompt_pending": strconv.FormatBool(promptPending),
	}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a failed login for an unknown login ID.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedLoginID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_login_id": attemptedLoginID}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a failed login with a bad or missing password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, reason string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = reason
	l.Log(ctx, e)
}

// LoginFailedUserDisabled logs a login attempt on a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserDisabled, false)
	e.UserID = &userID
	e.FailureReason = "account disabled"
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login attempt rejected by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedLoginID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limit exceeded"
	e.Details = map[string]string{"attempted_login_id": attemptedLoginID}
	l.Log(ctx, e)
}

// LoginFailedGoogle logs a Google sign-in that did not produce a session.
func (l *Logger) LoginFailedGoogle(ctx context.Context, r *http.Request, reason string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedGoogle, false)
	e.FailureReason = reason
	l.Log(ctx, e)
}

// Logout logs a sign-out. userIDHex may be empty when the session carried no user.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDHex string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLogout, true)
	if oid, err := primitive.ObjectIDFromHex(userIDHex); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, e)
}

// --- Admin Events ---

// SettingsUpdated logs a save of the completion settings.
func (l *Logger) SettingsUpdated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, enabled bool, fieldKeys []string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventSettingsUpdated, true)
	e.ActorID = &actorID
	e.Details = map[string]string{
		"enabled":   strconv.FormatBool(enabled),
		"fieldkeys": strings.Join(fieldKeys, ","),
	}
	l.Log(ctx, e)
}

// ProfileFieldCreated logs a new custom profile field definition.
func (l *Logger) ProfileFieldCreated(ctx context.Context, r *http.Request, actorID, fieldID primitive.ObjectID, shortname, dataType string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventProfileFieldCreated, true)
	e.ActorID = &actorID
	e.Details = map[string]string{
		"field_id":  fieldID.Hex(),
		"shortname": shortname,
		"datatype":  dataType,
	}
	l.Log(ctx, e)
}

// ProfileFieldDeleted logs removal of a custom profile field and its data.
func (l *Logger) ProfileFieldDeleted(ctx context.Context, r *http.Request, actorID, fieldID primitive.ObjectID) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventProfileFieldDeleted, true)
	e.ActorID = &actorID
	e.Details = map[string]string{"field_id": fieldID.Hex()}
	l.Log(ctx, e)
}

// ProfileCompleted logs a user's save through the completion form.
// The user is both actor and subject.
func (l *Logger) ProfileCompleted(ctx context.Context, r *http.Request, userID primitive.ObjectID, coreCount, customCount int) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventProfileCompleted, true)
	e.UserID = &userID
	e.ActorID = &userID
	e.Details = map[string]string{
		"core_fields":   strconv.Itoa(coreCount),
		"custom_fields": strconv.Itoa(customCount),
	}
	l.Log(ctx, e)
}
