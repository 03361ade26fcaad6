// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure with request context and then renders
// the matching error page.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID))
	}
	return fs
}

// LogServerError logs at Error and renders a 500 page with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Error(msg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs at Warn and renders a 400 page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs at Info and renders a 403 page with userMsg.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, userMsg, backURL string) {
	e.log.Info(msg, e.fields(r, nil)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMXLogServerError is LogServerError for endpoints that htmx calls.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Error(msg, e.fields(r, err)...)
	HTMXError(w, r, http.StatusInternalServerError, userMsg, func() {
		RenderServerError(w, r, userMsg, backURL)
	})
}

// HTMXLogBadRequest is LogBadRequest for endpoints that htmx calls.
func (e *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err)...)
	HTMXBadRequest(w, r, userMsg, backURL)
}

// HTMXLogForbidden is LogForbidden for endpoints that htmx calls.
func (e *ErrorLogger) HTMXLogForbidden(w http.ResponseWriter, r *http.Request, msg string, userMsg, backURL string) {
	e.log.Info(msg, e.fields(r, nil)...)
	HTMXForbidden(w, r, userMsg, backURL)
}
