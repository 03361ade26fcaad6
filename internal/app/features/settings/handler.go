// internal/app/features/settings/handler.go
package settings

import (
	uierrors "github.com/dalemusser/profilecompletion/internal/app/features/errors"
	profilefieldstore "github.com/dalemusser/profilecompletion/internal/app/store/profilefields"
	settingsstore "github.com/dalemusser/profilecompletion/internal/app/store/settings"
	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin page for the profile completion settings.
type Handler struct {
	Settings *settingsstore.Store
	Fields   *profilefieldstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Settings: settingsstore.New(db),
		Fields:   profilefieldstore.New(db),
		AuditLog: audit,
		Log:      logger,
		ErrLog:   errLog,
	}
}
