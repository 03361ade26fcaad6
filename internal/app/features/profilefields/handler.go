// internal/app/features/profilefields/handler.go
package profilefields

import (
	uierrors "github.com/dalemusser/profilecompletion/internal/app/features/errors"
	profilefieldstore "github.com/dalemusser/profilecompletion/internal/app/store/profilefields"
	"github.com/dalemusser/profilecompletion/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BasePath is where the catalog admin is mounted.
const BasePath = "/profile-fields"

// Handler manages the catalog of custom profile fields.
type Handler struct {
	Fields   *profilefieldstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Fields:   profilefieldstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
