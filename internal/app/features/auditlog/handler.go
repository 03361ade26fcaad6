// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/profilecompletion/internal/app/features/errors"
	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin audit log page.
type Handler struct {
	Audit  *audit.Store
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an audit log Handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Audit:  audit.New(db),
		Users:  userstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}
