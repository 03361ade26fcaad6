// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/profilecompletion/internal/app/resources"
	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"github.com/dalemusser/profilecompletion/internal/app/system/authutil"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	logger.Info("handler timeouts", timeouts.Fields()...)

	resources.LoadSharedTemplates()

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin creates or promotes the configured admin account. With a
// password it is a password account; without one it signs in with Google.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	email = strings.TrimSpace(email)
	method := models.AuthMethodGoogle
	hash := ""
	if password != "" {
		if err := authutil.ValidatePassword(password); err != nil {
			return fmt.Errorf("admin_password: %w", err)
		}
		h, err := authutil.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		method, hash = models.AuthMethodPassword, h
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	created, err := userstore.New(deps.MongoDatabase).EnsureAdmin(ctx, email, method, hash)
	if err != nil {
		logger.Error("ensure admin failed", zap.Error(err), zap.String("login_id", email))
		return fmt.Errorf("ensure admin %q: %w", email, err)
	}
	if created {
		logger.Info("created admin account", zap.String("login_id", email), zap.String("auth_method", method))
	} else {
		logger.Info("admin account ensured", zap.String("login_id", email), zap.String("auth_method", method))
	}
	return nil
}
