// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	userstore "github.com/purplesmurf1998/crm-api/internal/app/store/users"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs after the schema is in place and before the HTTP server
// starts. It applies the configured timeouts, seeds the admin account and
// starts the audit retention worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg, logger); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}

	if deps.AuditRetention != nil {
		deps.AuditRetention.Start()
	}
	return nil
}

// ensureAdmin promotes the user with appCfg.AdminEmail to admin, creating
// the account when no user has that email.
func ensureAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)
	email := strings.TrimSpace(appCfg.AdminEmail)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == models.RoleAdmin {
			logger.Debug("admin user already present", zap.String("email", email))
			return nil
		}
		if err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return err
		}
		logger.Info("promoted user to admin", zap.String("email", email), zap.String("previous_role", u.Role))
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return err
	}

	hash, err := auth.HashPassword(appCfg.AdminPassword)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(appCfg.AdminName)
	if name == "" {
		name = "Administrator"
	}
	created, err := users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         models.RoleAdmin,
		Privileges:   []string{models.PrivilegeAll},
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	logger.Info("created admin user", zap.String("email", email), zap.String("id", created.ID.Hex()))
	return nil
}
