// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	auditstore "github.com/purplesmurf1998/crm-api/internal/app/store/audit"
	"github.com/purplesmurf1998/crm-api/internal/app/system/indexes"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"github.com/purplesmurf1998/crm-api/internal/app/system/validators"
	"github.com/purplesmurf1998/crm-api/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and verifies the connection with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("crm-api")
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}
	if appCfg.AuditRetention > 0 {
		deps.AuditRetention = workers.NewAuditRetention(auditstore.New(deps.MongoDatabase), logger, time.Hour, appCfg.AuditRetention)
	}
	return deps, nil
}

// EnsureSchema creates the indexes the stores rely on, then attaches the
// collection validators. Index failures abort startup; validator failures
// are logged because some managed servers do not support collMod.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Warn("collection validators not applied", zap.Error(err))
	}
	return nil
}
