// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/audit"
	"github.com/dalemusser/clubhub/internal/app/system/mysqldb"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"github.com/dalemusser/clubhub/internal/app/system/schema"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const auditPruneInterval = time.Hour

// ConnectDB opens the MySQL pool and, when configured, the MongoDB client.
//
// An unreachable MySQL server is logged, not fatal: the server starts and
// DB-backed endpoints answer db_error until the database comes back.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// First hook that does I/O; every deadline below uses the configured tiers.
	timeouts.Configure(appCfg.Timeouts)

	deps := DBDeps{Metrics: metrics.New()}

	dsn, err := mysqldb.DSN(appCfg.mysqlParams())
	if err != nil {
		return deps, err
	}
	db, err := mysqldb.Open(dsn, appCfg.MySQLMaxOpenConns)
	if err != nil {
		return deps, err
	}
	deps.DB = db

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := mysqldb.Ping(pingCtx, db); err != nil {
		logger.Error("MySQL unreachable; continuing without it", zap.Error(err))
	} else {
		logger.Info("connected to MySQL",
			zap.String("database", appCfg.MySQLDatabase),
			zap.Int("max_open_conns", appCfg.MySQLMaxOpenConns))
	}

	if appCfg.AuditRetention > 0 && appCfg.auditStoreNeeded() {
		deps.AuditRetention = workers.NewAuditRetention(audit.New(db), logger, auditPruneInterval, appCfg.AuditRetention)
	}

	if appCfg.RateLimitStore == "mongo" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
		if err != nil {
			_ = db.Close()
			return deps, fmt.Errorf("connect MongoDB: %w", err)
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		logger.Info("MongoDB rate-limit store enabled", zap.String("database", appCfg.MongoDatabase))
	}

	return deps, nil
}

// EnsureSchema reconciles the MySQL schema and the MongoDB rate-limit
// indexes. Failures are logged and never stop startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	rctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	rep, err := schema.New(deps.DB, logger).WithObserver(deps.Metrics.SchemaStep).Run(rctx)
	switch {
	case err != nil:
		logger.Error("schema reconcile stopped; DB-backed endpoints may fail until it succeeds", zap.Error(err))
	case !rep.OK():
		logger.Warn("schema reconcile incomplete; will retry on next start",
			zap.Strings("applied", rep.Applied),
			zap.Strings("deferred", rep.Deferred),
			zap.Strings("failed", rep.Failed))
	default:
		logger.Info("schema up to date",
			zap.Strings("applied", rep.Applied),
			zap.Int("already_applied", len(rep.Skipped)))
	}

	if deps.MongoDatabase != nil {
		store := ratelimit.NewMongoStore(deps.MongoDatabase, appCfg.RateLimitWindow, appCfg.RateLimitMaxAttempts)
		if err := store.EnsureIndexes(rctx); err != nil {
			logger.Error("rate-limit index setup failed", zap.Error(err))
		}
	}
	return nil
}
