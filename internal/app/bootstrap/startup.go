// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after connections and schema setup, before the handler is
// built. It records the effective settings operators most often ask about.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.AuditRetention != nil {
		deps.AuditRetention.Start()
	}

	t := timeouts.Current()
	logger.Info("clubhub starting",
		zap.String("env", coreCfg.Env),
		zap.String("rate_limit_store", appCfg.RateLimitStore),
		zap.Duration("rate_limit_window", appCfg.RateLimitWindow),
		zap.Int("rate_limit_max_attempts", appCfg.RateLimitMaxAttempts),
		zap.String("audit_log_auth", appCfg.AuditLogAuth),
		zap.String("audit_log_admin", appCfg.AuditLogAdmin),
		zap.String("audit_log_submission", appCfg.AuditLogSubmission),
		zap.Bool("admin_sessions_persist", appCfg.SessionKey != ""),
		zap.Duration("timeout_short", t.Short),
		zap.Duration("timeout_long", t.Long),
	)
	return nil
}
