// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	auditfeature "github.com/dalemusser/clubhub/internal/app/features/auditlog"
	clubsfeature "github.com/dalemusser/clubhub/internal/app/features/clubs"
	healthfeature "github.com/dalemusser/clubhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/clubhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/clubhub/internal/app/features/logout"
	presidentsfeature "github.com/dalemusser/clubhub/internal/app/features/presidents"
	auditstore "github.com/dalemusser/clubhub/internal/app/store/audit"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	metricsstore "github.com/dalemusser/clubhub/internal/app/store/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for clubhub.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionMaxAge,
		coreCfg.Env == "prod",
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	authorizer := auth.NewAuthorizer(auth.AdminCode(appCfg.AdminCode), sessionMgr)

	var failures ratelimit.Store
	if deps.MongoDatabase != nil {
		failures = ratelimit.NewMongoStore(deps.MongoDatabase, appCfg.RateLimitWindow, appCfg.RateLimitMaxAttempts)
	} else {
		failures = ratelimit.NewMemoryStore(appCfg.RateLimitWindow, appCfg.RateLimitMaxAttempts)
	}
	limiter := ratelimit.NewLimiter(failures, logger)
	limiter.OnLimited = deps.Metrics.RateLimited

	// A nil *auditstore.Store inside the interface would not compare nil.
	var recorder auditlog.Recorder
	if appCfg.auditStoreNeeded() {
		recorder = auditstore.New(deps.DB)
	}
	auditLogger := auditlog.New(recorder, logger, appCfg.auditConfig())

	clubs := clubstore.New(deps.DB)
	deps.Metrics.WatchDirectory(func(ctx context.Context) map[string]int64 {
		return metricsstore.FetchCounts(ctx, deps.DB).ByStatus()
	}, timeouts.Short())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Health checks (liveness and database)
	healthfeature.Mount(r, healthfeature.NewHandler(clubs, logger))

	// Prometheus scrape endpoint
	r.Handle("/metrics", deps.Metrics.Handler())

	// Static assets (front-end bundle)
	if appCfg.PublicDir != "" {
		r.Handle("/static/*", fileserver.Handler("/static", appCfg.PublicDir))
	}

	// Public directory reads; moderation writes behind the admin check
	clubsHandler := clubsfeature.NewHandler(clubs, auditLogger, logger)
	r.Mount("/api/clubs", clubsfeature.Routes(clubsHandler, authorizer.RequireAdmin))

	// President submissions (shared password, rate limited)
	presidentsHandler := presidentsfeature.NewHandler(clubs, limiter, appCfg.PresidentPassword, auditLogger, deps.Metrics, logger)
	r.Mount("/api/presidents", presidentsfeature.Routes(presidentsHandler))

	// Admin session
	loginHandler := loginfeature.NewHandler(authorizer.Code(), sessionMgr, limiter, auditLogger, deps.Metrics, logger)
	r.Mount("/api/admin/login", loginfeature.Routes(loginHandler))
	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/api/admin/logout", logoutfeature.Routes(logoutHandler))

	// Admin views
	r.Mount("/api/admin/clubs", clubsfeature.AdminRoutes(clubsHandler, authorizer.RequireAdmin))
	auditHandler := auditfeature.NewHandler(auditstore.New(deps.DB), logger)
	r.Mount("/api/admin/audit", auditfeature.Routes(auditHandler, authorizer.RequireAdmin))

	return r, nil
}
