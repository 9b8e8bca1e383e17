// internal/app/features/presidents/handler.go
package presidents

import (
	"context"

	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Upserter stores a validated submission and returns the club id.
type Upserter interface {
	Upsert(ctx context.Context, sub clubstore.Submission) (int64, error)
}

// Handler serves the president submission endpoint.
type Handler struct {
	Store    Upserter
	Limiter  *ratelimit.Limiter
	Password string // shared president password
	Audit    *auditlog.Logger
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

func NewHandler(store Upserter, limiter *ratelimit.Limiter, password string, audit *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Limiter:  limiter,
		Password: password,
		Audit:    audit,
		Metrics:  m,
		Log:      logger,
	}
}
