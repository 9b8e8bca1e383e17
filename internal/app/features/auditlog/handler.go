// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/dalemusser/clubhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Querier is the read side of the audit store.
type Querier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int, error)
}

type Handler struct {
	Store Querier
	Log   *zap.Logger
}

// NewHandler constructs the admin audit feed handler.
func NewHandler(store Querier, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Log: logger}
}
