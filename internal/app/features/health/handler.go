package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger verifies database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB  Pinger
	Log *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// ServeLiveness handles GET /healthz. It never touches the database.
func (h *Handler) ServeLiveness(w http.ResponseWriter, r *http.Request) {
	jsonx.OK(w)
}

// Serve handles GET /health.
//
// On success: 200 {"status":"ok","database":"connected"}
// On DB failure: 503 {"status":"error","database":"disconnected","error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Error("health-check: mysql ping failed", zap.Error(err))
		jsonx.Write(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}
	jsonx.Write(w, http.StatusOK, healthResponse{Status: "ok", Database: "connected"})
}
