// internal/app/features/login/handler.go
package login

import (
	"net/http"

	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

type Handler struct {
	Code       auth.AdminCode
	SessionMgr *auth.SessionManager // optional; nil disables the session cookie
	Limiter    *ratelimit.Limiter
	AuditLog   *auditlog.Logger
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

func NewHandler(code auth.AdminCode, sessionMgr *auth.SessionManager, limiter *ratelimit.Limiter, audit *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Code:       code,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		AuditLog:   audit,
		Metrics:    m,
		Log:        logger,
	}
}

// HandleLogin handles POST /api/admin/login.
//
// Body {"code":"…"} or {"code_hash":"<sha256 hex>"}; the X-Admin-Code and
// X-Admin-Hash headers work too. Answers 200 {"ok":true} and sets the admin
// session cookie, 401 {"error":"invalid"}, or 429 {"error":"rate_limited"}.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Limiter.Limited(ctx, r, ratelimit.BucketAdminLogin) {
		h.Metrics.Login(metrics.OutcomeRateLimited)
		h.AuditLog.LoginRateLimited(ctx, r)
		jsonx.Error(w, http.StatusTooManyRequests, "rate_limited")
		return
	}

	creds := auth.CredentialsFrom(r)
	method, ok := h.Code.Match(creds.Code, creds.CodeHash)
	if !ok {
		h.Limiter.Fail(ctx, r, ratelimit.BucketAdminLogin)
		h.Metrics.Login(metrics.OutcomeInvalid)
		h.AuditLog.LoginFailed(ctx, r)
		jsonx.Error(w, http.StatusUnauthorized, "invalid")
		return
	}

	h.Limiter.Clear(ctx, r, ratelimit.BucketAdminLogin)
	if h.SessionMgr != nil {
		if err := h.SessionMgr.SignIn(w, r); err != nil {
			h.Log.Error("admin login: save session", zap.Error(err))
		}
	}
	h.Metrics.Login(metrics.OutcomeOK)
	h.AuditLog.LoginSuccess(ctx, r, method)
	jsonx.OK(w)
}
