// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /api/admin/logout. It always answers
// {"ok":true}; a request without a session just gets an expired cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if h.SessionMgr != nil {
		wasAdmin := h.SessionMgr.IsAdmin(r)
		if err := h.SessionMgr.SignOut(w, r); err != nil {
			h.Log.Error("logout: save session", zap.Error(err))
		}
		if wasAdmin {
			h.AuditLog.Logout(r.Context(), r)
		}
	}
	jsonx.OK(w)
}
