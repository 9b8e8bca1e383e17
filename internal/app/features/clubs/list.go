// internal/app/features/clubs/list.go
package clubs

import (
	"errors"
	"net/http"

	"github.com/dalemusser/clubhub/internal/app/features/shared/clubview"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeList handles GET /api/clubs. Approved clubs only unless
// includePending=1 (or true).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "club list")
	defer cancel()

	v := r.URL.Query().Get("includePending")
	includePending := v == "1" || v == "true"

	clubs, err := h.Store.List(ctx, includePending)
	if err != nil {
		h.Log.Error("club list failed", zap.Error(err))
		clubview.DBError(w, err)
		return
	}
	jsonx.Write(w, http.StatusOK, map[string]any{"clubs": clubview.List(clubs)})
}

// ServeGet handles GET /api/clubs/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "club get")
	defer cancel()

	club, err := h.Store.Get(ctx, id)
	switch {
	case errors.Is(err, clubstore.ErrNotFound):
		jsonx.Error(w, http.StatusNotFound, "not_found")
		return
	case err != nil:
		h.Log.Error("club get failed", zap.Int64("club_id", id), zap.Error(err))
		clubview.DBError(w, err)
		return
	}
	jsonx.Write(w, http.StatusOK, map[string]any{"club": clubview.FromDetail(club)})
}

// ServeAdminList handles GET /api/admin/clubs: every club, any status, with
// president_contact.
func (h *Handler) ServeAdminList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin club list")
	defer cancel()

	clubs, err := h.Store.ListAdmin(ctx)
	if err != nil {
		h.Log.Error("admin club list failed", zap.Error(err))
		clubview.DBError(w, err)
		return
	}
	jsonx.Write(w, http.StatusOK, map[string]any{"clubs": clubview.AdminList(clubs)})
}
