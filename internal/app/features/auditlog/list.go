// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/audit"
	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
	"github.com/dalemusser/clubhub/internal/app/system/paging"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type listResponse struct {
	Events     []audit.Event `json:"events"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
}

// filterFrom reads category, event_type, club_id, start_date, end_date and
// page from the query string. Unparseable values are ignored.
func filterFrom(r *http.Request) (audit.QueryFilter, paging.Page) {
	q := r.URL.Query()
	page := paging.Parse(r, paging.PageSize)
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     page.Size,
		Offset:    page.Offset(),
	}

	if id, err := strconv.ParseInt(q.Get("club_id"), 10, 64); err == nil {
		filter.ClubID = &id
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("start_date"))); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("end_date"))); err == nil {
		// End of day
		end := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &end
	}
	return filter, page
}

// ServeList handles GET /api/admin/audit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit list")
	defer cancel()

	filter, page := filterFrom(r)

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		jsonx.Error(w, http.StatusInternalServerError, "db_error")
		return
	}
	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		jsonx.Error(w, http.StatusInternalServerError, "db_error")
		return
	}

	if events == nil {
		events = []audit.Event{}
	}
	jsonx.Write(w, http.StatusOK, listResponse{
		Events:     events,
		Page:       page.Number,
		TotalPages: page.TotalPages(total),
		Total:      total,
	})
}
