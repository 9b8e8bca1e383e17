// internal/app/features/clubs/admin.go
package clubs

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/clubhub/internal/app/features/shared/clubview"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.uber.org/zap"
)

// patchRequest carries the admin-editable fields. Absent keys are left alone.
type patchRequest struct {
	Description *string `json:"description"`
	Status      *string `json:"status"`
	WebsiteURL  *string `json:"website_url"`
	MeetingRoom *string `json:"meeting_room"`
}

func (p patchRequest) toPatch() (clubstore.Patch, []string) {
	var out clubstore.Patch
	var changed []string
	if p.Description != nil {
		d := htmlsanitize.PlainText(*p.Description)
		out.Description = &d
		changed = append(changed, "description")
	}
	if p.Status != nil {
		s := strings.TrimSpace(*p.Status)
		out.Status = &s
		changed = append(changed, "status")
	}
	if p.WebsiteURL != nil {
		u := ""
		if n := normalize.WebsiteURL(*p.WebsiteURL); n != nil {
			u = *n
		}
		out.WebsiteURL = &u
		changed = append(changed, "website_url")
	}
	if p.MeetingRoom != nil {
		m := htmlsanitize.PlainText(*p.MeetingRoom)
		out.MeetingRoom = &m
		changed = append(changed, "meeting_room")
	}
	return out, changed
}

// HandlePatch handles PATCH /api/clubs/{id}.
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	var req patchRequest
	if err := jsonx.Decode(w, r, &req); err != nil {
		jsonx.Error(w, http.StatusBadRequest, "bad_request")
		return
	}
	patch, changed := req.toPatch()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "club patch")
	defer cancel()

	if err := h.Store.Patch(ctx, id, patch); err != nil {
		h.mutationFailed(w, id, "patch", err)
		return
	}
	h.Audit.ClubUpdated(ctx, r, id, strings.Join(changed, ","))
	jsonx.OK(w)
}

// HandleDelete handles DELETE /api/clubs/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "club delete")
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		h.mutationFailed(w, id, "delete", err)
		return
	}
	h.Audit.ClubDeleted(ctx, r, id)
	jsonx.OK(w)
}

// HandleApprove handles POST /api/clubs/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.ClubApproved)
}

// HandleReject handles POST /api/clubs/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.ClubRejected)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "club "+status)
	defer cancel()

	if err := h.Store.SetStatus(ctx, id, status); err != nil {
		h.mutationFailed(w, id, status, err)
		return
	}
	if status == models.ClubApproved {
		h.Audit.ClubApproved(ctx, r, id)
	} else {
		h.Audit.ClubRejected(ctx, r, id)
	}
	jsonx.OK(w)
}

func (h *Handler) mutationFailed(w http.ResponseWriter, id int64, op string, err error) {
	switch {
	case errors.Is(err, clubstore.ErrNotFound):
		jsonx.Error(w, http.StatusNotFound, "not_found")
	case errors.Is(err, clubstore.ErrBadStatus):
		jsonx.Error(w, http.StatusBadRequest, "bad_status")
	default:
		h.Log.Error("club "+op+" failed", zap.Int64("club_id", id), zap.Error(err))
		clubview.DBError(w, err)
	}
}
