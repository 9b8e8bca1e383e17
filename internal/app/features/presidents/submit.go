// internal/app/features/presidents/submit.go
package presidents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/clubhub/internal/app/features/shared/clubview"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/dberr"
	"github.com/dalemusser/clubhub/internal/app/system/inputval"
	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// defaultSubject fills the legacy subject column when no field is given.
const defaultSubject = "Other"

// toSubmission turns a cleaned, checked request into what the store persists.
func toSubmission(req inputval.SubmitRequest) clubstore.Submission {
	fields := normalize.Labels(req.Fields)
	subject := defaultSubject
	if len(fields) > 0 {
		subject = fields[0]
	}

	cats := make([]string, 0, len(req.Categories))
	for _, c := range normalize.Labels(req.Categories) {
		cats = append(cats, strings.ToLower(c))
	}

	sub := clubstore.Submission{
		Name:             req.ClubName,
		Subject:          subject,
		MeetingFrequency: req.MeetingFrequency,
		MeetingTimeType:  req.MeetingTimeType,
		MeetingTimeRange: req.MeetingTimeRange,
		MeetingRoom:      req.MeetingRoom,
		OpenToAll:        bool(req.OpenToAll),
		PrereqRequired:   bool(req.PrereqRequired),
		Description:      req.Description,
		VolunteerHours:   bool(req.VolunteerHours),
		WebsiteURL:       normalize.WebsiteURL(req.WebsiteURL),
		PresidentContact: normalize.Optional(req.PresidentContact),
		MeetingDays:      normalize.Labels(req.MeetingDays),
		Subfields:        normalize.Labels(req.Subfields),
		Categories:       cats,
		Fields:           fields,
	}
	if sub.PrereqRequired {
		sub.Prerequisites = req.Prerequisites
	}
	return sub
}

// HandleSubmit handles POST /api/presidents/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "president submit")
	defer cancel()

	if h.Limiter.Limited(ctx, r, ratelimit.BucketPresSubmit) {
		h.Metrics.Submission(metrics.OutcomeRateLimited)
		h.Audit.SubmitRateLimited(ctx, r)
		jsonx.Error(w, http.StatusTooManyRequests, "rate_limited")
		return
	}

	var req inputval.SubmitRequest
	if err := jsonx.Decode(w, r, &req); err != nil {
		h.Metrics.Submission(metrics.OutcomeInvalid)
		jsonx.Error(w, http.StatusBadRequest, "bad_request")
		return
	}

	if !auth.Secret(h.Password, req.PresidentPassword) {
		h.Limiter.Fail(ctx, r, ratelimit.BucketPresSubmit)
		h.Metrics.Submission(metrics.OutcomeBadPassword)
		h.Audit.SubmitBadPassword(ctx, r)
		jsonx.Write(w, http.StatusUnauthorized, map[string]any{
			"error":  "unauthorized",
			"reason": "bad_president_password",
		})
		return
	}
	h.Limiter.Clear(ctx, r, ratelimit.BucketPresSubmit)

	req.Clean()
	if missing := inputval.MissingFields(&req); len(missing) > 0 {
		h.Metrics.Submission(metrics.OutcomeInvalid)
		jsonx.Write(w, http.StatusBadRequest, map[string]any{"error": "missing_required", "fields": missing})
		return
	}
	if n := inputval.WordCount(req.Description); n > inputval.MaxDescriptionWords {
		h.Metrics.Submission(metrics.OutcomeTooLong)
		jsonx.Write(w, http.StatusBadRequest, map[string]any{"error": "desc_too_long", "words": n})
		return
	}

	sub := toSubmission(req)
	id, err := h.Store.Upsert(ctx, sub)
	switch {
	case errors.Is(err, clubstore.ErrConflict):
		h.Log.Warn("submission conflict", zap.String("club", sub.Name), zap.Error(err))
		h.Metrics.Submission(metrics.OutcomeConflict)
		jsonx.Error(w, http.StatusConflict, "duplicate_name")
		return
	case err != nil:
		h.Log.Error("submission failed", zap.String("club", sub.Name), zap.Error(err))
		h.Metrics.Submission(metrics.OutcomeDBError)
		h.Audit.SubmitStorageFailed(ctx, r, sub.Name, dberr.Code(err))
		clubview.DBError(w, err)
		return
	}

	h.Metrics.Submission(metrics.OutcomeOK)
	h.Audit.ClubSubmitted(ctx, r, id, sub.Name)
	jsonx.Write(w, http.StatusOK, map[string]any{"ok": true, "club_id": id})
}
