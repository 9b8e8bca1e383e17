// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Event categories
const (
	CategoryAuth       = "auth"
	CategoryAdmin      = "admin"
	CategorySubmission = "submission"
)

// Auth event types
const (
	EventLoginSuccess         = "login_success"
	EventLoginFailed          = "login_failed"
	EventLoginFailedRateLimit = "login_failed_rate_limit"
	EventLogout               = "logout"
)

// Admin event types
const (
	EventClubUpdated  = "club_updated"
	EventClubDeleted  = "club_deleted"
	EventClubApproved = "club_approved"
	EventClubRejected = "club_rejected"
)

// Submission event types
const (
	EventClubSubmitted       = "club_submitted"
	EventSubmitBadPassword   = "submit_bad_password"
	EventSubmitRateLimited   = "submit_rate_limited"
	EventSubmitStorageFailed = "submit_storage_failed"
)

// Event is an audit event.
type Event = models.AuditEvent

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	ClubID    *int64
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// Store manages audit event records.
type Store struct {
	db bun.IDB
}

// New creates a new audit Store.
func New(db bun.IDB) *Store {
	return &Store{db: db}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().Model(&event).Exec(ctx)
	return err
}

func (f QueryFilter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if f.ClubID != nil {
		q = q.Where("club_id = ?", *f.ClubID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.EventType != "" {
		q = q.Where("event_type = ?", f.EventType)
	}
	if f.StartTime != nil {
		q = q.Where("occurred_at >= ?", *f.StartTime)
	}
	if f.EndTime != nil {
		q = q.Where("occurred_at <= ?", *f.EndTime)
	}
	return q
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var events []Event
	q := s.db.NewSelect().Model(&events)
	q = filter.apply(q).
		OrderExpr("occurred_at DESC, id ASC").
		Limit(limit).
		Offset(filter.Offset)
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int, error) {
	q := s.db.NewSelect().Model((*Event)(nil))
	return filter.apply(q).Count(ctx)
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}

// DeleteBefore removes events that occurred before cutoff and returns how
// many were removed.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*Event)(nil)).
		Where("occurred_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
