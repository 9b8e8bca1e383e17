// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/clubhub/internal/app/store/audit"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destinations for audit events.
const (
	ModeAll = "all" // database + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// ValidMode reports whether m is a recognised destination.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Recorder persists audit events. *audit.Store satisfies it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Config holds audit logging configuration, one destination per category.
type Config struct {
	Auth       string
	Admin      string
	Submission string
}

// Uniform applies one destination to every category.
func Uniform(mode string) Config {
	return Config{Auth: mode, Admin: mode, Submission: mode}
}

// Logger provides convenience methods for logging audit events.
// It logs to the audit_events table (via Recorder) and to zap.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case database
// destinations are skipped.
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ClubID != nil {
		fields = append(fields, zap.Int64("club_id", *event.ClubID))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategorySubmission:
		setting = l.config.Submission
	default:
		setting = ModeAll
	}

	if setting == ModeOff || setting == "" {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful admin login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, method string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"method": method},
	})
}

// LoginFailed logs a rejected admin code.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginFailed,
		IP:        ratelimit.ClientIP(r),
	})
}

// LoginRateLimited logs an admin login turned away by the limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginFailedRateLimit,
		IP:        ratelimit.ClientIP(r),
	})
}

// Logout logs the end of an admin session.
func (l *Logger) Logout(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
	})
}

// --- Admin Events ---

func (l *Logger) clubEvent(ctx context.Context, r *http.Request, eventType string, clubID int64, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ClubID:    &clubID,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
		Details:   details,
	})
}

// ClubUpdated logs an admin patch; fieldsChanged is a comma-separated list.
func (l *Logger) ClubUpdated(ctx context.Context, r *http.Request, clubID int64, fieldsChanged string) {
	l.clubEvent(ctx, r, audit.EventClubUpdated, clubID, map[string]string{"fields_changed": fieldsChanged})
}

// ClubDeleted logs an admin delete.
func (l *Logger) ClubDeleted(ctx context.Context, r *http.Request, clubID int64) {
	l.clubEvent(ctx, r, audit.EventClubDeleted, clubID, nil)
}

// ClubApproved logs an approval.
func (l *Logger) ClubApproved(ctx context.Context, r *http.Request, clubID int64) {
	l.clubEvent(ctx, r, audit.EventClubApproved, clubID, nil)
}

// ClubRejected logs a rejection.
func (l *Logger) ClubRejected(ctx context.Context, r *http.Request, clubID int64) {
	l.clubEvent(ctx, r, audit.EventClubRejected, clubID, nil)
}

// --- Submission Events ---

// ClubSubmitted logs a stored president submission.
func (l *Logger) ClubSubmitted(ctx context.Context, r *http.Request, clubID int64, name string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySubmission,
		EventType: audit.EventClubSubmitted,
		ClubID:    &clubID,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"name": name},
	})
}

// SubmitBadPassword logs a submission with the wrong president password.
func (l *Logger) SubmitBadPassword(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySubmission,
		EventType: audit.EventSubmitBadPassword,
		IP:        ratelimit.ClientIP(r),
	})
}

// SubmitRateLimited logs a submission turned away by the limiter.
func (l *Logger) SubmitRateLimited(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySubmission,
		EventType: audit.EventSubmitRateLimited,
		IP:        ratelimit.ClientIP(r),
	})
}

// SubmitStorageFailed logs a submission the database refused.
func (l *Logger) SubmitStorageFailed(ctx context.Context, r *http.Request, name string, mysqlCode uint16) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySubmission,
		EventType: audit.EventSubmitStorageFailed,
		IP:        ratelimit.ClientIP(r),
		Details: map[string]string{
			"name":       name,
			"mysql_code": strconv.Itoa(int(mysqlCode)),
		},
	})
}
