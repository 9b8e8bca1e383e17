// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Buckets separate failure counts per protected action.
const (
	BucketAdminLogin = "admin_login"
	BucketPresSubmit = "pres_submit"
)

// Defaults applied when configuration leaves a value unset.
const (
	DefaultWindow      = 10 * time.Minute
	DefaultMaxAttempts = 5
)

// Store counts failed attempts per key over a rolling window.
// Implementations must be safe for concurrent use.
type Store interface {
	// IsLimited reports whether key has reached the attempt limit.
	IsLimited(ctx context.Context, key string) (bool, error)
	// RecordFailure adds one failed attempt for key.
	RecordFailure(ctx context.Context, key string) error
	// Clear forgets every attempt recorded for key.
	Clear(ctx context.Context, key string) error
}

// Key builds the store key for a bucket and client.
func Key(bucket, clientIP string) string {
	return bucket + ":" + clientIP
}

// Limiter applies a Store to HTTP requests. Store errors are logged and the
// request is let through.
type Limiter struct {
	store Store
	log   *zap.Logger
	// OnLimited, when set, is called for every request turned away.
	OnLimited func(bucket string)
}

// NewLimiter wraps store.
func NewLimiter(store Store, logger *zap.Logger) *Limiter {
	return &Limiter{store: store, log: logger}
}

// Limited reports whether the client behind r is over the limit for bucket.
func (l *Limiter) Limited(ctx context.Context, r *http.Request, bucket string) bool {
	key := Key(bucket, ClientIP(r))
	limited, err := l.store.IsLimited(ctx, key)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.String("bucket", bucket), zap.Error(err))
		return false
	}
	if limited && l.OnLimited != nil {
		l.OnLimited(bucket)
	}
	return limited
}

// Fail records a failed attempt for the client behind r.
func (l *Limiter) Fail(ctx context.Context, r *http.Request, bucket string) {
	if err := l.store.RecordFailure(ctx, Key(bucket, ClientIP(r))); err != nil {
		l.log.Warn("rate limit record failed", zap.String("bucket", bucket), zap.Error(err))
	}
}

// Clear resets the client's count after a successful attempt.
func (l *Limiter) Clear(ctx context.Context, r *http.Request, bucket string) {
	if err := l.store.Clear(ctx, Key(bucket, ClientIP(r))); err != nil {
		l.log.Warn("rate limit clear failed", zap.String("bucket", bucket), zap.Error(err))
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	return ip
}
