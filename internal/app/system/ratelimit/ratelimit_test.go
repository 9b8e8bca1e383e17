package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"x-forwarded-for first entry", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"x-real-ip", "", " 198.51.100.7 ", "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr with port", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", "", "", "192.0.2.1", "192.0.2.1"},
		{"nothing", "", "", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLimiter_FailThenLimited(t *testing.T) {
	var limitedBuckets []string
	l := NewLimiter(NewMemoryStore(time.Minute, 2), zap.NewNop())
	l.OnLimited = func(b string) { limitedBuckets = append(limitedBuckets, b) }

	ctx := context.Background()
	r := httptest.NewRequest("POST", "/api/admin/login", nil)
	r.RemoteAddr = "192.0.2.9:4000"

	l.Fail(ctx, r, BucketAdminLogin)
	if l.Limited(ctx, r, BucketAdminLogin) {
		t.Fatal("one failure must not limit")
	}
	l.Fail(ctx, r, BucketAdminLogin)
	if !l.Limited(ctx, r, BucketAdminLogin) {
		t.Fatal("two failures must limit")
	}
	if len(limitedBuckets) != 1 || limitedBuckets[0] != BucketAdminLogin {
		t.Errorf("OnLimited calls: %v", limitedBuckets)
	}

	l.Clear(ctx, r, BucketAdminLogin)
	if l.Limited(ctx, r, BucketAdminLogin) {
		t.Error("Clear should lift the limit")
	}
}

type brokenStore struct{}

func (brokenStore) IsLimited(context.Context, string) (bool, error) { return true, errors.New("down") }
func (brokenStore) RecordFailure(context.Context, string) error     { return errors.New("down") }
func (brokenStore) Clear(context.Context, string) error             { return errors.New("down") }

func TestLimiter_StoreErrorsLetRequestsThrough(t *testing.T) {
	l := NewLimiter(brokenStore{}, zap.NewNop())
	r := httptest.NewRequest("POST", "/", nil)
	if l.Limited(context.Background(), r, BucketPresSubmit) {
		t.Error("store errors must not block requests")
	}
	l.Fail(context.Background(), r, BucketPresSubmit)
	l.Clear(context.Background(), r, BucketPresSubmit)
}
