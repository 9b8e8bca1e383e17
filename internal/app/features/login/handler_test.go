package login_test

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/clubhub/internal/app/features/login"
	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const adminCode = "letmein"

func newTestHandler(t *testing.T) (http.Handler, *auth.SessionManager, *observer.ObservedLogs) {
	t.Helper()
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	core, logs := observer.New(zap.InfoLevel)
	audit := auditlog.New(nil, zap.New(core), auditlog.Uniform(auditlog.ModeLog))
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(time.Minute, 3), logger)

	h := login.NewHandler(auth.AdminCode(adminCode), sessionMgr, limiter, audit, metrics.New(), logger)
	return login.Routes(h), sessionMgr, logs
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin_PlaintextCode(t *testing.T) {
	h, sm, logs := newTestHandler(t)

	rec := post(h, `{"code":"letmein"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.String() != "{\"ok\":true}\n" {
		t.Errorf("body = %q", rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	follow := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		follow.AddCookie(c)
	}
	if !sm.IsAdmin(follow) {
		t.Error("session cookie should mark the caller as admin")
	}
	if logs.FilterField(zap.String("event_type", "login_success")).Len() != 1 {
		t.Error("expected a login_success audit entry")
	}
}

func TestHandleLogin_HashedCode(t *testing.T) {
	h, _, _ := newTestHandler(t)
	sum := sha256.Sum256([]byte(adminCode))

	rec := post(h, `{"code_hash":"`+hex.EncodeToString(sum[:])+`"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestHandleLogin_InvalidThenRateLimited(t *testing.T) {
	h, _, logs := newTestHandler(t)

	for i := 0; i < 3; i++ {
		rec := post(h, `{"code":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: got %d, want 401", i+1, rec.Code)
		}
		if rec.Body.String() != "{\"error\":\"invalid\"}\n" {
			t.Errorf("body = %q", rec.Body.String())
		}
	}

	// Even the right code is refused once the window is full.
	rec := post(h, `{"code":"letmein"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", rec.Code)
	}
	if logs.FilterField(zap.String("event_type", "login_failed_rate_limit")).Len() != 1 {
		t.Error("expected a rate-limit audit entry")
	}
}

func TestHandleLogin_SuccessClearsFailures(t *testing.T) {
	h, _, _ := newTestHandler(t)

	post(h, `{"code":"wrong"}`)
	post(h, `{"code":"wrong"}`)
	if rec := post(h, `{"code":"letmein"}`); rec.Code != http.StatusOK {
		t.Fatalf("login: got %d", rec.Code)
	}
	// Counter was reset, so three more failures are allowed before 429.
	for i := 0; i < 3; i++ {
		if rec := post(h, `{"code":"wrong"}`); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d after reset: got %d", i+1, rec.Code)
		}
	}
}

func TestHandleLogin_EmptyBody(t *testing.T) {
	h, _, _ := newTestHandler(t)
	req := httptest.NewRequest("POST", "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
