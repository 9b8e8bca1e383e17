// internal/app/system/auth/auth.go
package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
)

// Credentials are the admin secrets a request may carry.
type Credentials struct {
	Code     string `json:"code"`
	CodeHash string `json:"code_hash"`
}

// CredentialsFrom reads X-Admin-Code / X-Admin-Hash, falling back to the JSON
// body fields code / code_hash. The body is restored so the handler can read
// it again.
func CredentialsFrom(r *http.Request) Credentials {
	c := Credentials{
		Code:     r.Header.Get("X-Admin-Code"),
		CodeHash: r.Header.Get("X-Admin-Hash"),
	}
	if (c.Code != "" && c.CodeHash != "") || r.Body == nil || r.Body == http.NoBody {
		return c
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, jsonx.MaxBody))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return c
	}

	var body Credentials
	if json.Unmarshal(raw, &body) == nil {
		if c.Code == "" {
			c.Code = body.Code
		}
		if c.CodeHash == "" {
			c.CodeHash = body.CodeHash
		}
	}
	return c
}

// Authorizer gates admin endpoints.
type Authorizer struct {
	code     AdminCode
	sessions *SessionManager
}

// NewAuthorizer checks requests against code, and against admin sessions when
// sessions is non-nil.
func NewAuthorizer(code AdminCode, sessions *SessionManager) *Authorizer {
	return &Authorizer{code: code, sessions: sessions}
}

// Authorized reports whether r carries an admin session or a matching code.
func (a *Authorizer) Authorized(r *http.Request) (string, bool) {
	if a.sessions.IsAdmin(r) {
		return MethodSession, true
	}
	c := CredentialsFrom(r)
	return a.code.Match(c.Code, c.CodeHash)
}

// RequireAdmin answers 401 {"error":"unauthorized"} unless Authorized.
func (a *Authorizer) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.Authorized(r); !ok {
			jsonx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Code returns the configured admin code for login checks.
func (a *Authorizer) Code() AdminCode { return a.code }

// Sessions returns the session manager, possibly nil.
func (a *Authorizer) Sessions() *SessionManager { return a.sessions }
