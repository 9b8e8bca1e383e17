// internal/app/system/jsonx/jsonx.go
package jsonx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBody caps request bodies read by Decode.
const MaxBody = 1 << 20

// Write writes payload as JSON with status.
func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes {"error": code}.
func Error(w http.ResponseWriter, status int, code string) {
	Write(w, status, map[string]any{"error": code})
}

// OK writes {"ok": true}.
func OK(w http.ResponseWriter) {
	Write(w, http.StatusOK, map[string]any{"ok": true})
}

// Decode reads a JSON object from r into dst. An empty body decodes to the
// zero value.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBody))
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
