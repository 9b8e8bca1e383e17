// internal/app/system/auth/admincode.go
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Methods reported by AdminCode.Match.
const (
	MethodCode    = "code"
	MethodHash    = "code_hash"
	MethodSession = "session"
)

// AdminCode is the configured admin secret: a plaintext code or a bcrypt hash
// of one.
type AdminCode string

// IsBcrypt reports whether the code is stored as a bcrypt hash. A bcrypt
// code only accepts the plaintext credential; code_hash never matches it.
func (a AdminCode) IsBcrypt() bool {
	s := string(a)
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// Configured reports whether a code is set. An empty code never matches.
func (a AdminCode) Configured() bool { return a != "" }

// Match checks a submitted plaintext code or its SHA-256 hex digest.
// When both are supplied the hash is checked first. The returned method names
// which credential matched.
func (a AdminCode) Match(code, hash string) (string, bool) {
	if !a.Configured() {
		return "", false
	}

	if hash != "" && !a.IsBcrypt() {
		sum := sha256.Sum256([]byte(a))
		want := hex.EncodeToString(sum[:])
		if subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(want)) == 1 {
			return MethodHash, true
		}
	}

	if code != "" {
		if a.IsBcrypt() {
			if bcrypt.CompareHashAndPassword([]byte(a), []byte(code)) == nil {
				return MethodCode, true
			}
		} else if subtle.ConstantTimeCompare([]byte(code), []byte(a)) == 1 {
			return MethodCode, true
		}
	}
	return "", false
}

// Secret compares a submitted shared secret (the president password) in
// constant time. An empty expected secret never matches.
func Secret(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
