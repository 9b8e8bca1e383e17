// internal/app/system/dberr/dberr.go
package dberr

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the app reacts to.
const (
	ErDupEntry           = 1062
	ErDupKeyName         = 1061
	ErCantDropFieldOrKey = 1091
	ErLockDeadlock       = 1213
	ErMultiplePriKey     = 1068
)

// Code returns the MySQL error number wrapped in err, or 0.
func Code(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsDuplicate reports a unique-key violation.
// Falls back to the message text for errors that lost their type in wrapping.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if Code(err) == ErDupEntry {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}

// DuplicateKey returns the index named by a unique-key violation, without
// any "table." prefix, or "" when err is not one.
func DuplicateKey(err error) string {
	if !IsDuplicate(err) {
		return ""
	}
	msg := err.Error()
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		msg = me.Message
	}
	const marker = "for key '"
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	key, _, ok := strings.Cut(msg[i+len(marker):], "'")
	if !ok {
		return ""
	}
	if j := strings.LastIndex(key, "."); j >= 0 {
		key = key[j+1:]
	}
	return key
}

// IsDeadlock reports a deadlock victim error.
func IsDeadlock(err error) bool {
	return Code(err) == ErLockDeadlock
}

// IsMissingKey reports a DROP INDEX on an index that does not exist.
func IsMissingKey(err error) bool {
	return Code(err) == ErCantDropFieldOrKey
}

// Diagnostics is the engine-reported detail attached to db_error responses.
type Diagnostics struct {
	Code    uint16 `json:"mysql_code,omitempty"`
	Message string `json:"mysql_message,omitempty"`
}

// Diagnose extracts engine diagnostics from err. Non-MySQL errors yield zero
// Diagnostics so driver internals are not echoed to clients.
func Diagnose(err error) Diagnostics {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return Diagnostics{Code: me.Number, Message: me.Message}
	}
	return Diagnostics{}
}
