// internal/domain/models/audit.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AuditEvent is a row in audit_events.
type AuditEvent struct {
	bun.BaseModel `bun:"table:audit_events"`

	ID         string            `bun:"id,pk"          json:"id"`
	OccurredAt time.Time         `bun:"occurred_at"    json:"occurred_at"`
	Category   string            `bun:"category"       json:"category"`
	EventType  string            `bun:"event_type"     json:"event_type"`
	ClubID     *int64            `bun:"club_id"        json:"club_id,omitempty"`
	IP         string            `bun:"ip"             json:"ip"`
	Success    bool              `bun:"success"        json:"success"`
	Details    map[string]string `bun:"details"        json:"details,omitempty"` // stored as a JSON object
}
