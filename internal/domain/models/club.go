// internal/domain/models/club.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Club status values. Submissions publish immediately as ClubApproved;
// pending and rejected are set by admins.
const (
	ClubPending  = "pending"
	ClubApproved = "approved"
	ClubRejected = "rejected"
)

// Club is a row in the clubs table. Tag sets live in the link tables and are
// attached by the store when a club is read.
type Club struct {
	bun.BaseModel `bun:"table:clubs"`

	ID               int64     `bun:"id,pk,autoincrement"`
	Name             string    `bun:"name,notnull"`
	Subject          string    `bun:"subject"`
	MeetingFrequency string    `bun:"meeting_frequency"`
	MeetingTimeType  string    `bun:"meeting_time_type"`
	MeetingTimeRange string    `bun:"meeting_time_range"`
	MeetingRoom      string    `bun:"meeting_room"`
	OpenToAll        bool      `bun:"open_to_all"`
	PrereqRequired   bool      `bun:"prereq_required"`
	Prerequisites    string    `bun:"prerequisites"`
	Description      string    `bun:"description"`
	VolunteerHours   bool      `bun:"volunteer_hours"`
	Status           string    `bun:"status"`
	WebsiteURL       *string   `bun:"website_url"`
	PresidentContact *string   `bun:"president_contact"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
	UpdatedAt        time.Time `bun:"updated_at,notnull"`
}

// MeetingDay is a row of the fixed weekday lookup.
type MeetingDay struct {
	bun.BaseModel `bun:"table:meeting_days"`

	ID   int64  `bun:"id,pk"`
	Name string `bun:"name,notnull,unique"`
}

// Subfield is a free-text STEM sub-tag shared across clubs.
type Subfield struct {
	bun.BaseModel `bun:"table:subfields"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Label string `bun:"label,notnull,unique"`
}

// ClubSubfield links a club to a subfield.
type ClubSubfield struct {
	bun.BaseModel `bun:"table:club_subfields"`

	ClubID     int64 `bun:"club_id,pk"`
	SubfieldID int64 `bun:"subfield_id,pk"`
}

// ClubMeetingDay links a club to a meeting_days row.
type ClubMeetingDay struct {
	bun.BaseModel `bun:"table:club_meeting_days"`

	ClubID int64 `bun:"club_id,pk"`
	DayID  int64 `bun:"day_id,pk"`
}

// ClubCategory tags a club with one of the allowed categories.
type ClubCategory struct {
	bun.BaseModel `bun:"table:club_categories"`

	ClubID   int64  `bun:"club_id,pk"`
	Category string `bun:"category,pk"`
}

// ClubField tags a club with a field of study. It supersedes clubs.subject.
type ClubField struct {
	bun.BaseModel `bun:"table:club_fields"`

	ClubID     int64  `bun:"club_id,pk"`
	FieldLabel string `bun:"field_label,pk"`
}
