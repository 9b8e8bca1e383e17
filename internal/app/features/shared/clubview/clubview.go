// Package clubview renders clubs and database failures as API JSON.
package clubview

import (
	"net/http"

	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/dberr"
	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
)

// Club is the public JSON shape of a club.
type Club struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Subject          string   `json:"subject"`
	MeetingTimeType  string   `json:"meeting_time_type"`
	MeetingTimeRange string   `json:"meeting_time_range"`
	MeetingFrequency string   `json:"meeting_frequency"`
	PrereqRequired   bool     `json:"prereq_required"`
	Prerequisites    string   `json:"prerequisites"`
	Description      string   `json:"description"`
	OpenToAll        bool     `json:"open_to_all"`
	VolunteerHours   bool     `json:"volunteer_hours"`
	Status           string   `json:"status"`
	WebsiteURL       *string  `json:"website_url"`
	MeetingRoom      string   `json:"meeting_room"`
	Subfield         []string `json:"subfield"`
	MeetingDays      []string `json:"meeting_days"`
	Categories       []string `json:"categories"`
	Fields           []string `json:"fields"`
}

// AdminClub adds the contact details only admins see.
type AdminClub struct {
	Club
	PresidentContact *string `json:"president_contact"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FromDetail converts a stored club.
func FromDetail(d clubstore.Detail) Club {
	var site *string
	if d.WebsiteURL != nil && *d.WebsiteURL != "" {
		site = d.WebsiteURL
	}
	return Club{
		ID:               d.ID,
		Name:             d.Name,
		Subject:          d.Subject,
		MeetingTimeType:  d.MeetingTimeType,
		MeetingTimeRange: d.MeetingTimeRange,
		MeetingFrequency: d.MeetingFrequency,
		PrereqRequired:   d.PrereqRequired,
		Prerequisites:    d.Prerequisites,
		Description:      d.Description,
		OpenToAll:        d.OpenToAll,
		VolunteerHours:   d.VolunteerHours,
		Status:           d.Status,
		WebsiteURL:       site,
		MeetingRoom:      d.MeetingRoom,
		Subfield:         nonNil(d.Subfields),
		MeetingDays:      nonNil(d.MeetingDays),
		Categories:       nonNil(d.Categories),
		Fields:           nonNil(d.Fields),
	}
}

// List converts a slice of stored clubs; the result is never nil.
func List(ds []clubstore.Detail) []Club {
	out := make([]Club, 0, len(ds))
	for _, d := range ds {
		out = append(out, FromDetail(d))
	}
	return out
}

// AdminList is List plus president_contact.
func AdminList(ds []clubstore.Detail) []AdminClub {
	out := make([]AdminClub, 0, len(ds))
	for _, d := range ds {
		var contact *string
		if d.PresidentContact != nil && *d.PresidentContact != "" {
			contact = d.PresidentContact
		}
		out = append(out, AdminClub{Club: FromDetail(d), PresidentContact: contact})
	}
	return out
}

type dbError struct {
	Error string `json:"error"`
	dberr.Diagnostics
}

// DBError writes 500 {"error":"db_error"} with any MySQL code and message
// found in err.
func DBError(w http.ResponseWriter, err error) {
	jsonx.Write(w, http.StatusInternalServerError, dbError{Error: "db_error", Diagnostics: dberr.Diagnose(err)})
}
