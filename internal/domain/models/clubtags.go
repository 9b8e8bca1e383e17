// internal/domain/models/clubtags.go
package models

// Categories is the fixed set of category values a club may carry.
var Categories = []string{"competition", "activity", "community", "research", "advocacy", "outreach"}

// MeetingFrequencies lists the accepted meeting_frequency values.
var MeetingFrequencies = []string{"weekly", "biweekly", "monthly", "event"}

// MeetingTimeTypes lists the accepted meeting_time_type values.
var MeetingTimeTypes = []string{"lunch", "after_school"}

// WeekdaySeed is the meeting_days lookup. IDs are stable across installs.
var WeekdaySeed = []MeetingDay{
	{ID: 1, Name: "Monday"},
	{ID: 2, Name: "Tuesday"},
	{ID: 3, Name: "Wednesday"},
	{ID: 4, Name: "Thursday"},
	{ID: 5, Name: "Friday"},
}

// DayID returns the lookup id for a weekday name.
func DayID(name string) (int64, bool) {
	for _, d := range WeekdaySeed {
		if d.Name == name {
			return d.ID, true
		}
	}
	return 0, false
}

// IsCategory reports whether c belongs to Categories.
func IsCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// IsClubStatus reports whether s is a known club status.
func IsClubStatus(s string) bool {
	switch s {
	case ClubPending, ClubApproved, ClubRejected:
		return true
	}
	return false
}
