// Package inputval decodes and validates the president submission payload.
package inputval

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/dalemusser/clubhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// MaxDescriptionWords is the description ceiling enforced at submission.
const MaxDescriptionWords = 200

// Bool accepts a JSON boolean, a number, or a string such as "true".
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = false
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes", "on":
			*b = true
		default:
			*b = false
		}
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*b = f != 0
	default:
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = Bool(v)
	}
	return nil
}

// SubmitRequest is the body of POST /api/presidents/submit. Field order
// matters: MissingFields reports names in declaration order.
type SubmitRequest struct {
	PresidentPassword string `json:"president_submit_password"`

	ClubName         string   `json:"club_name" validate:"required"`
	MeetingFrequency string   `json:"meeting_frequency" validate:"required,meeting_frequency"`
	MeetingTimeType  string   `json:"meeting_time_type" validate:"required,meeting_time_type"`
	MeetingDays      []string `json:"meeting_days" validate:"min=1"`
	MeetingTimeRange string   `json:"meeting_time_range" validate:"required_if=MeetingTimeType after_school"`
	MeetingRoom      string   `json:"meeting_room" validate:"required"`

	Fields           []string `json:"fields"`
	Subfields        []string `json:"subfields"`
	Categories       []string `json:"categories"`
	OpenToAll        Bool     `json:"open_to_all"`
	PrereqRequired   Bool     `json:"prereq_required"`
	Prerequisites    string   `json:"prerequisites"`
	Description      string   `json:"description"`
	VolunteerHours   Bool     `json:"volunteer_hours"`
	WebsiteURL       string   `json:"website_url"`
	PresidentContact string   `json:"president_contact"`
}

// Clean strips markup from the free-text fields and labels, trims the rest,
// and drops blank meeting days. It runs before MissingFields so that "   "
// and "<b></b>" both count as missing.
func (r *SubmitRequest) Clean() {
	for _, p := range []*string{
		&r.ClubName, &r.MeetingTimeRange, &r.MeetingRoom,
		&r.Prerequisites, &r.Description, &r.PresidentContact,
	} {
		*p = htmlsanitize.PlainText(*p)
	}
	for _, p := range []*string{&r.MeetingFrequency, &r.MeetingTimeType, &r.WebsiteURL} {
		*p = strings.TrimSpace(*p)
	}
	r.MeetingDays = nonBlank(r.MeetingDays, strings.TrimSpace)
	r.Fields = nonBlank(r.Fields, htmlsanitize.PlainText)
	r.Subfields = nonBlank(r.Subfields, htmlsanitize.PlainText)
	r.Categories = nonBlank(r.Categories, strings.TrimSpace)
}

func nonBlank(in []string, clean func(string) string) []string {
	out := in[:0:0]
	for _, v := range in {
		if v = clean(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag name or nil func.
	_ = v.RegisterValidation("meeting_frequency", inSet(models.MeetingFrequencies))
	_ = v.RegisterValidation("meeting_time_type", inSet(models.MeetingTimeTypes))
	return v
}

func inSet(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(values, fl.Field().String())
	}
}

// MissingFields validates r and returns the JSON names of every required
// field that is absent or holds a value outside its allowed set, in
// declaration order.
func MissingFields(r *SubmitRequest) []string {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []string{err.Error()}
	}
	missing := make([]string, 0, len(ves))
	for _, fe := range ves {
		missing = append(missing, fe.Field())
	}
	return missing
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
