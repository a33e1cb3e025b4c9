package entity

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by event forms.
const DateLayout = "2006-01-02"

// Event is a scheduled alumni event.
type Event struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title" validate:"notblank"`
	Date        string `json:"date" yaml:"date" validate:"notblank"`
	Location    string `json:"location" yaml:"location" validate:"notblank"`
	Description string `json:"description" yaml:"description" validate:"notblank"`
	ImageURL    string `json:"imageUrl" yaml:"imageUrl" validate:"omitempty,url"`
	RSVPs       int    `json:"rsvps" yaml:"rsvps" validate:"gte=0"`
}

func (e Event) EntityID() string { return e.ID }

// Normalize trims text fields.
func (e *Event) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.Date = strings.TrimSpace(e.Date)
	e.Location = strings.TrimSpace(e.Location)
	e.Description = strings.TrimSpace(e.Description)
	e.ImageURL = strings.TrimSpace(e.ImageURL)
}

// Validate returns per-field messages, or nil when the record is valid.
// The date must be a calendar date or an RFC 3339 timestamp.
func (e Event) Validate(time.Time) map[string]string {
	var extra map[string]string
	if e.Date != "" {
		if _, ok := ParseEventDate(e.Date); !ok {
			extra = map[string]string{"date": "date must be a date (YYYY-MM-DD) or an RFC 3339 timestamp"}
		}
	}
	return check(e, extra)
}

// ParseEventDate parses a stored event date.
func ParseEventDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
