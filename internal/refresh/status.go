package refresh

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// StatusLayout is the date-time status line shown above current conditions
const StatusLayout = "Monday 03:04 PM"

// ErrFormat is matched by every *FormatError
var ErrFormat = errors.New("malformed status string")

// FormatError reports a status string that cannot be split into its
// weekday, time-of-day and AM/PM tokens.
type FormatError struct {
	Status string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed status %q: %s", e.Status, e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Status is a parsed date-time status line
type Status struct {
	Weekday   string
	TimeOfDay string // "hh:mm"
	Meridiem  string // "AM" or "PM"
}

// IsMidnight reports whether the status marks the first minute of a day
func (s Status) IsMidnight() bool {
	return s.TimeOfDay == "12:00" && s.Meridiem == "AM"
}

// FormatStatus renders t as a status line, e.g. "Monday 03:15 AM"
func FormatStatus(t time.Time) string {
	return t.Format(StatusLayout)
}

var weekdays = map[string]bool{
	"Sunday": true, "Monday": true, "Tuesday": true, "Wednesday": true,
	"Thursday": true, "Friday": true, "Saturday": true,
}

// ParseStatus splits a status line into its tokens. Text after the AM/PM
// token is ignored.
func ParseStatus(s string) (Status, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Status{}, &FormatError{Status: s, Reason: fmt.Sprintf("expected 3 tokens, got %d", len(fields))}
	}

	st := Status{Weekday: fields[0], TimeOfDay: fields[1], Meridiem: fields[2]}

	if !weekdays[st.Weekday] {
		return Status{}, &FormatError{Status: s, Reason: "unknown weekday " + st.Weekday}
	}
	if !validClock(st.TimeOfDay) {
		return Status{}, &FormatError{Status: s, Reason: "bad time of day " + st.TimeOfDay}
	}
	if st.Meridiem != "AM" && st.Meridiem != "PM" {
		return Status{}, &FormatError{Status: s, Reason: "bad AM/PM token " + st.Meridiem}
	}

	return st, nil
}

// validClock accepts 12-hour "hh:mm" with a zero padded hour
func validClock(s string) bool {
	_, err := time.Parse("03:04", s)
	return err == nil && len(s) == 5
}

// ShouldRecomputeDaily is the daily forecast gate: a location change, or the
// status line showing midnight. The status is not parsed when the location
// changed.
func ShouldRecomputeDaily(locationChanged bool, status string) (bool, error) {
	if locationChanged {
		return true, nil
	}
	st, err := ParseStatus(status)
	if err != nil {
		return false, err
	}
	return st.IsMidnight(), nil
}
