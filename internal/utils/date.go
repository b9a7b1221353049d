package utils

import (
	"fmt"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD.
var ErrInvalidDate = fmt.Errorf("date must be YYYY-MM-DD: %w", model.ErrValidation)

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, ErrInvalidDate)
	}
	return d, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// DateOf truncates t to midnight UTC of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's month at midnight UTC.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// ISOWeekStart returns the Monday that opens t's ISO week.
func ISOWeekStart(t time.Time) time.Time {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// At returns the instant of minute offset m on date's calendar day in loc.
func At(date time.Time, m int, loc *time.Location) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, 0, m, 0, 0, loc)
}

// WallClockUTC keeps t's wall-clock reading but labels it UTC. Booking
// dates and minute offsets are stored as local wall-clock values, so
// comparisons against them must use the same reading.
func WallClockUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
