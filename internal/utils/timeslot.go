package utils // package utils holds small pure helpers shared by the engines and handlers

import (
	"fmt"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// MinutesPerDay bounds every minute offset handled by the service.
const MinutesPerDay = 24 * 60

// Errors returned by the clock helpers. All of them are validation errors.
var (
	ErrInvalidFormat = fmt.Errorf("time must be HH:MM: %w", model.ErrValidation)
	ErrOutOfRange    = fmt.Errorf("minute offset out of range: %w", model.ErrValidation)
	ErrInvalidRange  = fmt.Errorf("invalid slot range: %w", model.ErrValidation)
)

// TimeToMinutes converts an "HH:MM" clock string into minutes since
// midnight. Exactly two digits are required on each side of the colon.
func TimeToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidFormat)
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidFormat)
	}
	return h*60 + m, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// MinutesToTime renders a minute offset as "HH:MM".
func MinutesToTime(m int) (string, error) {
	if m < 0 || m >= MinutesPerDay {
		return "", fmt.Errorf("%d: %w", m, ErrOutOfRange)
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60), nil
}

// FormatMinutes is MinutesToTime for offsets already known to be in
// range. Offsets equal to MinutesPerDay render as "24:00" so interval ends
// at midnight stay printable.
func FormatMinutes(m int) string {
	if m == MinutesPerDay {
		return "24:00"
	}
	s, err := MinutesToTime(m)
	if err != nil {
		return fmt.Sprintf("%d", m)
	}
	return s
}

// GenerateSlots lists the marks start, start+interval, ... strictly before
// end, all formatted as "HH:MM".
func GenerateSlots(start, end string, interval int) ([]string, error) {
	s, err := TimeToMinutes(start)
	if err != nil {
		return nil, err
	}
	e, err := TimeToMinutes(end)
	if err != nil {
		return nil, err
	}
	marks, err := SlotMarks(s, e, interval)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(marks))
	for i, m := range marks {
		out[i] = FormatMinutes(m)
	}
	return out, nil
}

// SlotMarks is GenerateSlots on minute offsets.
func SlotMarks(start, end, interval int) ([]int, error) {
	if start >= end || interval <= 0 {
		return nil, fmt.Errorf("start=%d end=%d interval=%d: %w", start, end, interval, ErrInvalidRange)
	}
	if start < 0 || end > MinutesPerDay {
		return nil, fmt.Errorf("start=%d end=%d: %w", start, end, ErrOutOfRange)
	}
	out := make([]int, 0, (end-start)/interval+1)
	for m := start; m < end; m += interval {
		out = append(out, m)
	}
	return out, nil
}
