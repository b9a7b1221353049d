package schedule

import (
	"fmt"
	"strconv"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// Setting names stored in schedule_settings.
const (
	KeyLaundryOpen           = "laundry_open"
	KeyLaundryClose          = "laundry_close"
	KeyLaundryBreakStart     = "laundry_break_start"
	KeyLaundryBreakEnd       = "laundry_break_end"
	KeyWednesdayOpen         = "wednesday_start"
	KeyWednesdayBreakStart   = "wednesday_break_start"
	KeyWednesdayBreakEnd     = "wednesday_break_end"
	KeyLaundryNotifyMinutes  = "laundry_notification_minutes"
	KeyRestroomNotifyMinutes = "restroom_notification_minutes"
	KeyLaundryGraceMinutes   = "laundry_grace_period"
	KeyRestroomWeeklyMinutes = "restroom_max_weekly_minutes"
)

type kind int

const (
	kindClock kind = iota
	kindOptionalClock
	kindMinutes
)

type definition struct {
	name        string
	value       string
	description string
	kind        kind
	schedule    bool
}

var definitions = []definition{
	{KeyLaundryOpen, "08:00", "Laundry opening time", kindClock, true},
	{KeyLaundryClose, "23:00", "Laundry closing time", kindClock, true},
	{KeyLaundryBreakStart, "", "Laundry break start (empty for none)", kindOptionalClock, true},
	{KeyLaundryBreakEnd, "", "Laundry break end (empty for none)", kindOptionalClock, true},
	{KeyWednesdayOpen, "08:00", "Laundry opening time on Wednesday", kindClock, true},
	{KeyWednesdayBreakStart, "10:00", "Wednesday break start", kindOptionalClock, true},
	{KeyWednesdayBreakEnd, "13:00", "Wednesday break end", kindOptionalClock, true},
	{KeyLaundryNotifyMinutes, "30", "Minutes before a laundry booking to send a reminder", kindMinutes, false},
	{KeyRestroomNotifyMinutes, "15", "Minutes before a lounge booking to send a reminder", kindMinutes, false},
	{KeyLaundryGraceMinutes, "15", "Minutes after start during which a reminder is still sent", kindMinutes, false},
	{KeyRestroomWeeklyMinutes, "240", "Lounge minutes a resident may book per ISO week", kindMinutes, false},
}

var byName = func() map[string]definition {
	m := make(map[string]definition, len(definitions))
	for _, d := range definitions {
		m[d.name] = d
	}
	return m
}()

// Defaults returns every known setting with its default value.
func Defaults() []model.Setting {
	out := make([]model.Setting, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, model.Setting{Name: d.name, Value: d.value, Description: d.description})
	}
	return out
}

// ScheduleDefaults returns only the opening-hours and break settings.
// The admin "reset schedule" action restores these and leaves reminder
// and quota settings alone.
func ScheduleDefaults() []model.Setting {
	out := make([]model.Setting, 0, 7)
	for _, d := range definitions {
		if d.schedule {
			out = append(out, model.Setting{Name: d.name, Value: d.value, Description: d.description})
		}
	}
	return out
}

// Describe returns the description of a known setting.
func Describe(name string) string {
	return byName[name].description
}

// Validate checks a value against the type of a known setting. Unknown
// names are accepted as free-form strings.
func Validate(name, value string) error {
	d, ok := byName[name]
	if !ok {
		if name == "" {
			return fmt.Errorf("empty setting name: %w", model.ErrValidation)
		}
		return nil
	}
	switch d.kind {
	case kindClock:
		if _, err := utils.TimeToMinutes(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	case kindOptionalClock:
		if value == "" {
			return nil
		}
		if _, err := utils.TimeToMinutes(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	case kindMinutes:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s=%q: %w", name, value, model.ErrInvalidSetting)
		}
	}
	return nil
}

var breakPairs = [][2]string{
	{KeyLaundryBreakStart, KeyLaundryBreakEnd},
	{KeyWednesdayBreakStart, KeyWednesdayBreakEnd},
}

// ValidateBreak checks the break window that name belongs to, with values
// holding the stored settings and the pending change already applied.
// Missing keys take their defaults. A window with an empty end means no
// break; otherwise its start must precede its end. Names outside a break
// window always pass.
func ValidateBreak(name string, values map[string]string) error {
	get := func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return byName[key].value
	}
	for _, pair := range breakPairs {
		if name != pair[0] && name != pair[1] {
			continue
		}
		start, end := get(pair[0]), get(pair[1])
		if start == "" || end == "" {
			return nil
		}
		s, err := utils.TimeToMinutes(start)
		if err != nil {
			return fmt.Errorf("%s: %w", pair[0], err)
		}
		e, err := utils.TimeToMinutes(end)
		if err != nil {
			return fmt.Errorf("%s: %w", pair[1], err)
		}
		if s >= e {
			return fmt.Errorf("%s=%s must be before %s=%s: %w", pair[0], start, pair[1], end, model.ErrInvalidSetting)
		}
	}
	return nil
}
