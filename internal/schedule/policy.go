// Package schedule turns the string settings stored by admins into a typed
// booking policy and resolves the opening hours that apply to a date.
package schedule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// Lounge grid: half-hour marks from 08:00 up to and including 22:30.
const (
	RestroomOpen  = 8 * 60
	RestroomClose = 23 * 60
	RestroomStep  = 30
)

// Window is a half-open [Start, End) span in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// Intersects reports whether [start, end) shares a minute with w.
func (w Window) Intersects(start, end int) bool {
	return start < w.End && w.Start < end
}

// Day is the laundry schedule that applies to one date. Break is nil
// when the day has no break.
type Day struct {
	Open  int
	Close int
	Break *Window
}

// Policy is the full set of booking rules, parsed from settings. It is
// rebuilt from storage on every operation and never cached.
type Policy struct {
	LaundryOpen    int
	LaundryClose   int
	LaundryBreak   *Window
	WednesdayOpen  int
	WednesdayBreak *Window

	LaundryNotifyMinutes  int
	RestroomNotifyMinutes int
	GraceMinutes          int
	WeeklyQuotaMinutes    int
}

// DefaultPolicy is the policy obtained from an empty settings table.
func DefaultPolicy() Policy {
	p, _ := FromSettings(nil)
	return p
}

// FromSettings builds a Policy from stored name/value pairs. Missing names
// take their defaults. A break is present only when both its ends are set
// and start precedes end.
func FromSettings(values map[string]string) (Policy, error) {
	get := func(name string) string {
		if v, ok := values[name]; ok {
			return v
		}
		return byName[name].value
	}
	var (
		p   Policy
		err error
	)
	if p.LaundryOpen, err = clock(KeyLaundryOpen, get(KeyLaundryOpen)); err != nil {
		return Policy{}, err
	}
	if p.LaundryClose, err = clock(KeyLaundryClose, get(KeyLaundryClose)); err != nil {
		return Policy{}, err
	}
	if p.WednesdayOpen, err = clock(KeyWednesdayOpen, get(KeyWednesdayOpen)); err != nil {
		return Policy{}, err
	}
	if p.LaundryBreak, err = window(KeyLaundryBreakStart, get(KeyLaundryBreakStart), get(KeyLaundryBreakEnd)); err != nil {
		return Policy{}, err
	}
	if p.WednesdayBreak, err = window(KeyWednesdayBreakStart, get(KeyWednesdayBreakStart), get(KeyWednesdayBreakEnd)); err != nil {
		return Policy{}, err
	}
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{KeyLaundryNotifyMinutes, &p.LaundryNotifyMinutes},
		{KeyRestroomNotifyMinutes, &p.RestroomNotifyMinutes},
		{KeyLaundryGraceMinutes, &p.GraceMinutes},
		{KeyRestroomWeeklyMinutes, &p.WeeklyQuotaMinutes},
	} {
		n, err := strconv.Atoi(get(f.name))
		if err != nil || n < 0 {
			return Policy{}, fmt.Errorf("%s=%q: %w", f.name, get(f.name), model.ErrInvalidSetting)
		}
		*f.dst = n
	}
	return p, nil
}

// Effective returns the laundry hours for date. Wednesday uses its own
// opening time and break but shares the normal closing time.
func (p Policy) Effective(date time.Time) Day {
	if date.Weekday() == time.Wednesday {
		return Day{Open: p.WednesdayOpen, Close: p.LaundryClose, Break: p.WednesdayBreak}
	}
	return Day{Open: p.LaundryOpen, Close: p.LaundryClose, Break: p.LaundryBreak}
}

func clock(name, v string) (int, error) {
	m, err := utils.TimeToMinutes(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

func window(name, start, end string) (*Window, error) {
	if start == "" || end == "" {
		return nil, nil
	}
	s, err := clock(name, start)
	if err != nil {
		return nil, err
	}
	e, err := clock(name, end)
	if err != nil {
		return nil, err
	}
	if s >= e {
		return nil, nil
	}
	return &Window{Start: s, End: e}, nil
}
