package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.LaundryOpen != 480 || p.LaundryClose != 1380 {
		t.Fatalf("unexpected hours %d-%d", p.LaundryOpen, p.LaundryClose)
	}
	if p.LaundryBreak != nil {
		t.Fatalf("normal days should have no break by default")
	}
	if p.WednesdayBreak == nil || *p.WednesdayBreak != (Window{Start: 600, End: 780}) {
		t.Fatalf("unexpected Wednesday break %+v", p.WednesdayBreak)
	}
	if p.WeeklyQuotaMinutes != 240 || p.LaundryNotifyMinutes != 30 || p.RestroomNotifyMinutes != 15 || p.GraceMinutes != 15 {
		t.Fatalf("unexpected numeric defaults %+v", p)
	}
}

func TestEffective(t *testing.T) {
	p, err := FromSettings(map[string]string{
		KeyLaundryOpen:   "09:00",
		KeyLaundryClose:  "22:00",
		KeyWednesdayOpen: "07:00",
	})
	if err != nil {
		t.Fatalf("FromSettings: %v", err)
	}

	wed := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	day := p.Effective(wed)
	if day.Open != 420 || day.Close != 1320 || day.Break == nil || day.Break.Start != 600 {
		t.Fatalf("Wednesday schedule = %+v", day)
	}

	thu := wed.AddDate(0, 0, 1)
	day = p.Effective(thu)
	if day.Open != 540 || day.Close != 1320 || day.Break != nil {
		t.Fatalf("Thursday schedule = %+v", day)
	}
}

func TestFromSettingsBreaks(t *testing.T) {
	p, err := FromSettings(map[string]string{
		KeyLaundryBreakStart:   "14:00",
		KeyLaundryBreakEnd:     "15:00",
		KeyWednesdayBreakStart: "",
	})
	if err != nil {
		t.Fatalf("FromSettings: %v", err)
	}
	if p.LaundryBreak == nil || *p.LaundryBreak != (Window{Start: 840, End: 900}) {
		t.Fatalf("laundry break = %+v", p.LaundryBreak)
	}
	if p.WednesdayBreak != nil {
		t.Fatalf("cleared Wednesday break should be nil, got %+v", p.WednesdayBreak)
	}

	p, err = FromSettings(map[string]string{KeyLaundryBreakStart: "15:00", KeyLaundryBreakEnd: "14:00"})
	if err != nil {
		t.Fatalf("FromSettings: %v", err)
	}
	if p.LaundryBreak != nil {
		t.Fatalf("inverted break should be ignored")
	}
}

func TestFromSettingsRejectsGarbage(t *testing.T) {
	if _, err := FromSettings(map[string]string{KeyLaundryOpen: "late"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := FromSettings(map[string]string{KeyRestroomWeeklyMinutes: "-5"}); !errors.Is(err, model.ErrInvalidSetting) {
		t.Fatalf("expected invalid setting, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name, value string
		ok          bool
	}{
		{KeyLaundryOpen, "07:30", true},
		{KeyLaundryOpen, "", false},
		{KeyLaundryBreakStart, "", true},
		{KeyLaundryBreakStart, "25:00", false},
		{KeyRestroomWeeklyMinutes, "300", true},
		{KeyRestroomWeeklyMinutes, "lots", false},
		{"motd", "anything goes", true},
		{"", "x", false},
	}
	for _, tc := range cases {
		err := Validate(tc.name, tc.value)
		if (err == nil) != tc.ok {
			t.Errorf("Validate(%q, %q) = %v", tc.name, tc.value, err)
		}
	}
}

func TestValidateBreak(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
		ok     bool
	}{
		{KeyWednesdayBreakStart, map[string]string{KeyWednesdayBreakStart: "11:00"}, true},
		{KeyWednesdayBreakStart, map[string]string{KeyWednesdayBreakStart: "13:00"}, false},
		{KeyWednesdayBreakEnd, map[string]string{KeyWednesdayBreakStart: "10:00", KeyWednesdayBreakEnd: "09:30"}, false},
		{KeyWednesdayBreakStart, map[string]string{KeyWednesdayBreakStart: ""}, true},
		{KeyLaundryBreakStart, map[string]string{KeyLaundryBreakStart: "14:00"}, true},
		{KeyLaundryBreakEnd, map[string]string{KeyLaundryBreakStart: "14:00", KeyLaundryBreakEnd: "12:00"}, false},
		{KeyLaundryOpen, map[string]string{KeyWednesdayBreakStart: "13:00"}, true},
	}
	for _, tc := range cases {
		err := ValidateBreak(tc.name, tc.values)
		if (err == nil) != tc.ok {
			t.Errorf("ValidateBreak(%q, %v) = %v", tc.name, tc.values, err)
		}
		if err != nil && !errors.Is(err, model.ErrValidation) {
			t.Errorf("ValidateBreak(%q) error %v is not a validation error", tc.name, err)
		}
	}
}

func TestScheduleDefaults(t *testing.T) {
	if got := len(ScheduleDefaults()); got != 7 {
		t.Fatalf("expected 7 schedule settings, got %d", got)
	}
	if got := len(Defaults()); got != 11 {
		t.Fatalf("expected 11 settings, got %d", got)
	}
}
