package utils

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
)

func TestTimeToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
		err  bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"8:00", 0, true},
		{"08-00", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := TimeToMinutes(tc.in)
		if tc.err {
			if !errors.Is(err, ErrInvalidFormat) || !errors.Is(err, model.ErrValidation) {
				t.Errorf("TimeToMinutes(%q): expected invalid format, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("TimeToMinutes(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestMinutesToTime(t *testing.T) {
	if s, err := MinutesToTime(510); err != nil || s != "08:30" {
		t.Fatalf("got %q, %v", s, err)
	}
	if s, err := MinutesToTime(0); err != nil || s != "00:00" {
		t.Fatalf("got %q, %v", s, err)
	}
	for _, m := range []int{-1, 1440, 5000} {
		if _, err := MinutesToTime(m); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("MinutesToTime(%d): expected out of range, got %v", m, err)
		}
	}
}

func TestGenerateSlots(t *testing.T) {
	got, err := GenerateSlots("08:00", "10:00", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"08:00", "08:30", "09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := GenerateSlots("10:00", "10:00", 30); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected invalid range for empty span, got %v", err)
	}
	if _, err := GenerateSlots("08:00", "10:00", 0); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected invalid range for zero interval, got %v", err)
	}
	if _, err := GenerateSlots("8", "10:00", 30); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected invalid format, got %v", err)
	}
}

func TestISOWeekStart(t *testing.T) {
	// 2025-01-01 is a Wednesday in ISO week 1 of 2025, which opens on 2024-12-30.
	d := time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)
	got := ISOWeekStart(d)
	if want := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
	if y, w := got.ISOWeek(); y != 2025 || w != 1 {
		t.Fatalf("week start is in %d-W%d", y, w)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Weekday() != time.Wednesday || FormatDate(d) != "2025-03-05" {
		t.Fatalf("unexpected date %s", d)
	}
	if _, err := ParseDate("05.03.2025"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
