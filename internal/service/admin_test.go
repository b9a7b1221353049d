package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/schedule"
)

type adminFixture struct {
	gw       *memGateway
	laundry  *LaundryService
	restroom *RestroomService
	admin    *AdminService
}

func newAdminFixture() adminFixture {
	gw := newMemGateway()
	l := newLaundry(gw)
	r := newRestroom(gw)
	return adminFixture{
		gw:       gw,
		laundry:  l,
		restroom: r,
		admin:    NewAdminService(gw, l, r, zerolog.Nop(), fixedClock(monday)),
	}
}

func TestAdmin_MachineStatus(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	m, err := f.admin.ToggleMachine(ctx, 2)
	if err != nil || m.Status != model.MachineInactive {
		t.Fatalf("toggle = %+v, %v", m, err)
	}
	if _, err := f.laundry.Book(ctx, 1, 2, day("2025-03-04"), "08:00"); !errors.Is(err, model.ErrMachineUnavailable) {
		t.Fatalf("inactive machine accepted a booking: %v", err)
	}
	m, err = f.admin.SetMachineStatus(ctx, 2, model.MachineActive)
	if err != nil || m.Status != model.MachineActive {
		t.Fatalf("set = %+v, %v", m, err)
	}
	if _, err := f.admin.SetMachineStatus(ctx, 2, "broken"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.admin.ToggleMachine(ctx, 42); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	machines, err := f.admin.ListMachines(ctx)
	if err != nil || len(machines) != 3 || machines[0].ID != 1 {
		t.Fatalf("ListMachines = %+v, %v", machines, err)
	}
}

func TestAdmin_Settings(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	st, err := f.admin.SetSetting(ctx, schedule.KeyLaundryOpen, "10:00")
	if err != nil || st.Value != "10:00" || st.Description == "" {
		t.Fatalf("SetSetting = %+v, %v", st, err)
	}
	slots, err := f.laundry.AvailableSlots(ctx, day("2025-03-04"), 1)
	if err != nil || len(slots) == 0 || slots[0] != "10:00" {
		t.Fatalf("new opening time not applied: %v, %v", slots, err)
	}

	if _, err := f.admin.SetSetting(ctx, schedule.KeyLaundryClose, "late"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.admin.SetSetting(ctx, "welcome_text", "hi"); err != nil {
		t.Fatalf("free-form setting should be created: %v", err)
	}
	if got, err := f.admin.GetSetting(ctx, "welcome_text"); err != nil || got.Value != "hi" {
		t.Fatalf("GetSetting = %+v, %v", got, err)
	}
	if _, err := f.admin.GetSetting(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := f.admin.SetSetting(ctx, schedule.KeyRestroomWeeklyMinutes, "60"); err != nil {
		t.Fatalf("set quota: %v", err)
	}
	if err := f.admin.ResetSchedule(ctx); err != nil {
		t.Fatalf("reset schedule: %v", err)
	}
	if got, _ := f.admin.GetSetting(ctx, schedule.KeyLaundryOpen); got.Value != "08:00" {
		t.Fatalf("schedule reset did not restore opening time: %+v", got)
	}
	if got, _ := f.admin.GetSetting(ctx, schedule.KeyRestroomWeeklyMinutes); got.Value != "60" {
		t.Fatalf("schedule reset must not touch the quota: %+v", got)
	}

	if err := f.admin.ResetSettings(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got, _ := f.admin.GetSetting(ctx, schedule.KeyRestroomWeeklyMinutes); got.Value != "240" {
		t.Fatalf("full reset did not restore quota: %+v", got)
	}
	all, err := f.admin.Settings(ctx)
	if err != nil || len(all) != len(schedule.Defaults())+1 {
		t.Fatalf("Settings = %d entries, %v", len(all), err)
	}
}

func TestAdmin_RejectsInvertedBreak(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	if _, err := f.admin.SetSetting(ctx, schedule.KeyWednesdayBreakStart, "13:00"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("break start at its end: expected validation error, got %v", err)
	}
	if _, err := f.admin.SetSetting(ctx, schedule.KeyWednesdayBreakEnd, "09:00"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("break end before its start: expected validation error, got %v", err)
	}
	if got, _ := f.admin.GetSetting(ctx, schedule.KeyWednesdayBreakStart); got.Value != "10:00" {
		t.Fatalf("rejected write changed the stored break: %+v", got)
	}
	slots, err := f.laundry.AvailableSlots(ctx, day("2025-03-05"), 1)
	if err != nil || contains(slots, "10:00") {
		t.Fatalf("wednesday break lost: %v, %v", slots, err)
	}

	if _, err := f.admin.SetSetting(ctx, schedule.KeyWednesdayBreakEnd, "16:00"); err != nil {
		t.Fatalf("widen break: %v", err)
	}
	if _, err := f.admin.SetSetting(ctx, schedule.KeyWednesdayBreakStart, "14:00"); err != nil {
		t.Fatalf("move break start: %v", err)
	}
	if _, err := f.admin.SetSetting(ctx, schedule.KeyWednesdayBreakStart, ""); err != nil {
		t.Fatalf("clearing the break must be allowed: %v", err)
	}
}

func TestAdmin_ActiveBookingsAndCancel(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	late, _ := f.laundry.Book(ctx, 1, 1, day("2025-03-05"), "08:00")
	early, _ := f.laundry.Book(ctx, 2, 2, day("2025-03-04"), "16:00")
	earlier, _ := f.laundry.Book(ctx, 3, 3, day("2025-03-04"), "08:00")

	list, err := f.admin.ActiveLaundry(ctx)
	if err != nil || len(list) != 3 {
		t.Fatalf("ActiveLaundry = %v, %v", list, err)
	}
	if list[0].ID != earlier.ID || list[1].ID != early.ID || list[2].ID != late.ID {
		t.Fatalf("bookings not ordered by date then start: %+v", list)
	}

	r, _ := f.restroom.Book(ctx, 5, day("2025-03-04"), "10:00", 60)
	if err := f.admin.CancelBooking(ctx, model.ResourceRestroom, r.ID); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if left, _ := f.restroom.RemainingMinutesForDate(ctx, 5, day("2025-03-04")); left != 240 {
		t.Fatalf("admin cancel must refund the quota, remaining %d", left)
	}
	if err := f.admin.CancelBooking(ctx, "pool", 1); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdmin_Stats(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	mustBook := func(user uint64, date, start string, d int) {
		t.Helper()
		if _, err := f.restroom.Book(ctx, user, day(date), start, d); err != nil {
			t.Fatalf("book: %v", err)
		}
	}
	mustBook(1, "2025-03-04", "08:00", 60)
	mustBook(1, "2025-03-05", "08:00", 30)
	mustBook(2, "2025-03-04", "12:00", 120)
	mustBook(3, "2025-03-20", "12:00", 90) // same month, later week

	st, err := f.admin.Stats(ctx, model.ResourceRestroom)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Week != (model.UsageTotals{Bookings: 3, Minutes: 210}) {
		t.Fatalf("week totals = %+v", st.Week)
	}
	if st.Month != (model.UsageTotals{Bookings: 4, Minutes: 300}) {
		t.Fatalf("month totals = %+v", st.Month)
	}
	if len(st.TopUsers) != 3 || st.TopUsers[0].UserID != 1 || st.TopUsers[0].Bookings != 2 || st.TopUsers[0].Minutes != 90 {
		t.Fatalf("top users = %+v", st.TopUsers)
	}

	if _, err := f.admin.Stats(ctx, "sauna"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	empty, err := f.admin.Stats(ctx, model.ResourceLaundry)
	if err != nil || empty.TopUsers == nil || len(empty.TopUsers) != 0 {
		t.Fatalf("empty laundry stats = %+v, %v", empty, err)
	}
}
