// Package service holds the booking engines. Every operation runs as a
// single storage transaction obtained from a Gateway; the engines keep no
// state of their own between calls.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// Gateway opens storage transactions. fn runs inside one transaction; the
// transaction commits when fn returns nil and rolls back otherwise.
type Gateway interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// BookingFilter narrows booking listings. Only active bookings are ever
// listed. A zero UserID means every resident; a zero From means no lower
// date bound.
type BookingFilter struct {
	UserID uint64
	From   time.Time
}

// SettingStore reads and writes schedule_settings.
type SettingStore interface {
	Settings(ctx context.Context) (map[string]string, error)
	ListSettings(ctx context.Context) ([]model.Setting, error)
	GetSetting(ctx context.Context, name string) (model.Setting, error)
	UpsertSetting(ctx context.Context, s model.Setting) error
}

// UserStore reads and writes users. LockUser takes a row lock that
// serialises concurrent bookings of one resident for the rest of the
// transaction, creating a bare row first when needed.
type UserStore interface {
	LockUser(ctx context.Context, id uint64) error
	GetUser(ctx context.Context, id uint64) (model.User, error)
	UpsertUserName(ctx context.Context, id uint64, nameHash string) error
	SetAdmin(ctx context.Context, id uint64, admin bool) error
}

// MachineStore reads and writes laundry_machines.
type MachineStore interface {
	ListMachines(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, id uint8, forUpdate bool) (model.Machine, error)
	SetMachineStatus(ctx context.Context, id uint8, status model.MachineStatus) error
}

// LaundryStore reads and writes laundry_bookings. InsertLaundry reports
// model.ErrSlotTaken when another active booking already holds the
// (machine, date, start) key.
type LaundryStore interface {
	LaundryStarts(ctx context.Context, machineID uint8, date time.Time) ([]int, error)
	CountUserLaundry(ctx context.Context, userID uint64, date time.Time) (int, error)
	InsertLaundry(ctx context.Context, b *model.LaundryBooking) error
	GetLaundry(ctx context.Context, id uint64, forUpdate bool) (model.LaundryBooking, error)
	SetLaundryStatus(ctx context.Context, id uint64, status model.BookingStatus) error
	ListLaundry(ctx context.Context, f BookingFilter) ([]model.LaundryBooking, error)
}

// RestroomStore reads and writes restroom_bookings. InsertRestroom also
// claims every half hour the booking covers and reports
// model.ErrSlotTaken when any of them is already claimed; cancelling a
// booking releases its claims.
type RestroomStore interface {
	RestroomIntervals(ctx context.Context, date time.Time) ([]model.Interval, error)
	InsertRestroom(ctx context.Context, b *model.RestroomBooking) error
	GetRestroom(ctx context.Context, id uint64, forUpdate bool) (model.RestroomBooking, error)
	SetRestroomStatus(ctx context.Context, id uint64, status model.BookingStatus) error
	ListRestroom(ctx context.Context, f BookingFilter) ([]model.RestroomBooking, error)
}

// QuotaStore reads and writes restroom_quotas. WeeklyQuota reports zero
// minutes used for a missing row. AddUsedMinutes creates the row when
// missing and never lets the counter drop below zero.
type QuotaStore interface {
	WeeklyQuota(ctx context.Context, userID uint64, week model.WeekKey) (model.WeeklyQuota, error)
	AddUsedMinutes(ctx context.Context, userID uint64, week model.WeekKey, delta int) error
}

// ReportStore aggregates active bookings for the admin surface. Dates are
// inclusive on both ends.
type ReportStore interface {
	Usage(ctx context.Context, r model.Resource, from, to time.Time) (model.UsageTotals, error)
	TopUsers(ctx context.Context, r model.Resource, limit int) ([]model.UserUsage, error)
}

// ReminderStore serves the reminder notifier. DueReminders returns active,
// not yet notified bookings starting at or before until.
type ReminderStore interface {
	DueReminders(ctx context.Context, r model.Resource, until time.Time) ([]model.Reminder, error)
	MarkNotified(ctx context.Context, r model.Resource, id uint64) error
}

// Tx is the set of primitives available inside one transaction.
type Tx interface {
	SettingStore
	UserStore
	MachineStore
	LaundryStore
	RestroomStore
	QuotaStore
	ReportStore
	ReminderStore
}
