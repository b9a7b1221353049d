package repository

import (
	"context"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// DueReminders returns active bookings not yet notified whose start is at
// or before until. Start instants are compared as wall-clock datetimes,
// so until must carry the local wall clock in UTC (see utils.WallClockUTC).
func (t *Tx) DueReminders(ctx context.Context, r model.Resource, until time.Time) ([]model.Reminder, error) {
	table, _, err := usageSource(r)
	if err != nil {
		return nil, err
	}
	machine := "0"
	if r == model.ResourceLaundry {
		machine = "machine_id"
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, user_id, `+machine+`, booking_date, start_min, end_min FROM `+table+`
		WHERE status = 'active' AND notified = 0
		  AND TIMESTAMPADD(MINUTE, start_min, booking_date) <= ?
		ORDER BY booking_date, start_min, id`, until.UTC())
	if err != nil {
		return nil, wrap("due reminders", err)
	}
	defer rows.Close()

	var out []model.Reminder
	for rows.Next() {
		rem := model.Reminder{Resource: r}
		if err := rows.Scan(&rem.BookingID, &rem.UserID, &rem.MachineID, &rem.Date, &rem.Start, &rem.End); err != nil {
			return nil, wrap("scan reminder", err)
		}
		out = append(out, rem)
	}
	return out, wrap("due reminders", rows.Err())
}

// MarkNotified flags a booking's reminder as handled.
func (t *Tx) MarkNotified(ctx context.Context, r model.Resource, id uint64) error {
	table, _, err := usageSource(r)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `UPDATE `+table+` SET notified = 1 WHERE id = ?`, id)
	return wrap("mark notified", err)
}
