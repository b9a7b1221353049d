package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/service"
)

const laundryColumns = `id, user_id, machine_id, booking_date, start_min, end_min, status, notified, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLaundry(s rowScanner) (model.LaundryBooking, error) {
	var b model.LaundryBooking
	err := s.Scan(&b.ID, &b.UserID, &b.MachineID, &b.Date, &b.Start, &b.End, &b.Status, &b.Notified, &b.CreatedAt)
	return b, err
}

// LaundryStarts returns the start minutes of the active bookings on one
// machine and date, ascending.
func (t *Tx) LaundryStarts(ctx context.Context, machineID uint8, date time.Time) ([]int, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT start_min FROM laundry_bookings
		WHERE machine_id = ? AND booking_date = ? AND status = 'active'
		ORDER BY start_min`, machineID, sqlDate(date))
	if err != nil {
		return nil, wrap("laundry starts", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return nil, wrap("scan laundry start", err)
		}
		out = append(out, m)
	}
	return out, wrap("laundry starts", rows.Err())
}

// CountUserLaundry counts a resident's active bookings on one date.
func (t *Tx) CountUserLaundry(ctx context.Context, userID uint64, date time.Time) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM laundry_bookings
		WHERE user_id = ? AND booking_date = ? AND status = 'active'`,
		userID, sqlDate(date)).Scan(&n)
	return n, wrap("count laundry", err)
}

// InsertLaundry inserts b and fills in its generated id and timestamps.
// The (machine, date, start) unique key on active rows turns a lost race
// into model.ErrSlotTaken.
func (t *Tx) InsertLaundry(ctx context.Context, b *model.LaundryBooking) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO laundry_bookings (user_id, machine_id, booking_date, start_min, end_min, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.MachineID, sqlDate(b.Date), b.Start, b.End, b.Status)
	if isDuplicate(err) {
		return fmt.Errorf("insert laundry booking: %w", model.ErrSlotTaken)
	}
	if err != nil {
		return wrap("insert laundry booking", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrap("insert laundry booking", err)
	}
	got, err := scanLaundry(t.tx.QueryRowContext(ctx,
		`SELECT `+laundryColumns+` FROM laundry_bookings WHERE id = ?`, id))
	if err != nil {
		return wrap("reload laundry booking", err)
	}
	*b = got
	return nil
}

// GetLaundry fetches one booking, optionally locking its row.
func (t *Tx) GetLaundry(ctx context.Context, id uint64, lock bool) (model.LaundryBooking, error) {
	b, err := scanLaundry(t.tx.QueryRowContext(ctx,
		`SELECT `+laundryColumns+` FROM laundry_bookings WHERE id = ?`+forUpdate(lock), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.LaundryBooking{}, model.ErrBookingNotFound
	}
	return b, wrap("get laundry booking", err)
}

// SetLaundryStatus updates a booking's status.
func (t *Tx) SetLaundryStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE laundry_bookings SET status = ? WHERE id = ?`, status, id)
	return wrap("set laundry status", err)
}

// ListLaundry returns active bookings matching f ordered by date, start
// and id.
func (t *Tx) ListLaundry(ctx context.Context, f service.BookingFilter) ([]model.LaundryBooking, error) {
	where, args := filterClause(f)
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+laundryColumns+` FROM laundry_bookings WHERE `+where+
			` ORDER BY booking_date, start_min, id`, args...)
	if err != nil {
		return nil, wrap("list laundry bookings", err)
	}
	defer rows.Close()

	var out []model.LaundryBooking
	for rows.Next() {
		b, err := scanLaundry(rows)
		if err != nil {
			return nil, wrap("scan laundry booking", err)
		}
		out = append(out, b)
	}
	return out, wrap("list laundry bookings", rows.Err())
}

// filterClause builds the WHERE clause shared by the booking listings.
func filterClause(f service.BookingFilter) (string, []any) {
	conds := []string{"status = 'active'"}
	var args []any
	if f.UserID != 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "booking_date >= ?")
		args = append(args, sqlDate(f.From))
	}
	return strings.Join(conds, " AND "), args
}
