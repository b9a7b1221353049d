package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/schedule"
	"github.com/iliyamo/dorm-booking/internal/service"
)

const restroomColumns = `id, user_id, booking_date, start_min, end_min, duration, status, notified, created_at`

func scanRestroom(s rowScanner) (model.RestroomBooking, error) {
	var b model.RestroomBooking
	err := s.Scan(&b.ID, &b.UserID, &b.Date, &b.Start, &b.End, &b.Duration, &b.Status, &b.Notified, &b.CreatedAt)
	return b, err
}

// RestroomIntervals returns the spans of the active lounge bookings on
// one date, ordered by start.
func (t *Tx) RestroomIntervals(ctx context.Context, date time.Time) ([]model.Interval, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT start_min, end_min FROM restroom_bookings
		WHERE booking_date = ? AND status = 'active'
		ORDER BY start_min`, sqlDate(date))
	if err != nil {
		return nil, wrap("restroom intervals", err)
	}
	defer rows.Close()

	var out []model.Interval
	for rows.Next() {
		var iv model.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, wrap("scan restroom interval", err)
		}
		out = append(out, iv)
	}
	return out, wrap("restroom intervals", rows.Err())
}

// InsertRestroom inserts b, then claims every half hour it covers in
// restroom_slot_claims. The claims table's primary key rejects a second
// claim on the same cell, so two overlapping bookings cannot both commit.
func (t *Tx) InsertRestroom(ctx context.Context, b *model.RestroomBooking) error {
	date := sqlDate(b.Date)
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO restroom_bookings (user_id, booking_date, start_min, end_min, duration, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, date, b.Start, b.End, b.Duration, b.Status)
	if err != nil {
		return wrap("insert restroom booking", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrap("insert restroom booking", err)
	}

	query := `INSERT INTO restroom_slot_claims (booking_date, slot_min, booking_id) VALUES `
	var args []any
	var values []string
	for m := b.Start; m < b.End; m += schedule.RestroomStep {
		values = append(values, "(?, ?, ?)")
		args = append(args, date, m, id)
	}
	if len(values) > 0 {
		_, err = t.tx.ExecContext(ctx, query+strings.Join(values, ","), args...)
		if isDuplicate(err) {
			return fmt.Errorf("claim restroom slots: %w", model.ErrSlotTaken)
		}
		if err != nil {
			return wrap("claim restroom slots", err)
		}
	}

	got, err := scanRestroom(t.tx.QueryRowContext(ctx,
		`SELECT `+restroomColumns+` FROM restroom_bookings WHERE id = ?`, id))
	if err != nil {
		return wrap("reload restroom booking", err)
	}
	*b = got
	return nil
}

// GetRestroom fetches one booking, optionally locking its row.
func (t *Tx) GetRestroom(ctx context.Context, id uint64, lock bool) (model.RestroomBooking, error) {
	b, err := scanRestroom(t.tx.QueryRowContext(ctx,
		`SELECT `+restroomColumns+` FROM restroom_bookings WHERE id = ?`+forUpdate(lock), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.RestroomBooking{}, model.ErrBookingNotFound
	}
	return b, wrap("get restroom booking", err)
}

// SetRestroomStatus updates a booking's status. Leaving the active state
// releases the booking's slot claims.
func (t *Tx) SetRestroomStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE restroom_bookings SET status = ? WHERE id = ?`, status, id); err != nil {
		return wrap("set restroom status", err)
	}
	if status == model.BookingActive {
		return nil
	}
	_, err := t.tx.ExecContext(ctx, `DELETE FROM restroom_slot_claims WHERE booking_id = ?`, id)
	return wrap("release restroom slots", err)
}

// ListRestroom returns active bookings matching f ordered by date, start
// and id.
func (t *Tx) ListRestroom(ctx context.Context, f service.BookingFilter) ([]model.RestroomBooking, error) {
	where, args := filterClause(f)
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+restroomColumns+` FROM restroom_bookings WHERE `+where+
			` ORDER BY booking_date, start_min, id`, args...)
	if err != nil {
		return nil, wrap("list restroom bookings", err)
	}
	defer rows.Close()

	var out []model.RestroomBooking
	for rows.Next() {
		b, err := scanRestroom(rows)
		if err != nil {
			return nil, wrap("scan restroom booking", err)
		}
		out = append(out, b)
	}
	return out, wrap("list restroom bookings", rows.Err())
}
