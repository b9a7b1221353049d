package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// usageSource names the table and minutes expression for a resource.
// Only these constant fragments are ever spliced into report queries.
func usageSource(r model.Resource) (table, minutes string, err error) {
	switch r {
	case model.ResourceLaundry:
		return "laundry_bookings", "end_min - start_min", nil
	case model.ResourceRestroom:
		return "restroom_bookings", "duration", nil
	}
	return "", "", fmt.Errorf("resource %q: %w", r, model.ErrValidation)
}

// Usage totals active bookings with booking_date in [from, to].
func (t *Tx) Usage(ctx context.Context, r model.Resource, from, to time.Time) (model.UsageTotals, error) {
	table, minutes, err := usageSource(r)
	if err != nil {
		return model.UsageTotals{}, err
	}
	var u model.UsageTotals
	err = t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(`+minutes+`), 0) FROM `+table+`
		WHERE status = 'active' AND booking_date BETWEEN ? AND ?`,
		sqlDate(from), sqlDate(to)).Scan(&u.Bookings, &u.Minutes)
	return u, wrap("usage "+string(r), err)
}

// TopUsers ranks residents by active booking count, then by minutes.
func (t *Tx) TopUsers(ctx context.Context, r model.Resource, limit int) ([]model.UserUsage, error) {
	table, minutes, err := usageSource(r)
	if err != nil {
		return nil, err
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT user_id, COUNT(*) AS n, COALESCE(SUM(`+minutes+`), 0) AS m FROM `+table+`
		WHERE status = 'active'
		GROUP BY user_id
		ORDER BY n DESC, m DESC, user_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, wrap("top users "+string(r), err)
	}
	defer rows.Close()

	var out []model.UserUsage
	for rows.Next() {
		var u model.UserUsage
		if err := rows.Scan(&u.UserID, &u.Bookings, &u.Minutes); err != nil {
			return nil, wrap("scan top user", err)
		}
		out = append(out, u)
	}
	return out, wrap("top users "+string(r), rows.Err())
}
