package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// WeeklyQuota returns the lounge counter of a resident for one ISO week.
// A missing row reads as zero minutes used.
func (t *Tx) WeeklyQuota(ctx context.Context, userID uint64, week model.WeekKey) (model.WeeklyQuota, error) {
	q := model.WeeklyQuota{UserID: userID, Year: week.Year, Week: week.Week}
	err := t.tx.QueryRowContext(ctx, `
		SELECT used_minutes FROM restroom_quotas
		WHERE user_id = ? AND iso_year = ? AND iso_week = ?`,
		userID, week.Year, week.Week).Scan(&q.UsedMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return q, nil
	}
	return q, wrap("read quota", err)
}

// AddUsedMinutes adjusts the weekly counter by delta, creating the row
// when missing. The counter is clamped at zero.
func (t *Tx) AddUsedMinutes(ctx context.Context, userID uint64, week model.WeekKey, delta int) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO restroom_quotas (user_id, iso_year, iso_week, used_minutes)
		VALUES (?, ?, ?, GREATEST(?, 0))
		ON DUPLICATE KEY UPDATE used_minutes = GREATEST(used_minutes + ?, 0)`,
		userID, week.Year, week.Week, delta, delta)
	return wrap("update quota", err)
}
