package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// lockUserQuery creates the resident row or, when it exists, takes an
// exclusive lock on it through the duplicate-key update. INSERT IGNORE
// would only take a shared lock there, and two transactions upgrading
// shared locks on one row deadlock.
const lockUserQuery = `INSERT INTO users (id) VALUES (?) ON DUPLICATE KEY UPDATE id = id`

// LockUser creates the resident row if needed and holds its exclusive row
// lock until the transaction ends. Concurrent bookings of one resident
// queue up here, which keeps the daily cap and weekly quota checks exact.
func (t *Tx) LockUser(ctx context.Context, id uint64) error {
	_, err := t.tx.ExecContext(ctx, lockUserQuery, id)
	return wrap("lock user", err)
}

// GetUser fetches a resident by id.
func (t *Tx) GetUser(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, name_hash, is_admin, created_at FROM users WHERE id = ? LIMIT 1`,
		id).Scan(&u.ID, &u.NameHash, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	return u, wrap("get user", err)
}

// UpsertUserName stores the display name hash, creating the row if needed.
func (t *Tx) UpsertUserName(ctx context.Context, id uint64, nameHash string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO users (id, name_hash) VALUES (?, ?) ON DUPLICATE KEY UPDATE name_hash = ?`,
		id, nameHash, nameHash)
	return wrap("upsert user", err)
}

// SetAdmin sets the admin flag, creating the row if needed.
func (t *Tx) SetAdmin(ctx context.Context, id uint64, admin bool) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO users (id, is_admin) VALUES (?, ?) ON DUPLICATE KEY UPDATE is_admin = ?`,
		id, admin, admin)
	return wrap("set admin", err)
}
