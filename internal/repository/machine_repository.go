package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// ListMachines returns all machines ordered by id.
func (t *Tx) ListMachines(ctx context.Context) ([]model.Machine, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, status FROM laundry_machines ORDER BY id`)
	if err != nil {
		return nil, wrap("list machines", err)
	}
	defer rows.Close()

	var out []model.Machine
	for rows.Next() {
		var m model.Machine
		if err := rows.Scan(&m.ID, &m.Status); err != nil {
			return nil, wrap("scan machine", err)
		}
		out = append(out, m)
	}
	return out, wrap("list machines", rows.Err())
}

// GetMachine fetches one machine, optionally locking its row.
func (t *Tx) GetMachine(ctx context.Context, id uint8, lock bool) (model.Machine, error) {
	var m model.Machine
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, status FROM laundry_machines WHERE id = ?`+forUpdate(lock), id).Scan(&m.ID, &m.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Machine{}, model.ErrMachineNotFound
	}
	return m, wrap("get machine", err)
}

// SetMachineStatus updates a machine's status.
func (t *Tx) SetMachineStatus(ctx context.Context, id uint8, status model.MachineStatus) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE laundry_machines SET status = ? WHERE id = ?`, status, id)
	return wrap("set machine status", err)
}
