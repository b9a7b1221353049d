package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// Settings returns every setting as a name/value map.
func (t *Tx) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT name, value FROM schedule_settings`)
	if err != nil {
		return nil, wrap("read settings", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, wrap("scan setting", err)
		}
		out[name] = value
	}
	return out, wrap("read settings", rows.Err())
}

// ListSettings returns every setting with its description, ordered by name.
func (t *Tx) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT name, value, description FROM schedule_settings ORDER BY name`)
	if err != nil {
		return nil, wrap("list settings", err)
	}
	defer rows.Close()

	var out []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Name, &s.Value, &s.Description); err != nil {
			return nil, wrap("scan setting", err)
		}
		out = append(out, s)
	}
	return out, wrap("list settings", rows.Err())
}

// GetSetting fetches one setting by name.
func (t *Tx) GetSetting(ctx context.Context, name string) (model.Setting, error) {
	var s model.Setting
	err := t.tx.QueryRowContext(ctx,
		`SELECT name, value, description FROM schedule_settings WHERE name = ?`, name).
		Scan(&s.Name, &s.Value, &s.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Setting{}, model.ErrSettingNotFound
	}
	return s, wrap("get setting", err)
}

// UpsertSetting creates or overwrites a setting. An empty description
// keeps the stored one.
func (t *Tx) UpsertSetting(ctx context.Context, s model.Setting) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO schedule_settings (name, value, description) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = ?, description = IF(? = '', description, ?)`,
		s.Name, s.Value, s.Description, s.Value, s.Description, s.Description)
	return wrap("upsert setting", err)
}
