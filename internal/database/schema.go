package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/dorm-booking/internal/schedule"
)

// MachineCount is the number of laundry machines seeded on first start.
const MachineCount = 3

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGINT UNSIGNED NOT NULL,
		name_hash  CHAR(64)        NOT NULL DEFAULT '',
		is_admin   BOOLEAN         NOT NULL DEFAULT FALSE,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS laundry_machines (
		id     TINYINT UNSIGNED NOT NULL,
		status ENUM('active','inactive') NOT NULL DEFAULT 'active',
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS laundry_bookings (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id      BIGINT UNSIGNED NOT NULL,
		machine_id   TINYINT UNSIGNED NOT NULL,
		booking_date DATE NOT NULL,
		start_min    SMALLINT UNSIGNED NOT NULL,
		end_min      SMALLINT UNSIGNED NOT NULL,
		status       ENUM('active','cancelled') NOT NULL DEFAULT 'active',
		notified     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		active_slot  TINYINT AS (IF(status = 'active', 1, NULL)) STORED,
		PRIMARY KEY (id),
		UNIQUE KEY uq_laundry_active_slot (machine_id, booking_date, start_min, active_slot),
		KEY idx_laundry_user_date (user_id, booking_date, status),
		KEY idx_laundry_due (status, notified, booking_date),
		CONSTRAINT fk_laundry_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_laundry_machine FOREIGN KEY (machine_id) REFERENCES laundry_machines (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS restroom_bookings (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id      BIGINT UNSIGNED NOT NULL,
		booking_date DATE NOT NULL,
		start_min    SMALLINT UNSIGNED NOT NULL,
		end_min      SMALLINT UNSIGNED NOT NULL,
		duration     SMALLINT UNSIGNED NOT NULL,
		status       ENUM('active','cancelled') NOT NULL DEFAULT 'active',
		notified     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_restroom_date (booking_date, status),
		KEY idx_restroom_user (user_id, booking_date, status),
		CONSTRAINT fk_restroom_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS restroom_slot_claims (
		booking_date DATE NOT NULL,
		slot_min     SMALLINT UNSIGNED NOT NULL,
		booking_id   BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (booking_date, slot_min),
		KEY idx_claim_booking (booking_id),
		CONSTRAINT fk_claim_booking FOREIGN KEY (booking_id) REFERENCES restroom_bookings (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS restroom_quotas (
		user_id      BIGINT UNSIGNED NOT NULL,
		iso_year     SMALLINT UNSIGNED NOT NULL,
		iso_week     TINYINT UNSIGNED NOT NULL,
		used_minutes INT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, iso_year, iso_week),
		CONSTRAINT fk_quota_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS schedule_settings (
		name        VARCHAR(64)  NOT NULL,
		value       VARCHAR(255) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		PRIMARY KEY (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables and seeds the machines and default
// settings. Existing rows are left untouched, so it is safe on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	for id := 1; id <= MachineCount; id++ {
		if _, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO laundry_machines (id, status) VALUES (?, 'active')`, id); err != nil {
			return fmt.Errorf("seed machine %d: %w", id, err)
		}
	}
	for _, s := range schedule.Defaults() {
		if _, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO schedule_settings (name, value, description) VALUES (?, ?, ?)`,
			s.Name, s.Value, s.Description); err != nil {
			return fmt.Errorf("seed setting %s: %w", s.Name, err)
		}
	}
	return nil
}
