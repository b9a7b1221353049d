package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/dorm-booking/internal/service"
)

// Store opens gateway transactions on a MySQL pool.
type Store struct{ DB *sql.DB }

// NewStore wraps an open pool.
func NewStore(db *sql.DB) *Store { return &Store{DB: db} }

var _ service.Gateway = (*Store)(nil)

// WithinTx runs fn in a READ COMMITTED transaction. Each statement sees
// rows committed before it started, so checks made after LockUser
// observe everything committed by the previous holder of the lock. The
// transaction is rolled back unless fn returns nil and the commit
// succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(tx service.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return wrap("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit", err)
	}
	committed = true
	return nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("mysql ping: %w", err)
	}
	return nil
}

// Tx implements service.Tx on one *sql.Tx. Its methods are spread over
// the *_repository.go files, one per table.
type Tx struct{ tx *sql.Tx }

var _ service.Tx = (*Tx)(nil)

func forUpdate(lock bool) string {
	if lock {
		return " FOR UPDATE"
	}
	return ""
}

func sqlDate(d interface{ Format(string) string }) string {
	return d.Format("2006-01-02")
}
