// Package repository is the MySQL implementation of the booking gateway.
// Every method runs on the transaction opened by Store.WithinTx and maps
// driver failures onto the domain error categories: duplicate keys on
// booking inserts become model.ErrSlotTaken, deadlocks and lock-wait
// timeouts become model.ErrConflict, and missing rows become the
// matching not-found error.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// MySQL server error numbers handled explicitly.
const (
	errDupEntry        = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool {
	return mysqlErrNumber(err) == errDupEntry
}

// wrap annotates err with the failing operation. Lock contention is
// reported as a conflict so callers re-fetch and retry.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch mysqlErrNumber(err) {
	case errDeadlock, errLockWaitTimeout:
		return fmt.Errorf("%s: %w (%v)", op, model.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
