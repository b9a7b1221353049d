package repository

import (
	"strings"
	"testing"
)

func TestLockUserQueryTakesExclusiveLock(t *testing.T) {
	q := strings.ToUpper(lockUserQuery)
	if !strings.Contains(q, "ON DUPLICATE KEY UPDATE") {
		t.Fatalf("lock statement must lock existing rows exclusively: %s", lockUserQuery)
	}
	if strings.Contains(q, "IGNORE") {
		t.Fatalf("INSERT IGNORE only takes a shared lock on an existing row: %s", lockUserQuery)
	}
	if strings.Count(q, "?") != 1 {
		t.Fatalf("expected a single id placeholder: %s", lockUserQuery)
	}
}
