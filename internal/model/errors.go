package model

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the booking engines wraps
// exactly one of these so callers can branch with errors.Is.
var (
	// ErrValidation marks malformed input. Retrying the same request fails again.
	ErrValidation = errors.New("validation error")
	// ErrConflict marks a lost race or a taken slot. Re-fetch availability and retry.
	ErrConflict = errors.New("conflict")
	// ErrPolicyViolation marks a request refused by a booking rule.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrNotFound marks a missing or already cancelled booking.
	ErrNotFound = errors.New("not found")
	// ErrPersistence marks a transient storage failure. The whole operation is safe to retry.
	ErrPersistence = errors.New("persistence error")
)

var (
	ErrSlotTaken          = fmt.Errorf("slot already taken: %w", ErrConflict)
	ErrDailyCapExceeded   = fmt.Errorf("daily booking limit reached: %w", ErrPolicyViolation)
	ErrMachineUnavailable = fmt.Errorf("machine is not available: %w", ErrPolicyViolation)
	ErrQuotaExceeded      = fmt.Errorf("weekly quota exceeded: %w", ErrPolicyViolation)

	ErrBookingNotFound = fmt.Errorf("booking not found: %w", ErrNotFound)
	ErrMachineNotFound = fmt.Errorf("machine not found: %w", ErrNotFound)
	ErrSettingNotFound = fmt.Errorf("setting not found: %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user not found: %w", ErrNotFound)

	ErrPastDate        = fmt.Errorf("date is in the past: %w", ErrValidation)
	ErrInvalidDuration = fmt.Errorf("duration must be 30, 60, 90 or 120 minutes: %w", ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("unknown machine status: %w", ErrValidation)
	ErrInvalidSetting  = fmt.Errorf("invalid setting value: %w", ErrValidation)
	ErrOutsideGrid     = fmt.Errorf("interval does not fit the booking grid: %w", ErrValidation)
)

// QuotaExceededError is returned when a lounge booking would push the
// resident past the weekly ceiling. Remaining is what is still bookable.
type QuotaExceededError struct {
	Remaining int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("weekly quota exceeded: %d minutes remaining", e.Remaining)
}

// Is lets errors.Is match both ErrQuotaExceeded and ErrPolicyViolation.
func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded || target == ErrPolicyViolation
}

// Persistence wraps a storage failure into the persistence category
// unless it already carries a domain category.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range []error{ErrValidation, ErrConflict, ErrPolicyViolation, ErrNotFound, ErrPersistence} {
		if errors.Is(err, c) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
