package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// echoValidator lets handlers call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator installed on echo.Echo. Besides the
// stock tags it knows "hhmm" (a 24h HH:MM clock) and "isodate"
// (YYYY-MM-DD).
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := utils.TimeToMinutes(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	})
	return &echoValidator{v: v}
}

// Validate reports every failed field at once, wrapped as a validation
// error.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%v: %w", err, model.ErrValidation)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), model.ErrValidation)
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "hhmm":
		return field + " must be HH:MM"
	case "isodate":
		return field + " must be YYYY-MM-DD"
	case "gt", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
