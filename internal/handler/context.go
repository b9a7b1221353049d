package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-booking/internal/middleware"
	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// currentUser returns the resident id stored by middleware.JWTAuth.
func currentUser(c echo.Context) (uint64, error) {
	id, ok := c.Get(middleware.KeyUserID).(uint64)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

func currentRole(c echo.Context) string {
	role, _ := c.Get(middleware.KeyRole).(string)
	return role
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("invalid request body: %w", model.ErrValidation)
	}
	return c.Validate(req)
}

func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, model.ErrValidation)
	}
	return id, nil
}

func machineParam(s string) (uint8, error) {
	id, err := strconv.ParseUint(s, 10, 8)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid machine %q: %w", s, model.ErrValidation)
	}
	return uint8(id), nil
}

func dateQuery(c echo.Context) (time.Time, error) {
	d := c.QueryParam("date")
	if d == "" {
		return time.Time{}, fmt.Errorf("date is required: %w", model.ErrValidation)
	}
	return utils.ParseDate(d)
}

func resourceParam(s string) (model.Resource, error) {
	r := model.Resource(s)
	if !r.Valid() {
		return "", fmt.Errorf("type must be laundry or restroom: %w", model.ErrValidation)
	}
	return r, nil
}
