package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userKey returns the authenticated resident id as a string, or "anon".
func userKey(c echo.Context) string {
	if id, ok := c.Get(KeyUserID).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
