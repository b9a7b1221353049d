package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// RequireRole aborts with 403 unless the role stored by JWTAuth is one of
// roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(KeyRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// AdminLookup reports whether a resident carries the admin flag.
type AdminLookup interface {
	IsAdmin(ctx context.Context, id uint64) (bool, error)
}

// RequireAdmin lets through ADMIN tokens and residents flagged as admins
// in storage. The flag is read on every request, so revoking it takes
// effect without reissuing tokens.
func RequireAdmin(lookup AdminLookup, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, _ := c.Get(KeyRole).(string); role == model.RoleAdmin {
				return next(c)
			}
			id, ok := c.Get(KeyUserID).(uint64)
			if !ok || lookup == nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			admin, err := lookup.IsAdmin(c.Request().Context(), id)
			if err != nil {
				log.Error().Err(err).Uint64("user_id", id).Msg("admin lookup failed")
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "admin check unavailable"})
			}
			if !admin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
