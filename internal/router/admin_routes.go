package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-booking/internal/handler"
)

// RegisterAdmin mounts the admin API under the resident group, so JWTAuth
// has already run. guard decides who is an admin; cache fronts the
// reporting route.
func RegisterAdmin(v1 *echo.Group, a *handler.AdminHandler, guard, cache echo.MiddlewareFunc) {
	g := v1.Group("/admin", guard)

	g.GET("/machines", a.Machines)
	g.PUT("/machines/:id", a.SetMachine)
	g.POST("/machines/:id/toggle", a.ToggleMachine)

	g.GET("/bookings", a.Bookings)
	g.DELETE("/bookings/:type/:id", a.CancelBooking)

	g.GET("/stats", a.Stats, cache)

	g.GET("/settings", a.Settings)
	g.GET("/settings/:name", a.GetSetting)
	g.PUT("/settings/:name", a.PutSetting)
	g.POST("/settings/reset", a.ResetSettings)
}
