package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-booking/internal/handler"
	"github.com/iliyamo/dorm-booking/internal/middleware"
	"github.com/iliyamo/dorm-booking/internal/model"
)

// ResidentHandlers groups the handlers behind /v1.
type ResidentHandlers struct {
	Users    *handler.UserHandler
	Laundry  *handler.LaundryHandler
	Restroom *handler.RestroomHandler
	Bookings *handler.BookingsHandler
}

// RegisterResident mounts the resident API under /v1. Every route needs a
// valid token; booking mutations also pass limit.
func RegisterResident(e *echo.Echo, h ResidentHandlers, jwtSecret string, limit echo.MiddlewareFunc) *echo.Group {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleResident, model.RoleAdmin))

	g.POST("/users", h.Users.Register, limit)
	g.GET("/me", h.Users.Me)

	g.GET("/laundry/machines", h.Laundry.Machines)
	g.GET("/laundry/slots", h.Laundry.Slots)
	g.POST("/laundry/bookings", h.Laundry.Book, limit)
	g.DELETE("/laundry/bookings/:id", h.Laundry.Cancel, limit)

	g.GET("/restroom/slots", h.Restroom.Slots)
	g.GET("/restroom/quota", h.Restroom.Quota)
	g.POST("/restroom/bookings", h.Restroom.Book, limit)
	g.DELETE("/restroom/bookings/:id", h.Restroom.Cancel, limit)

	g.GET("/bookings", h.Bookings.Mine)
	return g
}
