package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// BookingsHandler lists a resident's upcoming bookings of both kinds.
type BookingsHandler struct {
	laundry  LaundryBooker
	restroom RestroomBooker
}

func NewBookingsHandler(laundry LaundryBooker, restroom RestroomBooker) *BookingsHandler {
	return &BookingsHandler{laundry: laundry, restroom: restroom}
}

// Mine handles GET /v1/bookings.
func (h *BookingsHandler) Mine(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	laundry, err := h.laundry.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	restroom, err := h.restroom.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"laundry":  laundryResponses(laundry),
		"restroom": restroomResponses(restroom),
	})
}
