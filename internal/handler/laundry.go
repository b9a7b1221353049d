package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// LaundryBooker is the laundry engine as seen by the HTTP layer.
type LaundryBooker interface {
	AvailableMachines(ctx context.Context) ([]uint8, error)
	AvailableSlots(ctx context.Context, date time.Time, machineID uint8) ([]string, error)
	Book(ctx context.Context, userID uint64, machineID uint8, date time.Time, start string) (model.LaundryBooking, error)
	CancelForUser(ctx context.Context, userID, bookingID uint64) error
	ListForUser(ctx context.Context, userID uint64) ([]model.LaundryBooking, error)
}

// LaundryHandler serves the resident laundry routes.
type LaundryHandler struct {
	svc LaundryBooker
}

func NewLaundryHandler(svc LaundryBooker) *LaundryHandler {
	return &LaundryHandler{svc: svc}
}

// Machines handles GET /v1/laundry/machines.
func (h *LaundryHandler) Machines(c echo.Context) error {
	ids, err := h.svc.AvailableMachines(c.Request().Context())
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []uint8{}
	}
	// encoding/json renders []uint8 as base64.
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return c.JSON(http.StatusOK, echo.Map{"machines": out})
}

// Slots handles GET /v1/laundry/slots?date=YYYY-MM-DD&machine=N.
func (h *LaundryHandler) Slots(c echo.Context) error {
	date, err := dateQuery(c)
	if err != nil {
		return err
	}
	machine, err := machineParam(c.QueryParam("machine"))
	if err != nil {
		return err
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), date, machine)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":    utils.FormatDate(date),
		"machine": machine,
		"slots":   emptyIfNil(slots),
	})
}

// Book handles POST /v1/laundry/bookings.
func (h *LaundryHandler) Book(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req laundryBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return err
	}
	b, err := h.svc.Book(c.Request().Context(), userID, req.Machine, date, req.Start)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, laundryResponse(b))
}

// Cancel handles DELETE /v1/laundry/bookings/:id. Residents can only
// cancel their own bookings.
func (h *LaundryHandler) Cancel(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.CancelForUser(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
