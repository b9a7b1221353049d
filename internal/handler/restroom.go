package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// RestroomBooker is the lounge engine as seen by the HTTP layer.
type RestroomBooker interface {
	AvailableSlots(ctx context.Context, date time.Time) ([]string, error)
	RemainingWeeklyMinutes(ctx context.Context, userID uint64) (int, error)
	RemainingMinutesForDate(ctx context.Context, userID uint64, date time.Time) (int, error)
	Book(ctx context.Context, userID uint64, date time.Time, start string, duration int) (model.RestroomBooking, error)
	CancelForUser(ctx context.Context, userID, bookingID uint64) error
	ListForUser(ctx context.Context, userID uint64) ([]model.RestroomBooking, error)
}

// RestroomHandler serves the resident lounge routes.
type RestroomHandler struct {
	svc RestroomBooker
}

func NewRestroomHandler(svc RestroomBooker) *RestroomHandler {
	return &RestroomHandler{svc: svc}
}

// Slots handles GET /v1/restroom/slots?date=YYYY-MM-DD. Each free mark is
// returned as {"time": "HH:MM"}.
func (h *RestroomHandler) Slots(c echo.Context) error {
	date, err := dateQuery(c)
	if err != nil {
		return err
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"date": utils.FormatDate(date), "slots": timeSlots(slots)})
}

// Quota handles GET /v1/restroom/quota. With ?date= it reports the week
// containing that date instead of the current one.
func (h *RestroomHandler) Quota(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	var remaining int
	if c.QueryParam("date") != "" {
		date, err := dateQuery(c)
		if err != nil {
			return err
		}
		remaining, err = h.svc.RemainingMinutesForDate(ctx, userID, date)
		if err != nil {
			return err
		}
	} else {
		remaining, err = h.svc.RemainingWeeklyMinutes(ctx, userID)
		if err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"remaining_minutes": remaining})
}

// Book handles POST /v1/restroom/bookings.
func (h *RestroomHandler) Book(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req restroomBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return err
	}
	b, err := h.svc.Book(c.Request().Context(), userID, date, req.Start, req.Duration)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, restroomResponse(b))
}

// Cancel handles DELETE /v1/restroom/bookings/:id.
func (h *RestroomHandler) Cancel(c echo.Context) error {
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
