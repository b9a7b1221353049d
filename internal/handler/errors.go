package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// errorResponse is the JSON envelope of every API error.
type errorResponse struct {
	Error            string `json:"error"`
	Code             string `json:"code,omitempty"`
	RemainingMinutes *int   `json:"remaining_minutes,omitempty"`
}

// NewHTTPErrorHandler maps error categories to status codes:
// validation 400, not found 404, conflict 409, policy 422,
// persistence 503 and anything else 500. Server-side failures are logged
// and their details withheld.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, body := resolveError(err)
		if code >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", code).
				Msg("request failed")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprint(he.Message)}
	}

	var quota *model.QuotaExceededError
	if errors.As(err, &quota) {
		remaining := quota.Remaining
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "quota_exceeded", RemainingMinutes: &remaining}
	}

	switch {
	case errors.Is(err, model.ErrPersistence):
		return http.StatusServiceUnavailable, errorResponse{Error: "storage temporarily unavailable, retry later", Code: "persistence"}
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "validation"}
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"}
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: "conflict"}
	case errors.Is(err, model.ErrPolicyViolation):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "policy"}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
