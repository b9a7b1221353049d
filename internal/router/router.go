// Package router registers the HTTP routes on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/dorm-booking/internal/handler"
)

// RegisterRoutes registers the unauthenticated probes and the Prometheus
// endpoint.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Liveness)
	e.GET("/readyz", h.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
