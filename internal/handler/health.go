package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler checks deps on readiness. Nil entries are skipped.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	clean := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			clean[name] = p
		}
	}
	return &HealthHandler{deps: clean}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness handles GET /readyz.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	resp := readinessResponse{Status: "ok", Dependencies: make(map[string]dependencyStatus, len(h.deps))}
	code := http.StatusOK
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			resp.Dependencies[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Dependencies[name] = dependencyStatus{Status: "ok"}
	}
	return c.JSON(code, resp)
}
