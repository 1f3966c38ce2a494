package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/deal-notifier/internal/state"
)

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	pinger state.Pinger
}

// NewHealthHandler creates a new HealthHandler. A nil pinger means the state
// store is local and readiness only reflects the process.
func NewHealthHandler(p state.Pinger) *HealthHandler {
	return &HealthHandler{pinger: p}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if the state store is reachable, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
