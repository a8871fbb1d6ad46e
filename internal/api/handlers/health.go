// Package handlers implements HTTP handlers for the advisor API.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/collectwise/advisor/internal/store"
)

// HealthHandler provides health and readiness endpoints. These stay on
// plain Echo, outside the versioned API surface.
type HealthHandler struct {
	store   store.Store
	sources int
}

// NewHealthHandler creates a new HealthHandler. sources is the number
// of configured marketplaces, reported by the readiness probe.
func NewHealthHandler(s store.Store, sources int) *HealthHandler {
	return &HealthHandler{store: s, sources: sources}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Description Returns 200 if the process is running.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 with the configured marketplace count if the
// database is reachable, 503 otherwise.
//
// @Summary Readiness check
// @Description Returns 200 if the database is reachable, 503 otherwise.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(
			http.StatusServiceUnavailable,
			StatusResponse{Status: "unavailable"},
		)
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready", Sources: h.sources})
}
