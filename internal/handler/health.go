package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/dealer-dashboard/internal/middleware"
	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/deppfellow/dealer-dashboard/internal/service"
	"github.com/labstack/echo/v4"
)

// healthCheckTimeout bounds the database ping of a health check.
const healthCheckTimeout = 5 * time.Second

// HealthHandler serves the liveness and uptime endpoints used by monitors.
type HealthHandler struct {
	Handler
	service *service.SystemService
}

func NewHealthHandler(s *server.Server, systemService *service.SystemService) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		service: systemService,
	}
}

// CheckHealth always answers 200 while the process is up. databaseConnected
// reports the ping result; the failure itself is only logged.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	status, err := h.service.Health(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Dur("response_time", time.Since(start)).
			Msg("database health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]any{
				"check_type":       "database",
				"operation":        "health_check",
				"response_time_ms": time.Since(start).Milliseconds(),
			})
		}
	} else {
		logger.Debug().
			Dur("response_time", time.Since(start)).
			Msg("database health check passed")
	}

	return c.JSON(http.StatusOK, status)
}

// Uptime handles GET /api/uptime.
func (h *HealthHandler) Uptime(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Uptime())
}
