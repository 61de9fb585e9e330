package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/safe-trail/internal/config"
	"github.com/deppfellow/safe-trail/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

// HealthCheck is the result of probing one dependency.
type HealthCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HealthResponse is served on /status.
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Storage     string                 `json:"storage"`
	Checks      map[string]HealthCheck `json:"checks"`
}

type HealthHandler struct {
	Handler
}

func NewHealthHandler(h Handler) *HealthHandler {
	return &HealthHandler{Handler: h}
}

// CheckHealth probes the database and Redis. Only a failing database makes
// the service unhealthy.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      statusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: cfg.Primary.Env,
		Storage:     cfg.Storage.Driver,
		Checks:      make(map[string]HealthCheck),
	}

	timeout := cfg.Observability.HealthChecks.Timeout

	if cfg.Observability.HasCheck("database") {
		switch {
		case h.server.DB != nil:
			check := h.probe(c.Request().Context(), timeout, "database", h.server.DB.Ping, &logger)
			if check.Status != statusHealthy {
				response.Status = statusUnhealthy
			}
			response.Checks["database"] = check
		case cfg.Storage.Driver == config.StorageDriverMemory:
			response.Checks["database"] = HealthCheck{Status: statusDisabled}
		}
	}

	if cfg.Observability.HasCheck("redis") {
		if h.server.Redis != nil {
			response.Checks["redis"] = h.probe(c.Request().Context(), timeout, "redis", func(ctx context.Context) error {
				return h.server.Redis.Ping(ctx).Err()
			}, &logger)
		} else {
			response.Checks["redis"] = HealthCheck{Status: statusDisabled}
		}
	}

	if response.Status != statusHealthy {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]any{
			"check_type":        "overall",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) probe(
	parent context.Context,
	timeout time.Duration,
	name string,
	ping func(ctx context.Context) error,
	logger *zerolog.Logger,
) HealthCheck {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	probeStart := time.Now()
	err := ping(ctx)
	elapsed := time.Since(probeStart)

	if err != nil {
		logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]any{
			"check_type":       name,
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return HealthCheck{
			Status:       statusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return HealthCheck{
		Status:       statusHealthy,
		ResponseTime: elapsed.String(),
	}
}

func (h *HealthHandler) recordHealthCheckError(attrs map[string]any) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	attrs["operation"] = "health_check"
	app.RecordCustomEvent("HealthCheckError", attrs)
}
