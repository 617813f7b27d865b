package api

import (
	"context"
	"net/http"
	"time"

	domsvc "PriceSignal/internal/domain/service"
	xhttp "PriceSignal/pkg/http"
	xlogger "PriceSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

const ServiceName = "price-signal-api"

// HealthEchoHandler reports liveness plus store reachability.
type HealthEchoHandler struct {
	logger  *xlogger.Logger
	engine  domsvc.PriceAnalytics
	timeout time.Duration
}

func NewHealthEchoHandler(logger *xlogger.Logger, engine domsvc.PriceAnalytics) *HealthEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &HealthEchoHandler{logger: logger, engine: engine, timeout: 2 * time.Second}
}

func (h *HealthEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *HealthEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res := xhttp.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
	}
	if err := h.engine.Health(ctx); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		res.Status = "degraded"
		return c.JSON(http.StatusServiceUnavailable, res)
	}
	return xhttp.SuccessResponse(c, res)
}
