package ratelimit

import (
	"github.com/labstack/echo/v4"

	xhttp "PriceSignal/pkg/http"
)

// Middleware rejects requests with 429 once the client's bucket is empty.
// Clients are keyed by echo's RealIP.
func Middleware(l *Limiter, skip func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}
			if !l.Allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", "1")
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
			}
			return next(c)
		}
	}
}
