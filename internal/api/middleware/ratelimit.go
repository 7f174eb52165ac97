package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jinlabs/users-management/internal/core/ports"
	"github.com/jinlabs/users-management/internal/pkg/metrics"
)

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects requests over the per-IP budget with 429. Limiter errors
// let the request through.
func RateLimit(l Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			ok, err := l.Allow(c.Request().Context(), ip)
			if err != nil {
				log.Warn().Err(err).Str("remote_ip", ip).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				metrics.RateLimitedTotal.Inc()
				return c.JSON(http.StatusTooManyRequests, ports.Result{
					StatusCode: http.StatusTooManyRequests,
					Error:      "too many requests",
				})
			}
			return next(c)
		}
	}
}
