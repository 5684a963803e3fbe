package middleware

import (
	"time"

	"pitwall/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency per matched route
func (m *Middleware) Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}

		metrics.RecordHTTPRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
