package handlers

import (
	"context"
	"time"

	"pitwall/internal/app"
	"pitwall/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler reports liveness plus Postgres reachability. It is exempt from
// the rate limiter so probes never see 429.
func HealthHandler(router fiber.Router, app app.App) {
	log := logger.New("handlers").File("health_handler")

	router.Get("/health", func(c *fiber.Ctx) error {
		status, database := "ok", "skipped"

		if app.Database.SQL != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
			defer cancel()

			database = "ok"
			if err := app.Database.Ping(ctx); err != nil {
				log.Function("health").Er("database ping failed", err)
				status, database = "degraded", "unreachable"
				c.Status(fiber.StatusServiceUnavailable)
			}
		}

		return c.JSON(fiber.Map{
			"status":   status,
			"database": database,
			"version":  app.Config.GeneralVersion,
			"service":  "pitwall_api",
		})
	})
}
