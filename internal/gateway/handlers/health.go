package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe reports that the gateway process is up.
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe reports readiness to serve. The gateway is only
// useful when the processor behind it answers, so readiness pings
// its liveness endpoint.
func ReadinessProbe(processorURL string) fiber.Handler {
	client := &http.Client{Timeout: 2 * time.Second}

	return func(c fiber.Ctx) error {
		resp, err := client.Get(processorURL + "/health/live")
		if err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "degraded",
				"processor": "unreachable",
			})
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "degraded",
				"processor": resp.Status,
			})
		}
		return c.JSON(fiber.Map{
			"status":    "ready",
			"processor": "ok",
		})
	}
}

// StartupProbe reports that startup finished.
func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}
