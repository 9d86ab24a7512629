package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports whether the gateway and its backing store are up.
// Returns 503 when the store cannot be reached.
func (h *ApplicationHandler) HealthCheck(c *fiber.Ctx) error {
	if err := h.Health.Ping(c.Context()); err != nil {
		h.Logger.WithField("error", err.Error()).Error("Health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
