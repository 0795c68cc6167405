package handlers

import (
	"moonex/internal/repositories"
	"moonex/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports liveness of the API and its backing stores.
func HealthCheck(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":   "ok",
		"database": "up",
		"cache":    "up",
	}
	healthy := true

	sqlDB, err := repositories.DB.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		status["database"] = "down"
		healthy = false
	}

	if repositories.CacheService == nil || repositories.CacheService.HealthCheck(c.Context()) != nil {
		status["cache"] = "down"
		healthy = false
	}

	if !healthy {
		status["status"] = "degraded"
		return utils.Respond(c, fiber.StatusServiceUnavailable, status)
	}

	return utils.Success(c, status)
}
