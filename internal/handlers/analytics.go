package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jmorris/officiantfinder/internal/service"
)

// AnalyticsHandler serves GET /api/admin/analytics
func AnalyticsHandler(stats *service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		directoryStats, err := stats.Calculate(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error calculating analytics",
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"stats":   directoryStats,
		})
	}
}
