package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jmorris/officiantfinder/internal/service"
	"github.com/jmorris/officiantfinder/internal/store"
)

// SyncTriggerHandler serves POST /api/admin/sync. The sync runs inline;
// concurrent attempts get a 409.
func SyncTriggerHandler(syncer *service.Syncer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		stats, err := syncer.Run(ctx)
		if err != nil {
			if errors.Is(err, service.ErrSyncRunning) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"success": false,
					"error":   "A sync is already running",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"stats":    stats,
			"duration": stats.Duration.String(),
		})
	}
}

// SyncStatusHandler serves GET /api/admin/sync with the latest run record
func SyncStatusHandler(runs *store.SyncRunStore, syncer *service.Syncer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		// Reclassifies a stale "running" row as failed before reporting
		running, err := syncer.IsSyncRunning(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error reading sync status",
			})
		}

		latest, err := runs.LatestRun(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error reading sync status",
			})
		}

		resp := fiber.Map{
			"success": true,
			"running": running,
		}
		if latest != nil {
			run := fiber.Map{
				"id":            latest.ID,
				"status":        latest.Status,
				"startedAt":     latest.StartedAt,
				"totalFetched":  latest.TotalFetched,
				"totalInserted": latest.TotalInserted,
				"totalUpdated":  latest.TotalUpdated,
			}
			if latest.CompletedAt.Valid {
				run["completedAt"] = latest.CompletedAt.Time
			}
			if latest.ErrorMessage.Valid {
				run["error"] = latest.ErrorMessage.String
			}
			resp["lastRun"] = run
		}

		return c.JSON(resp)
	}
}
