package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jmorris/officiantfinder/internal/store"
)

// AffiliationsHandler serves GET /api/affiliations
func AffiliationsHandler(lookups *store.LookupStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		affiliations, err := lookups.Affiliations(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error loading affiliations",
			})
		}

		return c.JSON(fiber.Map{
			"success":      true,
			"affiliations": affiliations,
		})
	}
}

// MunicipalitiesHandler serves GET /api/municipalities
func MunicipalitiesHandler(lookups *store.LookupStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		municipalities, err := lookups.Municipalities(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error loading municipalities",
			})
		}

		return c.JSON(fiber.Map{
			"success":        true,
			"municipalities": municipalities,
		})
	}
}
