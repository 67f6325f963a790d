package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jmorris/officiantfinder/internal/store"
)

// OfficiantHandler serves GET /api/officiants/:id
func OfficiantHandler(officiants *store.OfficiantStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid officiant id",
			})
		}

		officiant, err := officiants.GetByID(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error loading officiant",
			})
		}
		if officiant == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Officiant not found",
			})
		}

		resp := fiber.Map{
			"id":           officiant.ID,
			"firstName":    officiant.FirstName,
			"lastName":     officiant.LastName,
			"municipality": officiant.Municipality,
			"affiliation":  officiant.Affiliation,
		}
		if officiant.Lat.Valid {
			resp["lat"] = officiant.Lat.Float64
		}
		if officiant.Lng.Valid {
			resp["lng"] = officiant.Lng.Float64
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"officiant": resp,
		})
	}
}
