package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jmorris/officiantfinder/internal/search"
)

const (
	defaultRadiusKm = 50
	defaultLimit    = 50
)

// SearchHandler serves GET /api/search
func SearchHandler(planner *search.Planner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		req := search.Request{
			Location:    c.Query("location"),
			Affiliation: c.Query("affiliation"),
			Query:       c.Query("q"),
			RadiusKm:    float64(c.QueryInt("radius", defaultRadiusKm)),
			Limit:       c.QueryInt("limit", defaultLimit),
			Offset:      c.QueryInt("offset", 0),
		}

		// Explicit coordinates bypass geocoding
		if lat, err := strconv.ParseFloat(c.Query("lat"), 64); err == nil {
			if lng, err := strconv.ParseFloat(c.Query("lng"), 64); err == nil {
				req.Lat = &lat
				req.Lng = &lng
			}
		}

		result, err := planner.Search(ctx, req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Search failed",
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"results": result.Results,
			"count":   len(result.Results),
			"total":   result.Total,
			"params": fiber.Map{
				"location":    req.Location,
				"radius":      req.RadiusKm,
				"affiliation": req.Affiliation,
			},
		})
	}
}
