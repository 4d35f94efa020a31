package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"business-bot/models"
	"business-bot/services"
)

type createBusinessRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Contact     models.BusinessContact `json:"contact"`
}

// CreateBusiness registers a directory entry owned by the caller
func CreateBusiness(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req createBusinessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Business name is required",
		})
	}

	business := &models.Business{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Contact:     req.Contact,
	}

	if err := services.CreateBusiness(c.Context(), business); err != nil {
		slog.Error("Failed to create business", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create business",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"business": business,
	})
}

// GetBusiness returns a single directory entry
func GetBusiness(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	business, err := services.GetBusiness(c.Context(), businessID)
	if err != nil {
		slog.Error("Failed to get business", "error", err, "businessID", businessID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve business",
		})
	}
	if business == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Business not found",
		})
	}

	return c.JSON(fiber.Map{
		"business": business,
	})
}

// GetMyBusinesses lists the businesses the caller owns
func GetMyBusinesses(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	businesses, err := services.GetBusinessesByOwner(c.Context(), userID)
	if err != nil {
		slog.Error("Failed to list businesses", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve businesses",
		})
	}

	return c.JSON(fiber.Map{
		"businesses": businesses,
	})
}
