package handlers

import (
	"errors"

	"github.com/asearnhub/earnhub-backend/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

// respondError maps engine errors onto the API contract: denials are 422
// with the reason code, lost races are 409 and retryable, everything else
// is a 500.
func respondError(c *fiber.Ctx, err error) error {
	if d, ok := services.AsDenied(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  d.Message,
			"reason": d.Reason,
		})
	}
	if errors.Is(err, services.ErrConflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "concurrent update, please retry",
		})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server error"})
}
