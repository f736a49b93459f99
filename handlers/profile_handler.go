package handlers

import (
	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/asearnhub/earnhub-backend/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	Ledger *services.LedgerService
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.Ledger.GetUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
