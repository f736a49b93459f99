package handlers

import (
	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/asearnhub/earnhub-backend/services"
	"github.com/gofiber/fiber/v2"
)

type WithdrawalHandler struct {
	Ledger *services.LedgerService
}

type WithdrawalRequest struct {
	Method    string `json:"method" validate:"required,oneof=BINANCE GOOGLE_PLAY"`
	Recipient string `json:"recipient" validate:"required,max=255"`
	RequestID string `json:"request_id" validate:"omitempty,max=64"`
}

func (h *WithdrawalHandler) Request(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req WithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.Ledger.RequestWithdrawal(c.Context(), userID, req.Method, req.Recipient, req.RequestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *WithdrawalHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	withdrawals, err := h.Ledger.ListWithdrawals(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(withdrawals)
}
