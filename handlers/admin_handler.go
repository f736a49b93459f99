package handlers

import (
	"github.com/asearnhub/earnhub-backend/models"
	"github.com/asearnhub/earnhub-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	Ledger *services.LedgerService
}

func (h *AdminHandler) ListWithdrawals(c *fiber.Ctx) error {
	status := c.Query("status")
	switch status {
	case "", models.WithdrawalStatusPending, models.WithdrawalStatusSuccessful, models.WithdrawalStatusRejected:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
	}

	withdrawals, err := h.Ledger.ListWithdrawalsByStatus(c.Context(), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(withdrawals)
}

type ResolveWithdrawalRequest struct {
	Status    string `json:"status" validate:"required,oneof=SUCCESSFUL REJECTED"`
	AdminNote string `json:"admin_note" validate:"omitempty,max=1000"`
}

// ResolveWithdrawal applies the admin's manual decision. A rejection
// credits the debited points back to the user.
func (h *AdminHandler) ResolveWithdrawal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid withdrawal ID"})
	}

	var req ResolveWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	withdrawal, err := h.Ledger.ResolveWithdrawal(c.Context(), id, req.Status, req.AdminNote)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(withdrawal)
}
