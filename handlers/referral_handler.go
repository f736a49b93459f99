package handlers

import (
	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/asearnhub/earnhub-backend/services"
	"github.com/gofiber/fiber/v2"
)

type ReferralHandler struct {
	Ledger    *services.LedgerService
	Referrals *services.ReferralService
}

type ReferralSubmitRequest struct {
	Code      string `json:"code" validate:"required,max=40"`
	RequestID string `json:"request_id" validate:"omitempty,max=64"`
}

func (h *ReferralHandler) Submit(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req ReferralSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.Ledger.SubmitReferral(c.Context(), userID, req.Code, req.RequestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// List returns the referrer's paid-out bonuses plus the running count.
func (h *ReferralHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.Ledger.GetUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	earned, err := h.Referrals.ListEarned(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"referral_code":   user.ReferralCode,
		"referrals_count": user.ReferralsCount,
		"earned":          earned,
	})
}
