package handlers

import (
	"log"
	"strconv"

	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/asearnhub/earnhub-backend/services"
	"github.com/asearnhub/earnhub-backend/verification"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TaskHandler struct {
	Ledger    *services.LedgerService
	Referrals *services.ReferralService
	Verifier  verification.ChannelVerifier
	Ads       *verification.AdConfirmer
	Channels  []string
	AdZone    string
}

type CheckinRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,max=64"`
}

func (h *TaskHandler) Checkin(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req CheckinRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.Ledger.CheckIn(c.Context(), userID, req.RequestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

type AdViewRequest struct {
	Nonce     string `json:"nonce" validate:"required,max=64"`
	AdToken   string `json:"ad_token" validate:"required"`
	RequestID string `json:"request_id" validate:"omitempty,max=64"`
}

// ViewAd credits one ad view after checking the ad network's completion
// signature. Credit is never granted on the client's word alone.
func (h *TaskHandler) ViewAd(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req AdViewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !h.Ads.Verify(userID.String(), req.Nonce, req.AdToken) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "ad completion could not be confirmed",
			"reason": services.ReasonAdNotConfirmed,
		})
	}

	result, err := h.Ledger.ViewAd(c.Context(), userID, h.AdZone, req.Nonce, req.RequestID)
	if err != nil {
		return respondError(c, err)
	}

	h.reconcile(c, userID)
	return c.JSON(result)
}

type ChannelJoinRequest struct {
	Channel   string `json:"channel" validate:"required,max=512"`
	RequestID string `json:"request_id" validate:"omitempty,max=64"`
}

func (h *TaskHandler) JoinChannel(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req ChannelJoinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !h.isConfiguredChannel(req.Channel) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown channel task"})
	}

	user, err := h.Ledger.GetUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	joined, err := h.Verifier.IsMember(c.Context(), req.Channel, user.TelegramID)
	if err != nil {
		log.Printf("channel membership check failed for %s: %v", req.Channel, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "membership verification unavailable"})
	}
	if !joined {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "channel membership not confirmed",
			"reason": services.ReasonNotChannelMember,
		})
	}

	result, err := h.Ledger.JoinChannel(c.Context(), userID, req.Channel, req.RequestID)
	if err != nil {
		return respondError(c, err)
	}

	h.reconcile(c, userID)
	return c.JSON(result)
}

// reconcile kicks the referral reconciler after a qualifying task commit.
// Failures are logged only; the cron sweep retries later.
func (h *TaskHandler) reconcile(c *fiber.Ctx, userID uuid.UUID) {
	if err := h.Referrals.ReconcileFor(c.Context(), userID); err != nil {
		log.Printf("referral reconcile for %s failed: %v", userID, err)
	}
}

func (h *TaskHandler) isConfiguredChannel(link string) bool {
	for _, ch := range h.Channels {
		if ch == link {
			return true
		}
	}
	return false
}

func (h *TaskHandler) History(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid limit parameter"})
		}
	}

	tasks, err := h.Ledger.ListTasks(c.Context(), userID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) Today(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	earnings, err := h.Ledger.TodayEarnings(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(earnings)
}

type ChannelTaskView struct {
	Link    string  `json:"link"`
	Reward  float64 `json:"reward"`
	Claimed bool    `json:"claimed"`
}

// ListChannels returns the configured channel tasks with this user's
// completion state, for the task list screen.
func (h *TaskHandler) ListChannels(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	claimed, err := h.Ledger.CompletedChannelLinks(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	views := make([]ChannelTaskView, 0, len(h.Channels))
	for _, link := range h.Channels {
		views = append(views, ChannelTaskView{
			Link:    link,
			Reward:  services.ChannelJoinReward,
			Claimed: claimed[link],
		})
	}
	return c.JSON(views)
}
