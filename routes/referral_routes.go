package routes

import (
	"github.com/asearnhub/earnhub-backend/handlers"
	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ReferralRoutes(app *fiber.App, h *handlers.ReferralHandler) {
	referrals := app.Group("/api/v1/referrals", middleware.Protected())
	referrals.Post("", h.Submit)
	referrals.Get("", h.List)
}
