package routes

import (
	"github.com/asearnhub/earnhub-backend/handlers"
	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func WithdrawalRoutes(app *fiber.App, h *handlers.WithdrawalHandler) {
	withdrawals := app.Group("/api/v1/withdrawals", middleware.Protected())
	withdrawals.Post("", h.Request)
	withdrawals.Get("", h.List)
}
