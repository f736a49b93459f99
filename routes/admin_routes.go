package routes

import (
	"github.com/asearnhub/earnhub-backend/handlers"
	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, h *handlers.AdminHandler) {
	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/withdrawals", h.ListWithdrawals)
	admin.Patch("/withdrawals/:id", h.ResolveWithdrawal)
}
