package routes

import (
	"github.com/asearnhub/earnhub-backend/handlers"
	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, h *handlers.ProfileHandler) {
	api := app.Group("/api/v1", middleware.Protected())
	api.Get("/me", h.Me)
}
