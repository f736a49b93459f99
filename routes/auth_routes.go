package routes

import (
	"github.com/asearnhub/earnhub-backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.AuthHandler) {
	auth := app.Group("/api/v1/auth")
	auth.Post("/telegram", h.TelegramSignIn)
	auth.Post("/login", h.AdminLogin)
}
