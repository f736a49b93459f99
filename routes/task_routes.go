package routes

import (
	"github.com/asearnhub/earnhub-backend/handlers"
	"github.com/asearnhub/earnhub-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func TaskRoutes(app *fiber.App, h *handlers.TaskHandler) {
	api := app.Group("/api/v1", middleware.Protected())

	tasks := api.Group("/tasks")
	tasks.Post("/checkin", h.Checkin)
	tasks.Post("/ad", h.ViewAd)
	tasks.Post("/channel-join", h.JoinChannel)
	tasks.Get("", h.History)
	tasks.Get("/today", h.Today)

	api.Get("/channels", h.ListChannels)
}
