package main

import (
	"log"
	"strings"
	"time"

	config "github.com/asearnhub/earnhub-backend/configs"
	"github.com/asearnhub/earnhub-backend/database"
	"github.com/asearnhub/earnhub-backend/handlers"
	"github.com/asearnhub/earnhub-backend/jobs"
	"github.com/asearnhub/earnhub-backend/routes"
	"github.com/asearnhub/earnhub-backend/services"
	"github.com/asearnhub/earnhub-backend/verification"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	db, err := database.Connect(config.Config("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.SeedAdmin(db, config.Config("ADMIN_EMAIL"), config.Config("ADMIN_PASSWORD")); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	botToken := config.Config("TELEGRAM_BOT_TOKEN")
	verifier, err := verification.NewBotVerifier(botToken)
	if err != nil {
		log.Fatalf("Failed to create channel verifier: %v", err)
	}

	userService := services.NewUserService(db)
	ledgerService := services.NewLedgerService(db)
	referralService := services.NewReferralService(db)

	authHandler := &handlers.AuthHandler{Users: userService, BotToken: botToken}
	taskHandler := &handlers.TaskHandler{
		Ledger:    ledgerService,
		Referrals: referralService,
		Verifier:  verifier,
		Ads:       verification.NewAdConfirmer(config.Config("AD_POSTBACK_SECRET")),
		Channels:  splitChannels(config.Config("CHANNEL_TASKS")),
		AdZone:    config.Config("AD_ZONE_ID"),
	}
	referralHandler := &handlers.ReferralHandler{Ledger: ledgerService, Referrals: referralService}
	withdrawalHandler := &handlers.WithdrawalHandler{Ledger: ledgerService}
	profileHandler := &handlers.ProfileHandler{Ledger: ledgerService}
	adminHandler := &handlers.AdminHandler{Ledger: ledgerService}

	c := cron.New()
	c.AddFunc("*/10 * * * *", (&jobs.ReconcileJob{Referrals: referralService}).Run)
	go c.Start()
	log.Println("Cron job for referral reconciliation scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "AS Earn Hub",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.AuthRoutes(app, authHandler)
	routes.ProfileRoutes(app, profileHandler)
	routes.TaskRoutes(app, taskHandler)
	routes.ReferralRoutes(app, referralHandler)
	routes.WithdrawalRoutes(app, withdrawalHandler)
	routes.AdminRoutes(app, adminHandler)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	port := config.Config("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func splitChannels(raw string) []string {
	var channels []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			channels = append(channels, trimmed)
		}
	}
	return channels
}
