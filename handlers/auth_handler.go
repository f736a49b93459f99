package handlers

import (
	"errors"
	"log"
	"time"

	config "github.com/asearnhub/earnhub-backend/configs"
	"github.com/asearnhub/earnhub-backend/models"
	"github.com/asearnhub/earnhub-backend/services"
	"github.com/asearnhub/earnhub-backend/verification"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type AuthHandler struct {
	Users    *services.UserService
	BotToken string
}

type TelegramAuthRequest struct {
	InitData string `json:"init_data" validate:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TelegramSignIn validates the mini-app's init data, fetches or creates the
// user and issues a session token.
func (h *AuthHandler) TelegramSignIn(c *fiber.Ctx) error {
	var req TelegramAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	webUser, err := verification.ParseInitData(req.InitData, h.BotToken)
	if err != nil {
		if errors.Is(err, verification.ErrInitDataSignature) || errors.Is(err, verification.ErrInitDataNoUser) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid Telegram init data"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed init data"})
	}

	user, err := h.Users.SignInTelegram(c.Context(), services.TelegramProfile{
		ID:        webUser.ID,
		Username:  webUser.Username,
		FirstName: webUser.FirstName,
		LastName:  webUser.LastName,
		PhotoURL:  webUser.PhotoURL,
	})
	if err != nil {
		log.Printf("telegram sign-in failed for %d: %v", webUser.ID, err)
		return respondError(c, err)
	}

	token, err := issueToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}

// AdminLogin authenticates the seeded admin account.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.Users.AuthenticateAdmin(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		return respondError(c, err)
	}

	token, err := issueToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
	}
	return c.JSON(fiber.Map{"token": token})
}

func issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Config("JWT_SECRET")))
}
