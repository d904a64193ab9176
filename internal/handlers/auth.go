package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/repositories"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/utils"
)

type AuthHandler struct {
	Users  *repositories.UsersRepository
	Tokens *services.TokenService
	JWT    config.JWTConfig
}

func NewAuthHandler(users *repositories.UsersRepository, tokens *services.TokenService, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, JWT: jwtCfg}
}

type tokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Token exchanges form credentials for a signed access token, setting it
// as an http-only cookie alongside the JSON response. Served on both
// /users/token and /login/api/access-token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "username and password are required")
	}

	user, err := h.Users.GetByUsername(c.Context(), req.Username)
	if err != nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		logger.Warn("login_failed", map[string]interface{}{
			"username": req.Username,
			"ip":       c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Incorrect username or password")
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		return utils.Fail(c, err, "failed issuing token")
	}

	expiry := time.Duration(h.JWT.ExpiryMinutes) * time.Minute
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Expires:  time.Now().Add(expiry),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	logger.InfoWithUser(user.ID.String(), "login_succeeded", map[string]interface{}{
		"username": user.Username,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// VerifyToken reports whether the presented token resolves to a user.
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Could not validate credentials, please login")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"valid": true,
		"user":  user,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Could not validate credentials, please login")
	}
	return utils.Success(c, fiber.StatusOK, user)
}
