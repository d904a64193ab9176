package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/utils"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

// TokenCookieName is the http-only cookie carrying the signed access token.
const TokenCookieName = "access_token"

type AuthMiddleware struct {
	DB     *gorm.DB
	Tokens *services.TokenService
}

func NewAuthMiddleware(db *gorm.DB, tokens *services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{DB: db, Tokens: tokens}
}

func CORS(cfg config.ServerConfig) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
	})
}

// tokenFromRequest reads the access token from the auth cookie, falling
// back to an Authorization bearer header.
func tokenFromRequest(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(TokenCookieName)); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if token == authHeader {
		return ""
	}
	return token
}

func (a *AuthMiddleware) resolveUser(c *fiber.Ctx) (*models.User, error) {
	token := tokenFromRequest(c)
	if token == "" {
		return nil, fiber.ErrUnauthorized
	}

	claims, err := a.Tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := a.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	user, err := a.resolveUser(c)
	if err != nil {
		logger.Warn("auth_failed", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Could not validate credentials, please login")
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

// OptionalAuth resolves the current user when a valid token is present and
// continues anonymously otherwise.
func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	if user, err := a.resolveUser(c); err == nil {
		c.Locals(currentUserKey, user)
	}
	return c.Next()
}

func AdminOnly(c *fiber.Ctx) error {
	user := GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Could not validate credentials, please login")
	}
	if !user.Role.IsAdmin() {
		return utils.Error(c, fiber.StatusForbidden, "Not enough permissions")
	}
	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
