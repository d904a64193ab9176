package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/internal/repositories"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/utils"
)

type UsersHandler struct {
	Repo *repositories.UsersRepository
}

func NewUsersHandler(repo *repositories.UsersRepository) *UsersHandler {
	return &UsersHandler{Repo: repo}
}

type createUserRequest struct {
	Email    string          `json:"email"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

// Register creates a user account. Anonymous callers may register regular
// accounts; creating a superadmin requires a superadmin actor.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email, username and password are required")
	}

	user, err := h.Repo.Create(c.Context(), repositories.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	}, middleware.GetCurrentUser(c))
	if err != nil {
		return utils.Fail(c, err, "failed creating user")
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
	})

	return utils.Success(c, fiber.StatusCreated, user)
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)

	users, total, err := h.Repo.List(c.Context(), p)
	if err != nil {
		return utils.Fail(c, err, "failed listing users")
	}

	return utils.Paginated(c, users, p.Page, p.Limit, total)
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.Repo.GetByID(c.Context(), userID)
	if err != nil {
		return utils.Fail(c, err, "failed fetching user")
	}

	return utils.Success(c, fiber.StatusOK, user)
}

type updateUserRequest struct {
	Email    *string          `json:"email"`
	Username *string          `json:"username"`
	Password *string          `json:"password"`
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"isActive"`
	Status   *int             `json:"status"`
}

func (h *UsersHandler) Update(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Repo.Update(c.Context(), userID, repositories.UpdateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
		Status:   req.Status,
	}, middleware.GetCurrentUser(c))
	if err != nil {
		return utils.Fail(c, err, "failed updating user")
	}

	return utils.Success(c, fiber.StatusOK, user)
}

func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	actor := middleware.GetCurrentUser(c)
	if err := h.Repo.Delete(c.Context(), userID, actor); err != nil {
		return utils.Fail(c, err, "failed deleting user")
	}

	if actor != nil {
		logger.InfoWithUser(actor.ID.String(), "user_deleted", map[string]interface{}{
			"target_id": userID.String(),
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "user deleted"})
}
