package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/internal/repositories"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/utils"
)

type ProjectsHandler struct {
	Repo   *repositories.ProjectsRepository
	Access *services.AccessService
}

func NewProjectsHandler(repo *repositories.ProjectsRepository, access *services.AccessService) *ProjectsHandler {
	return &ProjectsHandler{Repo: repo, Access: access}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Could not validate credentials, please login")
	}

	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	project, err := h.Repo.Create(c.Context(), repositories.CreateProjectInput{
		OwnerID:     currentUser.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return utils.Fail(c, err, "failed creating project")
	}

	logger.InfoWithUser(currentUser.ID.String(), "project_created", map[string]interface{}{
		"project_id":   project.ID.String(),
		"project_name": project.Name,
	})

	return utils.Success(c, fiber.StatusCreated, project)
}

func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)

	projects, total, err := h.Repo.List(c.Context(), p)
	if err != nil {
		return utils.Fail(c, err, "failed listing projects")
	}

	return utils.Paginated(c, projects, p.Page, p.Limit, total)
}

func (h *ProjectsHandler) authorize(c *fiber.Ctx, projectID uuid.UUID, action services.Action) error {
	return h.Access.Authorize(c.Context(), middleware.GetCurrentUser(c), projectID, action)
}

func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	projectID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.authorize(c, projectID, services.ActionProjectView); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	project, err := h.Repo.GetByID(c.Context(), projectID)
	if err != nil {
		return utils.Fail(c, err, "failed fetching project")
	}

	return utils.Success(c, fiber.StatusOK, project)
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	projectID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.authorize(c, projectID, services.ActionProjectUpdate); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	var req updateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	project, err := h.Repo.Update(c.Context(), projectID, repositories.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return utils.Fail(c, err, "failed updating project")
	}

	return utils.Success(c, fiber.StatusOK, project)
}

func (h *ProjectsHandler) Delete(c *fiber.Ctx) error {
	projectID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.authorize(c, projectID, services.ActionProjectDelete); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	if err := h.Repo.Delete(c.Context(), projectID); err != nil {
		return utils.Fail(c, err, "failed deleting project")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "project deleted"})
}

type grantAccessRequest struct {
	UserID uuid.UUID                 `json:"userID"`
	Level  models.ProjectAccessLevel `json:"level"`
}

func (h *ProjectsHandler) GrantAccess(c *fiber.Ctx) error {
	projectID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.authorize(c, projectID, services.ActionProjectShare); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	var req grantAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID == uuid.Nil {
		return utils.Error(c, fiber.StatusBadRequest, "userID is required")
	}

	grant, err := h.Repo.GrantAccess(c.Context(), projectID, req.UserID, req.Level)
	if err != nil {
		return utils.Fail(c, err, "failed granting access")
	}

	return utils.Success(c, fiber.StatusCreated, grant)
}

func (h *ProjectsHandler) ListAccess(c *fiber.Ctx) error {
	projectID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.authorize(c, projectID, services.ActionProjectView); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	grants, err := h.Repo.ListAccess(c.Context(), projectID)
	if err != nil {
		return utils.Fail(c, err, "failed listing access grants")
	}

	return utils.Success(c, fiber.StatusOK, grants)
}

func (h *ProjectsHandler) RevokeAccess(c *fiber.Ctx) error {
	projectID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	userID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.authorize(c, projectID, services.ActionProjectShare); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	if err := h.Repo.RevokeAccess(c.Context(), projectID, userID); err != nil {
		return utils.Fail(c, err, "failed revoking access")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "access revoked"})
}
