package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/repositories"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/utils"
)

type DocumentsHandler struct {
	Repo   *repositories.DocumentsRepository
	Access *services.AccessService
}

func NewDocumentsHandler(repo *repositories.DocumentsRepository, access *services.AccessService) *DocumentsHandler {
	return &DocumentsHandler{Repo: repo, Access: access}
}

func (h *DocumentsHandler) authorize(c *fiber.Ctx, projectID uuid.UUID, action services.Action) error {
	return h.Access.Authorize(c.Context(), middleware.GetCurrentUser(c), projectID, action)
}

func (h *DocumentsHandler) projectID(c *fiber.Ctx) (uuid.UUID, error) {
	return parseUUID(c.Params("projectId"))
}

type createDocumentRequest struct {
	Filename string `json:"filename"`
	FileURL  string `json:"fileURL"`
}

func (h *DocumentsHandler) Create(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.authorize(c, projectID, services.ActionDocumentCreate); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	document, err := h.Repo.Create(c.Context(), projectID, repositories.CreateDocumentInput{
		Filename: req.Filename,
		FileURL:  req.FileURL,
	})
	if err != nil {
		return utils.Fail(c, err, "failed creating document")
	}

	return utils.Success(c, fiber.StatusCreated, document)
}

func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}
	documentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	if err := h.authorize(c, projectID, services.ActionDocumentView); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	document, err := h.Repo.Get(c.Context(), projectID, documentID)
	if err != nil {
		return utils.Fail(c, err, "failed fetching document")
	}

	return utils.Success(c, fiber.StatusOK, document)
}

func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.authorize(c, projectID, services.ActionDocumentView); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	p := utils.ParsePagination(c)
	documents, total, err := h.Repo.List(c.Context(), projectID, p)
	if err != nil {
		return utils.Fail(c, err, "failed listing documents")
	}

	return utils.Paginated(c, documents, p.Page, p.Limit, total)
}

type updateDocumentRequest struct {
	Filename *string `json:"filename"`
	FileURL  *string `json:"fileURL"`
}

func (h *DocumentsHandler) Update(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}
	documentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	if err := h.authorize(c, projectID, services.ActionDocumentUpdate); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	var req updateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	document, err := h.Repo.Update(c.Context(), projectID, documentID, repositories.UpdateDocumentInput{
		Filename: req.Filename,
		FileURL:  req.FileURL,
	})
	if err != nil {
		return utils.Fail(c, err, "failed updating document")
	}

	return utils.Success(c, fiber.StatusOK, document)
}

func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}
	documentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	if err := h.authorize(c, projectID, services.ActionDocumentDelete); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	if err := h.Repo.Delete(c.Context(), projectID, documentID); err != nil {
		return utils.Fail(c, err, "failed deleting document")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "document deleted"})
}

// Download serves the backing file's bytes. A database row whose file is
// missing from storage is not found.
func (h *DocumentsHandler) Download(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}
	documentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	if err := h.authorize(c, projectID, services.ActionDocumentView); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	path, document, err := h.Repo.DownloadPath(c.Context(), projectID, documentID)
	if err != nil {
		return utils.Fail(c, err, "failed resolving document")
	}

	return c.Download(path, document.Filename)
}

// Upload accepts N multipart files and processes each independently,
// returning the created records and the per-file failures side by side.
func (h *DocumentsHandler) Upload(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.authorize(c, projectID, services.ActionDocumentCreate); err != nil {
		return utils.Fail(c, err, "failed checking project access")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "multipart form is required")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "files are required")
	}

	created, failed, err := h.Repo.BulkUpload(c.Context(), projectID, files)
	if err != nil {
		return utils.Fail(c, err, "failed uploading documents")
	}

	if user := middleware.GetCurrentUser(c); user != nil {
		logger.InfoWithUser(user.ID.String(), "documents_uploaded", map[string]interface{}{
			"project_id": projectID.String(),
			"created":    len(created),
			"failed":     len(failed),
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"documents": created,
		"errors":    failed,
	})
}
