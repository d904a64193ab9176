package repositories

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/internal/storage"
	"github.com/projecthub/backend/pkg/apperr"
	"github.com/projecthub/backend/pkg/utils"
	"gorm.io/gorm"
)

// DocumentsRepository owns documents scoped to a parent project. Every
// operation re-validates the project first so a missing project reports
// distinctly from a missing document.
type DocumentsRepository struct {
	DB      *gorm.DB
	Storage *storage.Local
}

func NewDocumentsRepository(db *gorm.DB, store *storage.Local) *DocumentsRepository {
	return &DocumentsRepository{DB: db, Storage: store}
}

type CreateDocumentInput struct {
	Filename string
	FileURL  string
}

type UpdateDocumentInput struct {
	Filename *string
	FileURL  *string
}

// UploadFailure records one file's failure during a bulk upload without
// aborting the rest of the batch.
type UploadFailure struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
}

func (r *DocumentsRepository) requireProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.DB.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Project not found")
		}
		return nil, apperr.Internal("failed fetching project", err)
	}
	return &project, nil
}

func (r *DocumentsRepository) getScoped(ctx context.Context, projectID, documentID uuid.UUID) (*models.Document, error) {
	var document models.Document
	err := r.DB.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, documentID).
		First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Document not found")
		}
		return nil, apperr.Internal("failed fetching document", err)
	}
	return &document, nil
}

func (r *DocumentsRepository) Create(ctx context.Context, projectID uuid.UUID, input CreateDocumentInput) (*models.Document, error) {
	if _, err := r.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Filename) == "" {
		return nil, apperr.InvalidArgument("filename must not be empty")
	}

	document := models.Document{
		ProjectID: projectID,
		Filename:  input.Filename,
		FileURL:   input.FileURL,
	}
	if err := r.DB.WithContext(ctx).Create(&document).Error; err != nil {
		return nil, apperr.Internal("failed creating document", err)
	}

	return &document, nil
}

// Get treats a document id that exists under a different project as not
// found.
func (r *DocumentsRepository) Get(ctx context.Context, projectID, documentID uuid.UUID) (*models.Document, error) {
	if _, err := r.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return r.getScoped(ctx, projectID, documentID)
}

func (r *DocumentsRepository) List(ctx context.Context, projectID uuid.UUID, p utils.Pagination) ([]models.Document, int64, error) {
	if _, err := r.requireProject(ctx, projectID); err != nil {
		return nil, 0, err
	}

	query := r.DB.WithContext(ctx).Model(&models.Document{}).Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed counting documents", err)
	}

	var documents []models.Document
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&documents).Error; err != nil {
		return nil, 0, apperr.Internal("failed listing documents", err)
	}

	return documents, total, nil
}

func (r *DocumentsRepository) Update(ctx context.Context, projectID, documentID uuid.UUID, input UpdateDocumentInput) (*models.Document, error) {
	if _, err := r.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	document, err := r.getScoped(ctx, projectID, documentID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Filename != nil {
		if strings.TrimSpace(*input.Filename) == "" {
			return nil, apperr.InvalidArgument("filename must not be empty")
		}
		updates["filename"] = *input.Filename
	}
	if input.FileURL != nil {
		updates["file_url"] = *input.FileURL
	}

	if len(updates) == 0 {
		return document, nil
	}

	if err := r.DB.WithContext(ctx).Model(document).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("failed updating document", err)
	}

	return r.getScoped(ctx, projectID, documentID)
}

// Delete removes the backing file first, tolerating one that is already
// missing, then the row.
func (r *DocumentsRepository) Delete(ctx context.Context, projectID, documentID uuid.UUID) error {
	project, err := r.requireProject(ctx, projectID)
	if err != nil {
		return err
	}

	document, err := r.getScoped(ctx, projectID, documentID)
	if err != nil {
		return err
	}

	if err := r.Storage.RemoveFile(project.Name, document.FileURL); err != nil {
		return err
	}

	if err := r.DB.WithContext(ctx).Delete(&models.Document{}, "id = ?", document.ID).Error; err != nil {
		return apperr.Internal("failed deleting document", err)
	}

	return nil
}

// DownloadPath resolves the on-disk path for a document. A row whose
// backing file is absent from storage is reported as not found.
func (r *DocumentsRepository) DownloadPath(ctx context.Context, projectID, documentID uuid.UUID) (string, *models.Document, error) {
	project, err := r.requireProject(ctx, projectID)
	if err != nil {
		return "", nil, err
	}

	document, err := r.getScoped(ctx, projectID, documentID)
	if err != nil {
		return "", nil, err
	}

	if !r.Storage.Exists(project.Name, document.FileURL) {
		return "", nil, apperr.NotFound("Document not found")
	}

	return r.Storage.FilePath(project.Name, document.FileURL), document, nil
}

// BulkUpload processes each file independently: one file's failure is
// captured as a per-file error entry and never aborts the rest.
func (r *DocumentsRepository) BulkUpload(ctx context.Context, projectID uuid.UUID, files []*multipart.FileHeader) ([]models.Document, []UploadFailure, error) {
	project, err := r.requireProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	created := []models.Document{}
	failed := []UploadFailure{}

	for _, fileHeader := range files {
		filename := filepath.Base(strings.TrimSpace(fileHeader.Filename))
		if filename == "" || filename == "." {
			failed = append(failed, UploadFailure{
				Filename: fileHeader.Filename,
				Message:  "invalid filename",
				Status:   utils.StatusForKind(apperr.KindInvalidArgument),
			})
			continue
		}

		document, err := r.uploadOne(ctx, project, filename, fileHeader)
		if err != nil {
			failed = append(failed, UploadFailure{
				Filename: filename,
				Message:  apperr.MessageOf(err, "failed saving file"),
				Status:   utils.StatusForKind(apperr.KindOf(err)),
			})
			continue
		}
		created = append(created, *document)
	}

	return created, failed, nil
}

func (r *DocumentsRepository) uploadOne(ctx context.Context, project *models.Project, filename string, fileHeader *multipart.FileHeader) (*models.Document, error) {
	stream, err := fileHeader.Open()
	if err != nil {
		return nil, apperr.Internal("failed opening uploaded file", err)
	}
	defer stream.Close()

	if _, err := r.Storage.SaveFile(project.Name, filename, stream); err != nil {
		return nil, err
	}

	document := models.Document{
		ProjectID: project.ID,
		Filename:  filename,
		FileURL:   filename,
	}
	if err := r.DB.WithContext(ctx).Create(&document).Error; err != nil {
		_ = r.Storage.RemoveFile(project.Name, filename)
		return nil, apperr.Internal("failed creating document record", err)
	}

	return &document, nil
}
