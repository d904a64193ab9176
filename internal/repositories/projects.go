package repositories

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/internal/storage"
	"github.com/projecthub/backend/pkg/apperr"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/utils"
	"gorm.io/gorm"
)

// ProjectsRepository owns project rows, their access grants, and the
// storage directory that shares the project's name. Directory and row are
// kept in step: the directory operation always runs first, and the row
// only changes when it succeeded.
type ProjectsRepository struct {
	DB      *gorm.DB
	Storage *storage.Local
}

func NewProjectsRepository(db *gorm.DB, store *storage.Local) *ProjectsRepository {
	return &ProjectsRepository{DB: db, Storage: store}
}

type CreateProjectInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
}

func validateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.InvalidArgument("Project name must not be empty")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return apperr.InvalidArgument("Project name must not include space")
	}
	return nil
}

func (r *ProjectsRepository) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	if err := validateProjectName(input.Name); err != nil {
		return nil, err
	}

	if err := r.Storage.CreateProjectDir(input.Name); err != nil {
		return nil, err
	}

	project := models.Project{
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		grant := models.ProjectAccess{
			ProjectID: project.ID,
			UserID:    input.OwnerID,
			Level:     models.ProjectAccessAdmin,
		}
		return tx.Create(&grant).Error
	})
	if err != nil {
		_ = r.Storage.RemoveProjectTree(input.Name)
		return nil, apperr.Internal("failed creating project", err)
	}

	return &project, nil
}

func (r *ProjectsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.DB.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Project not found")
		}
		return nil, apperr.Internal("failed fetching project", err)
	}
	return &project, nil
}

func (r *ProjectsRepository) List(ctx context.Context, p utils.Pagination) ([]models.Project, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.Project{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed counting projects", err)
	}

	var projects []models.Project
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&projects).Error; err != nil {
		return nil, 0, apperr.Internal("failed listing projects", err)
	}

	return projects, total, nil
}

func (r *ProjectsRepository) Update(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	renamedFrom := ""
	if input.Name != nil && *input.Name != project.Name {
		if err := validateProjectName(*input.Name); err != nil {
			return nil, err
		}
		if err := r.Storage.RenameProjectDir(project.Name, *input.Name); err != nil {
			return nil, err
		}
		renamedFrom = project.Name
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) == 0 {
		return project, nil
	}

	if err := r.DB.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		if renamedFrom != "" {
			// The directory was already moved; move it back so the two
			// never diverge.
			if undoErr := r.Storage.RenameProjectDir(*input.Name, renamedFrom); undoErr != nil {
				logger.Error("project_rename_rollback_failed", undoErr, map[string]interface{}{
					"project_id": id.String(),
					"from":       *input.Name,
					"to":         renamedFrom,
				})
			}
		}
		return nil, apperr.Internal("failed updating project", err)
	}

	return r.GetByID(ctx, id)
}

// Delete removes the storage tree, then the project's documents, access
// grants, and row in one transaction.
func (r *ProjectsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.Storage.RemoveProjectTree(project.Name); err != nil {
		return err
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectAccess{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
	if err != nil {
		return apperr.Internal("failed deleting project", err)
	}

	return nil
}

// GrantAccess shares a project with a user at the given level, updating
// the level when a grant already exists.
func (r *ProjectsRepository) GrantAccess(ctx context.Context, projectID, userID uuid.UUID, level models.ProjectAccessLevel) (*models.ProjectAccess, error) {
	if !level.Valid() {
		return nil, apperr.InvalidArgument("invalid access level")
	}

	if _, err := r.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed fetching user", err)
	}

	var grant models.ProjectAccess
	err := r.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&grant).Error
	switch {
	case err == nil:
		if err := r.DB.WithContext(ctx).Model(&grant).Update("level", level).Error; err != nil {
			return nil, apperr.Internal("failed updating access grant", err)
		}
		grant.Level = level
		return &grant, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		grant = models.ProjectAccess{ProjectID: projectID, UserID: userID, Level: level}
		if err := r.DB.WithContext(ctx).Create(&grant).Error; err != nil {
			return nil, apperr.Internal("failed creating access grant", err)
		}
		return &grant, nil
	default:
		return nil, apperr.Internal("failed fetching access grant", err)
	}
}

func (r *ProjectsRepository) ListAccess(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAccess, error) {
	if _, err := r.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	var grants []models.ProjectAccess
	err := r.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("granted_at ASC").
		Find(&grants).Error
	if err != nil {
		return nil, apperr.Internal("failed listing access grants", err)
	}
	return grants, nil
}

func (r *ProjectsRepository) RevokeAccess(ctx context.Context, projectID, userID uuid.UUID) error {
	if _, err := r.GetByID(ctx, projectID); err != nil {
		return err
	}

	result := r.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectAccess{})
	if result.Error != nil {
		return apperr.Internal("failed revoking access", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Access grant not found")
	}
	return nil
}
