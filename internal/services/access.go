package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/apperr"
	"gorm.io/gorm"
)

// Action names an operation subject to project access control.
type Action string

const (
	ActionProjectView    Action = "project.view"
	ActionProjectUpdate  Action = "project.update"
	ActionProjectDelete  Action = "project.delete"
	ActionProjectShare   Action = "project.share"
	ActionDocumentView   Action = "document.view"
	ActionDocumentCreate Action = "document.create"
	ActionDocumentUpdate Action = "document.update"
	ActionDocumentDelete Action = "document.delete"
)

// RequiredLevel maps an action to the minimum access level that permits it.
func RequiredLevel(action Action) (models.ProjectAccessLevel, bool) {
	switch action {
	case ActionProjectView, ActionDocumentView:
		return models.ProjectAccessRead, true
	case ActionProjectUpdate, ActionDocumentCreate, ActionDocumentUpdate, ActionDocumentDelete:
		return models.ProjectAccessWrite, true
	case ActionProjectDelete, ActionProjectShare:
		return models.ProjectAccessAdmin, true
	default:
		return "", false
	}
}

func accessLevelRank(level models.ProjectAccessLevel) int {
	switch level {
	case models.ProjectAccessRead:
		return 1
	case models.ProjectAccessWrite:
		return 2
	case models.ProjectAccessAdmin:
		return 3
	default:
		return 0
	}
}

// Allows is the pure decision core: does a grant at the given level permit
// the action.
func Allows(level models.ProjectAccessLevel, action Action) bool {
	required, ok := RequiredLevel(action)
	if !ok {
		return false
	}
	return accessLevelRank(level) >= accessLevelRank(required)
}

// AccessService decides project authorization uniformly for every caller.
// Superadmins bypass the grants table entirely; the project owner holds
// implicit admin-level access.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

func (a *AccessService) Authorize(ctx context.Context, actor *models.User, projectID uuid.UUID, action Action) error {
	if actor == nil {
		return apperr.Unauthenticated("Not authenticated, try a login first")
	}
	if actor.Role == models.UserRoleSuperadmin {
		return nil
	}

	var project models.Project
	if err := a.DB.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Project not found")
		}
		return apperr.Internal("failed loading project", err)
	}
	if project.OwnerID == actor.ID {
		return nil
	}

	var grant models.ProjectAccess
	err := a.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, actor.ID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Forbidden("Not authorized to access this project")
		}
		return apperr.Internal("failed loading project access", err)
	}

	if !Allows(grant.Level, action) {
		return apperr.Forbidden("Not authorized to access this project")
	}
	return nil
}
