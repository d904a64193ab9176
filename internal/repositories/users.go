package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/apperr"
	"github.com/projecthub/backend/pkg/utils"
	"gorm.io/gorm"
)

// UsersRepository owns user persistence and the role-escalation rules:
// only a superadmin actor may create, promote to, or delete a superadmin.
type UsersRepository struct {
	DB *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{DB: db}
}

type CreateUserInput struct {
	Email    string
	Username string
	Password string
	Role     models.UserRole
}

type UpdateUserInput struct {
	Email    *string
	Username *string
	Password *string
	Role     *models.UserRole
	IsActive *bool
	Status   *int
}

func isSuperadmin(actor *models.User) bool {
	return actor != nil && actor.Role == models.UserRoleSuperadmin
}

func (r *UsersRepository) Create(ctx context.Context, input CreateUserInput, actor *models.User) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = models.UserRoleUser
	}
	if !role.Valid() {
		return nil, apperr.InvalidArgument("invalid role")
	}
	if role == models.UserRoleSuperadmin && !isSuperadmin(actor) {
		return nil, apperr.Forbidden("Only superadmin can create other superadmins")
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", input.Email, input.Username).
		Count(&count).Error
	if err != nil {
		return nil, apperr.Internal("failed checking existing users", err)
	}
	if count > 0 {
		return nil, apperr.Conflict("User with this email or username already exists")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal("failed hashing password", err)
	}

	user := models.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Status:       1,
	}
	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Internal("failed creating user", err)
	}

	return &user, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed fetching user", err)
	}
	return &user, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed fetching user", err)
	}
	return &user, nil
}

func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed fetching user", err)
	}
	return &user, nil
}

func (r *UsersRepository) List(ctx context.Context, p utils.Pagination) ([]models.User, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.User{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed counting users", err)
	}

	var users []models.User
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&users).Error; err != nil {
		return nil, 0, apperr.Internal("failed listing users", err)
	}

	return users, total, nil
}

func (r *UsersRepository) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput, actor *models.User) (*models.User, error) {
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperr.InvalidArgument("invalid role")
		}
		if *input.Role == models.UserRoleSuperadmin && !isSuperadmin(actor) {
			return nil, apperr.Forbidden("Only superadmin can assign superadmin role")
		}
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Username != nil {
		updates["username"] = *input.Username
	}
	if input.Password != nil {
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, apperr.Internal("failed hashing password", err)
		}
		updates["password_hash"] = hash
	}
	if input.Role != nil {
		updates["role"] = *input.Role
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) == 0 {
		return user, nil
	}

	if input.Email != nil || input.Username != nil {
		email := user.Email
		if input.Email != nil {
			email = *input.Email
		}
		username := user.Username
		if input.Username != nil {
			username = *input.Username
		}
		var count int64
		err := r.DB.WithContext(ctx).Model(&models.User{}).
			Where("(email = ? OR username = ?) AND id <> ?", email, username, id).
			Count(&count).Error
		if err != nil {
			return nil, apperr.Internal("failed checking existing users", err)
		}
		if count > 0 {
			return nil, apperr.Conflict("User with this email or username already exists")
		}
	}

	if err := r.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("failed updating user", err)
	}

	return r.GetByID(ctx, id)
}

// Delete removes the user together with their access grants so that
// revoked accounts leave no orphaned project_access rows behind.
func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID, actor *models.User) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Role == models.UserRoleSuperadmin && !isSuperadmin(actor) {
		return apperr.Forbidden("Only superadmin can delete superadmins")
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectAccess{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return apperr.Internal("failed deleting user", err)
	}

	return nil
}
