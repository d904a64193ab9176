package database

import (
	"fmt"

	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedSuperadmin(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectAccess{},
		&models.Document{},
	)
}

// seedSuperadmin creates the first superadmin account when the users table
// is empty, so a fresh deployment can log in at all.
func seedSuperadmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        "admin@projecthub.local",
		Username:     "admin",
		PasswordHash: hash,
		Role:         models.UserRoleSuperadmin,
		IsActive:     true,
		Status:       1,
	}

	return db.Create(&admin).Error
}
