package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectAccessLevel string

const (
	ProjectAccessAdmin ProjectAccessLevel = "admin"
	ProjectAccessWrite ProjectAccessLevel = "write"
	ProjectAccessRead  ProjectAccessLevel = "read"
)

func (l ProjectAccessLevel) Valid() bool {
	switch l {
	case ProjectAccessAdmin, ProjectAccessWrite, ProjectAccessRead:
		return true
	default:
		return false
	}
}

// Project names double as storage directory names under the storage root,
// so they must never contain whitespace.
type Project struct {
	BaseModel
	OwnerID      uuid.UUID       `json:"ownerID" gorm:"type:uuid;not null;index"`
	Name         string          `json:"name" gorm:"type:varchar(255);not null"`
	Description  string          `json:"description" gorm:"type:text"`
	Owner        User            `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Documents    []Document      `json:"-" gorm:"foreignKey:ProjectID"`
	AccessGrants []ProjectAccess `json:"-" gorm:"foreignKey:ProjectID"`
}

type ProjectAccess struct {
	BaseModel
	ProjectID uuid.UUID          `json:"projectID" gorm:"type:uuid;not null;index;uniqueIndex:idx_project_user"`
	UserID    uuid.UUID          `json:"userID" gorm:"type:uuid;not null;index;uniqueIndex:idx_project_user"`
	Level     ProjectAccessLevel `json:"level" gorm:"type:varchar(20);not null;default:'read'"`
	GrantedAt time.Time          `json:"grantedAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	Project   Project            `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID"`
	User      User               `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

func (ProjectAccess) TableName() string {
	return "project_access"
}
