package models

import "github.com/google/uuid"

// Document rows reference their backing file by FileURL, a path relative to
// the owning project's storage directory.
type Document struct {
	BaseModel
	ProjectID uuid.UUID `json:"projectID" gorm:"type:uuid;not null;index"`
	Filename  string    `json:"filename" gorm:"type:varchar(255);not null"`
	FileURL   string    `json:"fileURL" gorm:"type:text;not null"`
	Project   Project   `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID"`
}
