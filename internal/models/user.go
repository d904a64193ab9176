package models

type UserRole string

const (
	UserRoleSuperadmin UserRole = "superadmin"
	UserRoleAdmin      UserRole = "admin"
	UserRoleUser       UserRole = "user"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleSuperadmin, UserRoleAdmin, UserRoleUser:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role carries global administrative rights.
func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin || r == UserRoleSuperadmin
}

type User struct {
	BaseModel
	Email        string          `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string          `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string          `json:"-" gorm:"type:text;not null"`
	Role         UserRole        `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	IsActive     bool            `json:"isActive" gorm:"not null;default:true"`
	Status       int             `json:"status" gorm:"not null;default:1"`
	Projects     []Project       `json:"-" gorm:"foreignKey:OwnerID"`
	AccessGrants []ProjectAccess `json:"-" gorm:"foreignKey:UserID"`
}
