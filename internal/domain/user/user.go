package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// IsValidRole reports whether role is one of the back-office roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleVendedor
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"not null;column:hashed_password" json:"-"`
	Role         string    `gorm:"not null;default:vendedor;column:role" json:"role"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
