package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merthanaya/pos-backend/pkg/enums"
)

// User is the local profile of an identity-provider account. ID equals the provider user id.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	FullName  *string        `gorm:"column:full_name"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'staff'"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
