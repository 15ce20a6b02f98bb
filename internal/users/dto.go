package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	"github.com/merthanaya/pos-backend/pkg/types"
)

// UserDTO is the transport shape of a user profile.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	FullName  string         `json:"full_name"`
	Role      enums.UserRole `json:"role"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListResponse is the paged user listing.
type ListResponse struct {
	Users []UserDTO `json:"users"`
	Total int64     `json:"total"`
}

// MessageResponse is returned by delete operations.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateInput carries the fields required to provision a user.
type CreateInput struct {
	Email    string
	Password string
	FullName string
	Role     enums.UserRole
}

// UpdateInput carries optional profile changes. Nil fields are left untouched.
type UpdateInput struct {
	Email    *string
	FullName *string
	Role     *enums.UserRole
	IsActive *bool
}

func (u UpdateInput) empty() bool {
	return u.Email == nil && u.FullName == nil && u.Role == nil && u.IsActive == nil
}

// ListFilter narrows the user listing.
type ListFilter struct {
	Skip     int
	Limit    int
	Role     *enums.UserRole
	IsActive *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.FullName != nil {
		dto.FullName = *u.FullName
	}
	return dto
}

// ToUserContext converts a stored profile into the request-scoped caller.
func ToUserContext(u *models.User) *types.UserContext {
	if u == nil {
		return nil
	}
	created := u.CreatedAt
	return &types.UserContext{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: &created,
	}
}
