package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/merthanaya/pos-backend/pkg/enums"
)

// UserContext is the resolved caller carried through request handling.
type UserContext struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	FullName  *string        `json:"full_name"`
	Role      enums.UserRole `json:"role"`
	IsActive  bool           `json:"is_active"`
	CreatedAt *time.Time     `json:"created_at"`
}

// IsAdmin reports whether the caller holds the admin role.
func (u *UserContext) IsAdmin() bool {
	return u != nil && u.Role == enums.UserRoleAdmin
}
