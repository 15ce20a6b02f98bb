// Package visibility centralizes which rows a caller may read or change.
//
// Admins are unscoped. Everyone else reads their own rows plus shared rows
// (owner column NULL) and may only mutate rows they own.
package visibility

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/types"
)

type Scope struct {
	unscoped bool
	ownerID  uuid.UUID
}

// ForUser derives the scope for a resolved caller. A nil caller only sees shared rows.
func ForUser(user *types.UserContext) Scope {
	if user == nil {
		return Scope{}
	}
	if user.IsAdmin() {
		return Scope{unscoped: true}
	}
	return Scope{ownerID: user.ID}
}

// Unscoped reports whether the caller bypasses ownership filters.
func (s Scope) Unscoped() bool {
	return s.unscoped
}

// OwnerID is the caller id used for ownership filters. uuid.Nil when unscoped or anonymous.
func (s Scope) OwnerID() uuid.UUID {
	return s.ownerID
}

// Readable filters to own plus shared rows.
func (s Scope) Readable(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.unscoped {
			return db
		}
		if s.ownerID == uuid.Nil {
			return db.Where(column + " IS NULL")
		}
		return db.Where("("+column+" = ? OR "+column+" IS NULL)", s.ownerID)
	}
}

// Owned filters to rows whose column equals the caller id.
func (s Scope) Owned(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.unscoped {
			return db
		}
		return db.Where(column+" = ?", s.ownerID)
	}
}

// CanRead applies the Readable rule to an already loaded owner value.
func (s Scope) CanRead(owner *uuid.UUID) bool {
	if s.unscoped || owner == nil {
		return true
	}
	return s.ownerID != uuid.Nil && *owner == s.ownerID
}

// CanMutate applies the Owned rule to an already loaded owner value.
func (s Scope) CanMutate(owner *uuid.UUID) bool {
	if s.unscoped {
		return true
	}
	return owner != nil && s.ownerID != uuid.Nil && *owner == s.ownerID
}

// StampOwner returns the owner to record on creation: nil (shared) for admins, the caller otherwise.
func (s Scope) StampOwner() *uuid.UUID {
	if s.unscoped || s.ownerID == uuid.Nil {
		return nil
	}
	id := s.ownerID
	return &id
}
