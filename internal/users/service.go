package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db"
	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/identity"
	"github.com/merthanaya/pos-backend/pkg/logger"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter ListFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountProvider interface {
	AdminCreateUser(ctx context.Context, email, password string, metadata map[string]any) (*identity.User, error)
	AdminUpdateUser(ctx context.Context, id uuid.UUID, update identity.AdminUserUpdate) error
	AdminDeleteUser(ctx context.Context, id uuid.UUID) error
}

// Service is the admin-only user management surface.
type Service interface {
	List(ctx context.Context, filter ListFilter) (*ListResponse, error)
	Create(ctx context.Context, input CreateInput) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*UserDTO, error)
	Delete(ctx context.Context, actorID, id uuid.UUID, hard bool) (*MessageResponse, error)
	Reactivate(ctx context.Context, id uuid.UUID) (*UserDTO, error)
}

type service struct {
	repo     userRepository
	provider accountProvider
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo     userRepository
	Provider accountProvider
	Logger   *logger.Logger
	Now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, provider: params.Provider, logg: logg, now: now}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ListResponse{Users: out, Total: total}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleStaff
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	account, err := s.provider.AdminCreateUser(ctx, email, input.Password, map[string]any{"full_name": fullName})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	profile := &models.User{
		ID:        account.ID,
		Email:     email,
		FullName:  &fullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, s.compensateCreate(ctx, account.ID, err)
	}
	return FromModel(profile), nil
}

// compensateCreate removes the provider account when its profile could not be stored.
func (s *service) compensateCreate(ctx context.Context, accountID uuid.UUID, cause error) error {
	code := pkgerrors.CodeDependency
	message := "Failed to create user profile"
	if db.IsUniqueViolation(cause, "") {
		code = pkgerrors.CodeConflict
		message = "User with this email already exists"
	}

	if delErr := s.provider.AdminDeleteUser(ctx, accountID); delErr != nil {
		combined := multierr.Combine(cause, delErr)
		s.logg.Error(s.logg.WithField(ctx, "orphan_account_id", accountID.String()), "users.compensation_failed", combined)
		return pkgerrors.Wrap(code, combined, message)
	}
	return pkgerrors.Wrap(code, cause, message)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*UserDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No fields to update")
	}

	fields := map[string]any{"updated_at": s.now().UTC()}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		if err := s.provider.AdminUpdateUser(ctx, id, identity.AdminUserUpdate{Email: &email}); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return nil, pkgerrors.Wrap(typed.Code(), err, "Failed to update email: "+typed.Message())
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to update email")
		}
		fields["email"] = email
	}
	if input.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		fields["role"] = *input.Role
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	return s.apply(ctx, id, fields)
}

func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID, hard bool) (*MessageResponse, error) {
	if actorID == id {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cannot delete your own account")
	}

	if !hard {
		if _, err := s.apply(ctx, id, map[string]any{"is_active": false, "updated_at": s.now().UTC()}); err != nil {
			return nil, err
		}
		return &MessageResponse{Message: "User deactivated"}, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if err := s.provider.AdminDeleteUser(ctx, id); err != nil {
		// The account may never have existed on the provider side.
		s.logg.Warn(s.logg.WithField(ctx, "user_id", id.String()), "users.provider_delete_failed")
	}
	return &MessageResponse{Message: "User permanently deleted"}, nil
}

func (s *service) Reactivate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	return s.apply(ctx, id, map[string]any{"is_active": true, "updated_at": s.now().UTC()})
}

func (s *service) apply(ctx context.Context, id uuid.UUID, fields map[string]any) (*UserDTO, error) {
	matched, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "User with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	return s.Get(ctx, id)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
