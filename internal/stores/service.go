package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db"
	"github.com/merthanaya/pos-backend/pkg/db/models"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/types"
)

// Service exposes the per-owner store settings.
type Service interface {
	GetMine(ctx context.Context, owner *types.UserContext) (*StoreDTO, error)
	UpdateMine(ctx context.Context, owner *types.UserContext, input UpdateStoreInput) (*StoreDTO, error)
}

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	UpdateByOwner(ctx context.Context, ownerID uuid.UUID, fields map[string]any) error
}

type service struct {
	repo storeRepository
	now  func() time.Time
}

// NewService builds a store service.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// GetMine returns the caller's store, creating the default one on first access.
func (s *service) GetMine(ctx context.Context, owner *types.UserContext) (*StoreDTO, error) {
	if owner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Not authenticated")
	}

	store, err := s.repo.FindByOwner(ctx, owner.ID)
	if err == nil {
		return FromModel(store), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}

	created := defaultStore(owner, s.now().UTC())
	if err := s.repo.Create(ctx, created); err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to create initial store settings")
		}
		// A concurrent request created it first.
		winner, findErr := s.repo.FindByOwner(ctx, owner.ID)
		if findErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load store settings")
		}
		return FromModel(winner), nil
	}
	return FromModel(created), nil
}

func (s *service) UpdateMine(ctx context.Context, owner *types.UserContext, input UpdateStoreInput) (*StoreDTO, error) {
	if owner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Not authenticated")
	}
	if _, err := s.repo.FindByOwner(ctx, owner.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Store settings not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}

	fields := map[string]any{"updated_at": s.now().UTC()}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		fields["name"] = name
	}
	if input.LogoURL != nil {
		fields["logo_url"] = *input.LogoURL
	}
	if input.Address != nil {
		fields["address"] = *input.Address
	}
	if input.Phone != nil {
		fields["phone"] = *input.Phone
	}
	if input.ReceiptFooter != nil {
		fields["receipt_footer"] = *input.ReceiptFooter
	}

	if err := s.repo.UpdateByOwner(ctx, owner.ID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to update store settings")
	}
	updated, err := s.repo.FindByOwner(ctx, owner.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}
	return FromModel(updated), nil
}

func defaultStore(owner *types.UserContext, now time.Time) *models.Store {
	prefix := "My"
	if owner.FullName != nil && strings.TrimSpace(*owner.FullName) != "" {
		prefix = strings.TrimSpace(*owner.FullName)
	}
	empty := ""
	footer := DefaultReceiptFooter
	return &models.Store{
		ID:            uuid.New(),
		OwnerID:       owner.ID,
		Name:          prefix + "'s Store",
		Address:       &empty,
		Phone:         &empty,
		ReceiptFooter: &footer,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
