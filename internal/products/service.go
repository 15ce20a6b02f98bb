package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db"
	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/pagination"
	"github.com/merthanaya/pos-backend/pkg/types"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

const (
	maxNameLength = 200

	notFoundMessage      = "Product not found"
	barcodeExistsMessage = "Barcode already exists"
	deactivatedMessage   = "Product deactivated"
	hardDeletedMessage   = "Product permanently deleted"
)

// Service exposes catalog management operations.
type Service interface {
	List(ctx context.Context, caller *types.UserContext, filters ListFilters, page pagination.Page) (*ListResult, error)
	Get(ctx context.Context, caller *types.UserContext, id uuid.UUID) (*ProductDTO, error)
	GetByBarcode(ctx context.Context, caller *types.UserContext, barcode string) (*ProductDTO, error)
	Create(ctx context.Context, caller *types.UserContext, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, caller *types.UserContext, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, caller *types.UserContext, id uuid.UUID, hard bool) (*MessageResponse, error)
}

type productRepository interface {
	List(ctx context.Context, scope visibility.Scope, filters ListFilters, page pagination.Page) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindActiveByBarcode(ctx context.Context, scope visibility.Scope, barcode string) (*models.Product, error)
	BarcodeTaken(ctx context.Context, barcode string, exclude *uuid.UUID) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo productRepository
	now  func() time.Time
}

// NewService constructs a product service instance.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, caller *types.UserContext, filters ListFilters, page pagination.Page) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, visibility.ForUser(caller), filters, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return &ListResult{
		Products:   out,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: pagination.TotalPages(total, page.Size),
	}, nil
}

func (s *service) Get(ctx context.Context, caller *types.UserContext, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.ForUser(caller).CanRead(product.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) GetByBarcode(ctx context.Context, caller *types.UserContext, barcode string) (*ProductDTO, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	product, err := s.repo.FindActiveByBarcode(ctx, visibility.ForUser(caller), barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup barcode")
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, caller *types.UserContext, input CreateInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if err := validateNonNegative("price", input.Price); err != nil {
		return nil, err
	}
	if err := validateNonNegative("stock", input.Stock); err != nil {
		return nil, err
	}
	unit := input.UnitType
	if unit == "" {
		unit = enums.UnitTypeItem
	}
	if !unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_type must be item or weight")
	}

	barcode := normalizeOptional(input.Barcode)
	if barcode != nil {
		if err := s.ensureBarcodeFree(ctx, *barcode, nil); err != nil {
			return nil, err
		}
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	now := s.now().UTC()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      name,
		Category:  strings.TrimSpace(input.Category),
		Price:     input.Price,
		Stock:     input.Stock,
		Barcode:   barcode,
		ImageURL:  normalizeOptional(input.ImageURL),
		UnitType:  unit,
		IsActive:  active,
		OwnerID:   visibility.ForUser(caller).StampOwner(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, barcodeExistsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, caller *types.UserContext, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	existing, err := s.loadMutable(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if input.empty() {
		dto := FromModel(existing)
		return &dto, nil
	}

	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if input.Category != nil {
		fields["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		if err := validateNonNegative("price", *input.Price); err != nil {
			return nil, err
		}
		fields["price"] = *input.Price
	}
	if input.Stock != nil {
		if err := validateNonNegative("stock", *input.Stock); err != nil {
			return nil, err
		}
		fields["stock"] = *input.Stock
	}
	if input.Barcode != nil {
		barcode := normalizeOptional(input.Barcode)
		if barcode != nil && (existing.Barcode == nil || *existing.Barcode != *barcode) {
			if err := s.ensureBarcodeFree(ctx, *barcode, &existing.ID); err != nil {
				return nil, err
			}
		}
		fields["barcode"] = barcode
	}
	if input.ImageURL != nil {
		fields["image_url"] = normalizeOptional(input.ImageURL)
	}
	if input.UnitType != nil {
		if !input.UnitType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_type must be item or weight")
		}
		fields["unit_type"] = *input.UnitType
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	fields["updated_at"] = s.now().UTC()

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, barcodeExistsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, caller *types.UserContext, id uuid.UUID, hard bool) (*MessageResponse, error) {
	if _, err := s.loadMutable(ctx, caller, id); err != nil {
		return nil, err
	}
	if hard {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return &MessageResponse{Message: hardDeletedMessage}, nil
	}
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": false, "updated_at": s.now().UTC()}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return &MessageResponse{Message: deactivatedMessage}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// loadMutable hides rows the caller may not change behind NotFound.
func (s *service) loadMutable(ctx context.Context, caller *types.UserContext, id uuid.UUID) (*models.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.ForUser(caller).CanMutate(product.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return product, nil
}

func (s *service) ensureBarcodeFree(ctx context.Context, barcode string, exclude *uuid.UUID) error {
	taken, err := s.repo.BarcodeTaken(ctx, barcode, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check barcode")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, barcodeExistsMessage)
	}
	return nil
}

func validateName(name string) error {
	if name == "" || len([]rune(name)) > maxNameLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "name must be between 1 and 200 characters")
	}
	return nil
}

func validateNonNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must be greater than or equal to 0")
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
