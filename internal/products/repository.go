package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/merthanaya/pos-backend/pkg/db"
	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/pagination"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

// Repository wires together all product-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns the readable products matching filters, ordered by name.
func (r *Repository) List(ctx context.Context, scope visibility.Scope, filters ListFilters, page pagination.Page) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope.Readable("owner_id"))
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.Category != nil && *filters.Category != "" {
		query = query.Where("category = ?", *filters.Category)
	}
	if term := strings.TrimSpace(filters.Search); term != "" {
		pattern := pkgdb.ContainsPattern(term)
		query = query.Where("(LOWER(name) LIKE ? "+pkgdb.LikeEscape+" OR LOWER(COALESCE(barcode, '')) LIKE ? "+pkgdb.LikeEscape+")", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("name ASC")
	if page.Paged() {
		query = query.Offset(page.Offset()).Limit(page.Size)
	}
	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads the product without visibility filters.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByBarcode resolves a scanner lookup within the caller's readable rows.
func (r *Repository) FindActiveByBarcode(ctx context.Context, scope visibility.Scope, barcode string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Scopes(scope.Readable("owner_id")).
		Where("barcode = ? AND is_active = ?", barcode, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// BarcodeTaken reports whether any product other than exclude already uses barcode.
func (r *Repository) BarcodeTaken(ctx context.Context, barcode string, exclude *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("barcode = ?", barcode)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update applies a partial column map.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}
