package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

// Repository persists stock levels and the adjustment history.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SwapStock writes next only while the row still holds prev.
func (r *Repository) SwapStock(ctx context.Context, id uuid.UUID, prev, next decimal.Decimal, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock = ?", id, prev).
		Updates(map[string]any{"stock": next, "updated_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) AppendHistory(ctx context.Context, entry *models.StockHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// LowStock lists active readable products at or below threshold, lowest first.
func (r *Repository) LowStock(ctx context.Context, scope visibility.Scope, threshold decimal.Decimal) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Scopes(scope.Readable("owner_id")).
		Where("is_active = ? AND stock <= ?", true, threshold).
		Order("stock ASC").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) History(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockHistory, error) {
	var rows []models.StockHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
