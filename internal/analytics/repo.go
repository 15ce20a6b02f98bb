package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

// Repository reads PAID orders for reporting.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) paid(ctx context.Context, scope visibility.Scope, start, end time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Scopes(scope.Owned("orders.runner_id")).
		Where("orders.status = ?", enums.OrderStatusPaid).
		Where("orders.created_at >= ? AND orders.created_at < ?", start, end)
}

func (r *Repository) PaidOrders(ctx context.Context, scope visibility.Scope, start, end time.Time) ([]OrderRow, error) {
	var rows []OrderRow
	err := r.paid(ctx, scope, start, end).
		Select("orders.id, orders.total_amount, orders.created_at").
		Order("orders.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) PaidItems(ctx context.Context, scope visibility.Scope, start, end time.Time) ([]ItemRow, error) {
	var rows []ItemRow
	err := r.paid(ctx, scope, start, end).
		Select(`order_items.order_id, order_items.product_id, order_items.product_name,
order_items.quantity, order_items.price_at_purchase,
products.category AS category, products.unit_type AS unit_type`).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Scan(&rows).Error
	return rows, err
}
