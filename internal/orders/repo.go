package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgdb "github.com/merthanaya/pos-backend/pkg/db"
	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	"github.com/merthanaya/pos-backend/pkg/pagination"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

// nextDailyNumberSQL is a single upsert, so concurrent creators serialize on the counter row.
const nextDailyNumberSQL = `
INSERT INTO daily_counters (date, last_number)
VALUES (?, 1)
ON CONFLICT (date) DO UPDATE SET last_number = daily_counters.last_number + 1
RETURNING last_number`

const summaryColumns = `orders.id, orders.daily_id, orders.invoice_id, orders.runner_id,
orders.total_amount, orders.status, orders.created_at, orders.updated_at,
(SELECT COUNT(*) FROM order_items WHERE order_items.order_id = orders.id) AS item_count`

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) NextDailyNumber(ctx context.Context, day string) (int, error) {
	var next int
	if err := r.db.WithContext(ctx).Raw(nextDailyNumberSQL, day).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListPending(ctx context.Context) ([]SummaryRow, error) {
	var rows []SummaryRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(summaryColumns).
		Where("orders.status = ?", enums.OrderStatusPending).
		Order("orders.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) ListPaid(ctx context.Context, page pagination.Page) ([]SummaryRow, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Order{}).Where("orders.status = ?", enums.OrderStatusPaid)
	return r.pageOf(base, "orders.updated_at DESC", page)
}

func (r *repository) ListHistory(ctx context.Context, scope visibility.Scope, query HistoryQuery, page pagination.Page) ([]SummaryRow, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Order{}).Scopes(scope.Owned("orders.runner_id"))
	if query.Status != nil {
		base = base.Where("orders.status = ?", *query.Status)
	}
	if query.From != nil {
		base = base.Where("orders.created_at >= ?", *query.From)
	}
	if query.Until != nil {
		base = base.Where("orders.created_at < ?", *query.Until)
	}
	if term := strings.TrimSpace(query.Search); term != "" {
		base = base.Where("LOWER(COALESCE(orders.invoice_id, '')) LIKE ? "+pkgdb.LikeEscape, pkgdb.ContainsPattern(term))
	}
	return r.pageOf(base, "orders.created_at DESC", page)
}

func (r *repository) pageOf(base *gorm.DB, order string, page pagination.Page) ([]SummaryRow, int64, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Session(&gorm.Session{}).Select(summaryColumns).Order(order)
	if page.Paged() {
		query = query.Offset(page.Offset()).Limit(page.Size)
	}
	var rows []SummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Transition moves a PENDING order to `to`. False means the order was missing or no longer PENDING.
func (r *repository) Transition(ctx context.Context, id uuid.UUID, to enums.OrderStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Updates(map[string]any{"status": to, "updated_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
