package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	"github.com/merthanaya/pos-backend/pkg/pagination"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextDailyNumber(ctx context.Context, day string) (int, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListPending(ctx context.Context) ([]SummaryRow, error)
	ListPaid(ctx context.Context, page pagination.Page) ([]SummaryRow, int64, error)
	ListHistory(ctx context.Context, scope visibility.Scope, query HistoryQuery, page pagination.Page) ([]SummaryRow, int64, error)
	Transition(ctx context.Context, id uuid.UUID, to enums.OrderStatus, at time.Time) (bool, error)
}
