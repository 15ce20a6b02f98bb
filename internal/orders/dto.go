package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	"github.com/merthanaya/pos-backend/pkg/money"
)

const (
	DefaultPaidPageSize    = 6
	DefaultHistoryPageSize = 20
)

// ItemInput is one requested line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// CreateInput captures a new basket. RunnerID is honored for admins only.
type CreateInput struct {
	Items    []ItemInput
	RunnerID *uuid.UUID
}

// HistoryFilter holds the raw history query knobs; dates are YYYY-MM-DD in the business zone.
type HistoryFilter struct {
	Status   string
	DateFrom string
	DateTo   string
	Search   string
}

// HistoryQuery is a HistoryFilter after parsing and validation.
type HistoryQuery struct {
	Status *enums.OrderStatus
	From   *time.Time
	Until  *time.Time
	Search string
}

type OrderItemDTO struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        float64   `json:"quantity"`
	PriceAtPurchase float64   `json:"price_at_purchase"`
	Subtotal        float64   `json:"subtotal"`
}

type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	DailyID     int               `json:"daily_id"`
	ShortID     string            `json:"short_id"`
	InvoiceID   string            `json:"invoice_id"`
	RunnerID    *uuid.UUID        `json:"runner_id"`
	TotalAmount float64           `json:"total_amount"`
	Status      enums.OrderStatus `json:"status"`
	Items       []OrderItemDTO    `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// OrderSummary is the queue/list shape of an order.
type OrderSummary struct {
	ID          uuid.UUID         `json:"id"`
	DailyID     int               `json:"daily_id"`
	ShortID     string            `json:"short_id"`
	InvoiceID   string            `json:"invoice_id"`
	RunnerID    *uuid.UUID        `json:"runner_id"`
	TotalAmount float64           `json:"total_amount"`
	Status      enums.OrderStatus `json:"status"`
	ItemCount   int64             `json:"item_count"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type PendingOrdersResponse struct {
	Orders []OrderSummary `json:"orders"`
	Total  int            `json:"total"`
}

type PaginatedOrdersResponse struct {
	Orders     []OrderSummary `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

type PaymentResponse struct {
	ID        uuid.UUID         `json:"id"`
	ShortID   string            `json:"short_id"`
	InvoiceID string            `json:"invoice_id"`
	Status    enums.OrderStatus `json:"status"`
	PaidAt    time.Time         `json:"paid_at"`
}

type CancelResponse struct {
	Message string `json:"message"`
	ShortID string `json:"short_id"`
}

// ReceiptFile is a rendered receipt ready to stream.
type ReceiptFile struct {
	Filename string
	Content  []byte
}

// SummaryRow is an order row joined with its item count.
type SummaryRow struct {
	ID          uuid.UUID
	DailyID     int
	InvoiceID   *string
	RunnerID    *uuid.UUID
	TotalAmount decimal.Decimal
	Status      enums.OrderStatus
	ItemCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func itemFromModel(item models.OrderItem) OrderItemDTO {
	return OrderItemDTO{
		ID:              item.ID,
		ProductID:       item.ProductID,
		ProductName:     item.ProductName,
		Quantity:        money.Quantity(item.Quantity),
		PriceAtPurchase: money.Amount(item.PriceAtPurchase),
		Subtotal:        money.Amount(item.Subtotal),
	}
}
