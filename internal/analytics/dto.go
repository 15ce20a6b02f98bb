package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultDays      = 7
	MaxDays          = 365
	MaxTrendDays     = 90
	DefaultTopLimit  = 10
	MaxTopLimit      = 50
	otherCategory    = "Other"
	fallbackUnitType = "item"
)

// RangeParams are the raw range query knobs shared by every report.
type RangeParams struct {
	Days     int
	DateFrom string
	DateTo   string
}

type Summary struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalOrders       int     `json:"total_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
	TotalItemsSold    int64   `json:"total_items_sold"`
	DateFrom          string  `json:"date_from"`
	DateTo            string  `json:"date_to"`
}

type SummaryResponse struct {
	Summary Summary `json:"summary"`
}

type TopProduct struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	UnitsSold   float64   `json:"units_sold"`
	Revenue     float64   `json:"revenue"`
	UnitType    string    `json:"unit_type"`
}

type TopProductsResponse struct {
	Products []TopProduct `json:"products"`
	DateFrom string       `json:"date_from"`
	DateTo   string       `json:"date_to"`
}

type CategorySales struct {
	Category   string  `json:"category"`
	Revenue    float64 `json:"revenue"`
	OrderCount int     `json:"order_count"`
	Percentage float64 `json:"percentage"`
}

type CategorySalesResponse struct {
	Categories []CategorySales `json:"categories"`
	DateFrom   string          `json:"date_from"`
	DateTo     string          `json:"date_to"`
}

type DailySales struct {
	Date       string  `json:"date"`
	Revenue    float64 `json:"revenue"`
	OrderCount int     `json:"order_count"`
}

type SalesTrendResponse struct {
	Data     []DailySales `json:"data"`
	DateFrom string       `json:"date_from"`
	DateTo   string       `json:"date_to"`
}

type HourlyBucket struct {
	Hour       int     `json:"hour"`
	OrderCount int     `json:"order_count"`
	Revenue    float64 `json:"revenue"`
}

type HourlyDistributionResponse struct {
	Data     []HourlyBucket `json:"data"`
	DateFrom string         `json:"date_from"`
	DateTo   string         `json:"date_to"`
}

// OrderRow is a PAID order reduced to what the reports aggregate.
type OrderRow struct {
	ID          uuid.UUID
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// ItemRow is an item of a PAID order joined with the product's current catalog data.
// Category and UnitType are nil when the product no longer exists.
type ItemRow struct {
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        decimal.Decimal
	PriceAtPurchase decimal.Decimal
	Category        *string
	UnitType        *string
}
