package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/pkg/enums"
)

// HistoryOutcome reports what happened to the best-effort history append.
type HistoryOutcome string

const (
	HistoryRecorded    HistoryOutcome = "recorded"
	HistoryUnavailable HistoryOutcome = "unavailable"
	HistoryFailed      HistoryOutcome = "failed"
)

const (
	DefaultLowStockThreshold = 10
	DefaultHistoryLimit      = 50
	MaxHistoryLimit          = 200
)

// AdjustInput is a signed stock delta. Positive adds stock.
type AdjustInput struct {
	ProductID  uuid.UUID
	Adjustment decimal.Decimal
	Reason     *string
}

type AdjustResult struct {
	Success       bool           `json:"success"`
	ProductID     uuid.UUID      `json:"product_id"`
	ProductName   string         `json:"product_name"`
	PreviousStock float64        `json:"previous_stock"`
	NewStock      float64        `json:"new_stock"`
	Adjustment    float64        `json:"adjustment"`
	History       HistoryOutcome `json:"history"`
}

type LowStockProduct struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Stock     float64        `json:"stock"`
	UnitType  enums.UnitType `json:"unit_type"`
	Threshold float64        `json:"threshold"`
}

type LowStockResponse struct {
	Products  []LowStockProduct `json:"products"`
	Threshold float64           `json:"threshold"`
}

type HistoryEntry struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	PreviousStock float64   `json:"previous_stock"`
	NewStock      float64   `json:"new_stock"`
	Adjustment    float64   `json:"adjustment"`
	Reason        *string   `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Entries   []HistoryEntry `json:"entries"`
	ProductID uuid.UUID      `json:"product_id"`
}
