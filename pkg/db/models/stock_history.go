package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockHistory is a best-effort audit row written after each manual adjustment.
type StockHistory struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	PreviousStock decimal.Decimal `gorm:"column:previous_stock;type:numeric(12,3);not null"`
	NewStock      decimal.Decimal `gorm:"column:new_stock;type:numeric(12,3);not null"`
	Adjustment    decimal.Decimal `gorm:"column:adjustment;type:numeric(12,3);not null"`
	Reason        *string         `gorm:"column:reason"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (StockHistory) TableName() string { return "stock_history" }
