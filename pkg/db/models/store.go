package models

import (
	"time"

	"github.com/google/uuid"
)

// Store holds the receipt-facing settings of a single owner.
type Store struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID       uuid.UUID `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Name          string    `gorm:"column:name;not null"`
	LogoURL       *string   `gorm:"column:logo_url"`
	Address       *string   `gorm:"column:address"`
	Phone         *string   `gorm:"column:phone"`
	ReceiptFooter *string   `gorm:"column:receipt_footer"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Store) TableName() string { return "stores" }
