package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/pkg/enums"
)

// Product is a sellable catalog entry. A nil OwnerID marks a shared product.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;type:varchar(200);not null"`
	Category  string          `gorm:"column:category;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     decimal.Decimal `gorm:"column:stock;type:numeric(12,3);not null;default:0"`
	Barcode   *string         `gorm:"column:barcode"`
	ImageURL  *string         `gorm:"column:image_url"`
	UnitType  enums.UnitType  `gorm:"column:unit_type;type:text;not null;default:'item'"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	OwnerID   *uuid.UUID      `gorm:"column:owner_id;type:uuid"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
