package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	"github.com/merthanaya/pos-backend/pkg/money"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Price     float64        `json:"price"`
	Stock     float64        `json:"stock"`
	Barcode   *string        `json:"barcode"`
	ImageURL  *string        `json:"image_url"`
	UnitType  enums.UnitType `json:"unit_type"`
	IsActive  bool           `json:"is_active"`
	OwnerID   *uuid.UUID     `json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ListResult is one page of the catalog.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ListFilters describe the supported filter knobs for the catalog listing.
type ListFilters struct {
	Category   *string
	ActiveOnly bool
	Search     string
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    decimal.Decimal
	Barcode  *string
	ImageURL *string
	UnitType enums.UnitType
	IsActive *bool
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	Name     *string
	Category *string
	Price    *decimal.Decimal
	Stock    *decimal.Decimal
	Barcode  *string
	ImageURL *string
	UnitType *enums.UnitType
	IsActive *bool
}

func (u UpdateInput) empty() bool {
	return u.Name == nil && u.Category == nil && u.Price == nil && u.Stock == nil &&
		u.Barcode == nil && u.ImageURL == nil && u.UnitType == nil && u.IsActive == nil
}

// FromModel maps a stored product to its DTO.
func FromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     money.Amount(p.Price),
		Stock:     money.Quantity(p.Stock),
		Barcode:   p.Barcode,
		ImageURL:  p.ImageURL,
		UnitType:  p.UnitType,
		IsActive:  p.IsActive,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
