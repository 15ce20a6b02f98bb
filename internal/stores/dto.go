package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/merthanaya/pos-backend/pkg/db/models"
)

const DefaultReceiptFooter = "Thank you for shopping!"

// StoreDTO is the store settings payload.
type StoreDTO struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	LogoURL       *string   `json:"logo_url"`
	Address       *string   `json:"address"`
	Phone         *string   `json:"phone"`
	ReceiptFooter *string   `json:"receipt_footer"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpdateStoreInput carries optional settings changes.
type UpdateStoreInput struct {
	Name          *string `json:"name"`
	LogoURL       *string `json:"logo_url"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	ReceiptFooter *string `json:"receipt_footer"`
}

func FromModel(s *models.Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		Name:          s.Name,
		LogoURL:       s.LogoURL,
		Address:       s.Address,
		Phone:         s.Phone,
		ReceiptFooter: s.ReceiptFooter,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
