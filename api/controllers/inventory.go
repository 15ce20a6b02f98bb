package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/api/middleware"
	"github.com/merthanaya/pos-backend/api/responses"
	"github.com/merthanaya/pos-backend/api/validators"
	"github.com/merthanaya/pos-backend/internal/inventory"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/logger"
)

type adjustStockRequest struct {
	ProductID  uuid.UUID       `json:"product_id" validate:"required"`
	Adjustment decimal.Decimal `json:"adjustment"`
	Reason     *string         `json:"reason"`
}

func inventoryUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
}

// InventoryAdjust applies a signed stock delta.
func InventoryAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			inventoryUnavailable(w, r, logg)
			return
		}
		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Adjust(r.Context(), middleware.UserFromContext(r.Context()), inventory.AdjustInput{
			ProductID:  body.ProductID,
			Adjustment: body.Adjustment,
			Reason:     body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func InventoryLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			inventoryUnavailable(w, r, logg)
			return
		}
		threshold, err := validators.ParseQueryInt(r, "threshold", inventory.DefaultLowStockThreshold, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.LowStock(r.Context(), middleware.UserFromContext(r.Context()), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func InventoryHistory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			inventoryUnavailable(w, r, logg)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", inventory.DefaultHistoryLimit, 1, inventory.MaxHistoryLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.History(r.Context(), middleware.UserFromContext(r.Context()), productID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
