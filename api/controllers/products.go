package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/api/middleware"
	"github.com/merthanaya/pos-backend/api/responses"
	"github.com/merthanaya/pos-backend/api/validators"
	product "github.com/merthanaya/pos-backend/internal/products"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/pagination"
)

const maxSearchLength = 100

type createProductRequest struct {
	Name     string          `json:"name" validate:"required,min=1,max=200"`
	Category string          `json:"category" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Stock    decimal.Decimal `json:"stock"`
	Barcode  *string         `json:"barcode"`
	ImageURL *string         `json:"image_url"`
	UnitType string          `json:"unit_type" validate:"omitempty,oneof=item weight"`
	IsActive *bool           `json:"is_active"`
}

func (req createProductRequest) toInput() product.CreateInput {
	return product.CreateInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		Barcode:  req.Barcode,
		ImageURL: req.ImageURL,
		UnitType: enums.UnitType(req.UnitType),
		IsActive: req.IsActive,
	}
}

type updateProductRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *decimal.Decimal `json:"stock"`
	Barcode  *string          `json:"barcode"`
	ImageURL *string          `json:"image_url"`
	UnitType *string          `json:"unit_type" validate:"omitempty,oneof=item weight"`
	IsActive *bool            `json:"is_active"`
}

func (req updateProductRequest) toInput() product.UpdateInput {
	input := product.UpdateInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		Barcode:  req.Barcode,
		ImageURL: req.ImageURL,
		IsActive: req.IsActive,
	}
	if req.UnitType != nil {
		unit := enums.UnitType(*req.UnitType)
		input.UnitType = &unit
	}
	return input
}

func productsUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
}

// ProductList returns the catalog visible to the caller. page_size=0 returns every match.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size, err := validators.ParseQueryInt(r, "page_size", 0, 0, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activeOnly, err := validators.ParseQueryBoolDefault(r, "active_only", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := product.ListFilters{
			ActiveOnly: activeOnly,
			Search:     validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLength),
		}
		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			filters.Category = &category
		}

		list, err := svc.List(r.Context(), middleware.UserFromContext(r.Context()), filters, pagination.Normalize(page, size, 0, pagination.MaxPageSize))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), middleware.UserFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ProductByBarcode looks up an active product by its scanned code.
func ProductByBarcode(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		code := strings.TrimSpace(chi.URLParam(r, "code"))
		dto, err := svc.GetByBarcode(r.Context(), middleware.UserFromContext(r.Context()), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), middleware.UserFromContext(r.Context()), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), middleware.UserFromContext(r.Context()), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		hard, err := validators.ParseQueryBoolDefault(r, "hard_delete", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.Delete(r.Context(), middleware.UserFromContext(r.Context()), id, hard)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
