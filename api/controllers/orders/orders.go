package orders

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/api/middleware"
	"github.com/merthanaya/pos-backend/api/responses"
	"github.com/merthanaya/pos-backend/api/validators"
	internalorders "github.com/merthanaya/pos-backend/internal/orders"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/pagination"
)

const (
	maxPageNumber   = 1 << 20
	maxSearchLength = 100
)

type createItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type createOrderRequest struct {
	Items    []createItemRequest `json:"items" validate:"required,min=1,dive"`
	RunnerID *uuid.UUID          `json:"runner_id"`
}

func (req createOrderRequest) toInput() internalorders.CreateInput {
	items := make([]internalorders.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, internalorders.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return internalorders.CreateInput{Items: items, RunnerID: req.RunnerID}
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
}

func parsePage(r *http.Request, defaultSize int) (int, int, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPageNumber)
	if err != nil {
		return 0, 0, err
	}
	size, err := validators.ParseQueryInt(r, "page_size", defaultSize, 1, pagination.MaxPageSize)
	if err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

// Create opens a new PENDING order for the caller.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Create(r.Context(), middleware.UserFromContext(r.Context()), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// Pending returns the cashier queue, oldest first.
func Pending(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		resp, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func Paid(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		page, size, err := parsePage(r, internalorders.DefaultPaidPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.ListPaid(r.Context(), page, size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// History serves the filterable order archive. Staff only see orders they ran.
func History(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		page, size, err := parsePage(r, internalorders.DefaultHistoryPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		filter := internalorders.HistoryFilter{
			Status:   q.Get("status"),
			DateFrom: q.Get("date_from"),
			DateTo:   q.Get("date_to"),
			Search:   validators.SanitizeString(q.Get("search"), maxSearchLength),
		}
		resp, err := svc.ListHistory(r.Context(), middleware.UserFromContext(r.Context()), filter, page, size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func Get(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func Pay(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.MarkPaid(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// Receipt streams the printable PDF receipt for an order.
func Receipt(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		file, err := svc.Receipt(r.Context(), middleware.UserFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(file.Content); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "order_id", id.String()), "orders.receipt_write_failed")
		}
	}
}
