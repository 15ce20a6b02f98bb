package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/money"
	"github.com/merthanaya/pos-backend/pkg/pagination"
	"github.com/merthanaya/pos-backend/pkg/types"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

const orderNotFoundMessage = "Order not found"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type lifecycleObserver interface {
	ObserveCreated(dailyID int)
	ObserveTransition(status string)
}

// Service is the order lifecycle engine.
type Service interface {
	Create(ctx context.Context, caller *types.UserContext, input CreateInput) (*OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListPending(ctx context.Context) (*PendingOrdersResponse, error)
	ListPaid(ctx context.Context, page, pageSize int) (*PaginatedOrdersResponse, error)
	ListHistory(ctx context.Context, caller *types.UserContext, filter HistoryFilter, page, pageSize int) (*PaginatedOrdersResponse, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*PaymentResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) (*CancelResponse, error)
	Receipt(ctx context.Context, caller *types.UserContext, id uuid.UUID) (*ReceiptFile, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	stores   storeSettings
	metrics  lifecycleObserver
	location *time.Location
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Stores   storeSettings
	Metrics  lifecycleObserver
	Location *time.Location
	Logger   *logger.Logger
	Now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store settings required")
	}
	svc := &service{
		repo:     params.Repo,
		tx:       params.Tx,
		stores:   params.Stores,
		metrics:  params.Metrics,
		location: params.Location,
		logg:     params.Logger,
		now:      params.Now,
	}
	if svc.metrics == nil {
		svc.metrics = noopObserver{}
	}
	if svc.location == nil {
		svc.location = time.Local
	}
	if svc.logg == nil {
		svc.logg = logger.Nop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func (s *service) Create(ctx context.Context, caller *types.UserContext, input CreateInput) (*OrderDTO, error) {
	if caller == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Not authenticated")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "At least one item is required")
	}
	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if !item.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0")
		}
		if !item.Quantity.Equal(item.Quantity.Round(money.QuantityPlaces)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity supports at most %d decimal places", money.QuantityPlaces))
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.repo.FindProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, item := range input.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product %s not found", item.ProductID))
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Product '%s' is not available", product.Name))
		}
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:        uuid.New(),
		RunnerID:  runnerFor(caller, input.RunnerID),
		Status:    enums.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := make([]models.OrderItem, 0, len(input.Items))
	total := decimal.Zero
	for _, line := range input.Items {
		product := byID[line.ProductID]
		// Lines are rounded to cents before summing so the stored subtotals add up to the total.
		subtotal := product.Price.Mul(line.Quantity).Round(money.AmountPlaces)
		total = total.Add(subtotal)
		items = append(items, models.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
			Subtotal:        subtotal,
			CreatedAt:       now,
		})
	}
	order.TotalAmount = total

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		next, err := repo.NextDailyNumber(ctx, BusinessDay(now, s.location))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate daily number")
		}
		invoice := InvoiceID(now, s.location, next)
		order.DailyID = next
		order.InvoiceID = &invoice

		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create order items")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveCreated(order.DailyID)
	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "daily_id": order.DailyID})
	s.logg.Info(ctx, "orders.created")

	order.Items = items
	return s.toDTO(order), nil
}

// runnerFor pins staff to themselves; admins may name any runner.
func runnerFor(caller *types.UserContext, requested *uuid.UUID) *uuid.UUID {
	if caller.IsAdmin() {
		return requested
	}
	id := caller.ID
	return &id
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(order), nil
}

func (s *service) ListPending(ctx context.Context) (*PendingOrdersResponse, error) {
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending orders")
	}
	summaries := s.toSummaries(rows)
	return &PendingOrdersResponse{Orders: summaries, Total: len(summaries)}, nil
}

func (s *service) ListPaid(ctx context.Context, page, pageSize int) (*PaginatedOrdersResponse, error) {
	p := pagination.Normalize(page, pageSize, DefaultPaidPageSize, pagination.MaxPageSize)
	rows, total, err := s.repo.ListPaid(ctx, p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list paid orders")
	}
	return s.toPage(rows, total, p), nil
}

func (s *service) ListHistory(ctx context.Context, caller *types.UserContext, filter HistoryFilter, page, pageSize int) (*PaginatedOrdersResponse, error) {
	query, err := s.parseHistory(filter)
	if err != nil {
		return nil, err
	}
	p := pagination.Normalize(page, pageSize, DefaultHistoryPageSize, pagination.MaxPageSize)
	rows, total, err := s.repo.ListHistory(ctx, visibility.ForUser(caller), query, p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order history")
	}
	return s.toPage(rows, total, p), nil
}

func (s *service) parseHistory(filter HistoryFilter) (HistoryQuery, error) {
	query := HistoryQuery{Search: filter.Search}
	if filter.Status != "" {
		status, err := enums.ParseOrderStatus(filter.Status)
		if err != nil {
			return query, pkgerrors.New(pkgerrors.CodeValidation, "status must be one of PENDING, PAID, CANCELLED")
		}
		query.Status = &status
	}
	if filter.DateFrom != "" {
		start, _, err := dayBounds(filter.DateFrom, s.location)
		if err != nil {
			return query, pkgerrors.New(pkgerrors.CodeValidation, "date_from must be YYYY-MM-DD")
		}
		query.From = &start
	}
	if filter.DateTo != "" {
		_, end, err := dayBounds(filter.DateTo, s.location)
		if err != nil {
			return query, pkgerrors.New(pkgerrors.CodeValidation, "date_to must be YYYY-MM-DD")
		}
		query.Until = &end
	}
	return query, nil
}

func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	order, at, err := s.transition(ctx, id, enums.OrderStatusPaid, "Order is already %s")
	if err != nil {
		return nil, err
	}
	return &PaymentResponse{
		ID:        order.ID,
		ShortID:   ShortID(order.DailyID),
		InvoiceID: s.invoiceFor(order),
		Status:    enums.OrderStatusPaid,
		PaidAt:    at,
	}, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*CancelResponse, error) {
	order, _, err := s.transition(ctx, id, enums.OrderStatusCancelled, "Only pending orders can be cancelled")
	if err != nil {
		return nil, err
	}
	return &CancelResponse{Message: "Order cancelled", ShortID: ShortID(order.DailyID)}, nil
}

// transition rejects terminal orders up front, then relies on the conditional
// update for exactly-one-winner semantics when two requests race.
func (s *service) transition(ctx context.Context, id uuid.UUID, to enums.OrderStatus, conflictFormat string) (*models.Order, time.Time, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, time.Time{}, err
	}
	at := s.now().UTC()
	if !order.Status.CanTransitionTo(to) {
		return nil, at, transitionConflict(order.Status, to, conflictFormat)
	}

	moved, err := s.repo.Transition(ctx, id, to, at)
	if err != nil {
		return nil, at, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !moved {
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, at, err
		}
		return nil, at, transitionConflict(current.Status, to, conflictFormat)
	}
	order.Status = to
	order.UpdatedAt = at

	s.metrics.ObserveTransition(string(to))
	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": id.String(), "status": string(to)})
	s.logg.Info(ctx, "orders.transitioned")
	return order, at, nil
}

func transitionConflict(current, to enums.OrderStatus, conflictFormat string) error {
	message := conflictFormat
	if to == enums.OrderStatusPaid {
		message = fmt.Sprintf(conflictFormat, current)
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).
		WithDetails(map[string]any{"current_status": current})
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, orderNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// invoiceFor recomputes the invoice number for rows stored before it existed.
func (s *service) invoiceFor(order *models.Order) string {
	if order.InvoiceID != nil && *order.InvoiceID != "" {
		return *order.InvoiceID
	}
	return InvoiceID(order.CreatedAt, s.location, order.DailyID)
}

func (s *service) toDTO(order *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemFromModel(item))
	}
	return &OrderDTO{
		ID:          order.ID,
		DailyID:     order.DailyID,
		ShortID:     ShortID(order.DailyID),
		InvoiceID:   s.invoiceFor(order),
		RunnerID:    order.RunnerID,
		TotalAmount: money.Amount(order.TotalAmount),
		Status:      order.Status,
		Items:       items,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func (s *service) toSummaries(rows []SummaryRow) []OrderSummary {
	out := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		invoice := row.InvoiceID
		if invoice == nil || *invoice == "" {
			recomputed := InvoiceID(row.CreatedAt, s.location, row.DailyID)
			invoice = &recomputed
		}
		out = append(out, OrderSummary{
			ID:          row.ID,
			DailyID:     row.DailyID,
			ShortID:     ShortID(row.DailyID),
			InvoiceID:   *invoice,
			RunnerID:    row.RunnerID,
			TotalAmount: money.Amount(row.TotalAmount),
			Status:      row.Status,
			ItemCount:   row.ItemCount,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return out
}

func (s *service) toPage(rows []SummaryRow, total int64, page pagination.Page) *PaginatedOrdersResponse {
	return &PaginatedOrdersResponse{
		Orders:     s.toSummaries(rows),
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: pagination.TotalPages(total, page.Size),
	}
}

type noopObserver struct{}

func (noopObserver) ObserveCreated(int)       {}
func (noopObserver) ObserveTransition(string) {}
