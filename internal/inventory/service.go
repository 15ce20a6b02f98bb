package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db"
	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/money"
	"github.com/merthanaya/pos-backend/pkg/types"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

type Service interface {
	Adjust(ctx context.Context, caller *types.UserContext, input AdjustInput) (*AdjustResult, error)
	LowStock(ctx context.Context, caller *types.UserContext, threshold int) (*LowStockResponse, error)
	History(ctx context.Context, caller *types.UserContext, productID uuid.UUID, limit int) (*HistoryResponse, error)
}

type stockRepository interface {
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SwapStock(ctx context.Context, id uuid.UUID, prev, next decimal.Decimal, at time.Time) (bool, error)
	AppendHistory(ctx context.Context, entry *models.StockHistory) error
	LowStock(ctx context.Context, scope visibility.Scope, threshold decimal.Decimal) ([]models.Product, error)
	History(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockHistory, error)
}

type service struct {
	repo stockRepository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo stockRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Adjust(ctx context.Context, caller *types.UserContext, input AdjustInput) (*AdjustResult, error) {
	product, err := s.readableProduct(ctx, caller, input.ProductID)
	if err != nil {
		return nil, err
	}

	previous := product.Stock
	next := previous.Add(input.Adjustment)
	if next.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf(
			"Cannot reduce stock below 0. Current: %s, Adjustment: %s", previous.String(), input.Adjustment.String()))
	}

	swapped, err := s.repo.SwapStock(ctx, product.ID, previous, next, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	if !swapped {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "stock changed concurrently").
			WithDetails(map[string]any{"product_id": product.ID})
	}

	outcome := s.appendHistory(ctx, &models.StockHistory{
		ID:            uuid.New(),
		ProductID:     product.ID,
		PreviousStock: previous,
		NewStock:      next,
		Adjustment:    input.Adjustment,
		Reason:        input.Reason,
		CreatedAt:     s.now().UTC(),
	})

	return &AdjustResult{
		Success:       true,
		ProductID:     product.ID,
		ProductName:   product.Name,
		PreviousStock: money.Quantity(previous),
		NewStock:      money.Quantity(next),
		Adjustment:    money.Quantity(input.Adjustment),
		History:       outcome,
	}, nil
}

// appendHistory never fails the adjustment that triggered it.
func (s *service) appendHistory(ctx context.Context, entry *models.StockHistory) HistoryOutcome {
	err := s.repo.AppendHistory(ctx, entry)
	switch {
	case err == nil:
		return HistoryRecorded
	case db.IsUndefinedTable(err):
		s.logg.Warn(s.logg.WithField(ctx, "product_id", entry.ProductID.String()), "inventory.history_unavailable")
		return HistoryUnavailable
	default:
		s.logg.Error(s.logg.WithField(ctx, "product_id", entry.ProductID.String()), "inventory.history_failed", err)
		return HistoryFailed
	}
}

func (s *service) LowStock(ctx context.Context, caller *types.UserContext, threshold int) (*LowStockResponse, error) {
	if threshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "threshold must be greater than or equal to 0")
	}
	limit := decimal.NewFromInt(int64(threshold))
	rows, err := s.repo.LowStock(ctx, visibility.ForUser(caller), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}

	out := make([]LowStockProduct, 0, len(rows))
	for _, p := range rows {
		unit := p.UnitType
		if unit == "" {
			unit = enums.UnitTypeItem
		}
		out = append(out, LowStockProduct{
			ID:        p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Stock:     money.Quantity(p.Stock),
			UnitType:  unit,
			Threshold: float64(threshold),
		})
	}
	return &LowStockResponse{Products: out, Threshold: float64(threshold)}, nil
}

func (s *service) History(ctx context.Context, caller *types.UserContext, productID uuid.UUID, limit int) (*HistoryResponse, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("limit must be between 1 and %d", MaxHistoryLimit))
	}
	resp := &HistoryResponse{Entries: []HistoryEntry{}, ProductID: productID}

	rows, err := s.repo.History(ctx, productID, limit)
	if err != nil {
		if db.IsUndefinedTable(err) {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", productID.String()), "inventory.history_unavailable")
			return resp, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock history")
	}

	for _, row := range rows {
		resp.Entries = append(resp.Entries, HistoryEntry{
			ID:            row.ID,
			ProductID:     row.ProductID,
			PreviousStock: money.Quantity(row.PreviousStock),
			NewStock:      money.Quantity(row.NewStock),
			Adjustment:    money.Quantity(row.Adjustment),
			Reason:        row.Reason,
			CreatedAt:     row.CreatedAt,
		})
	}
	return resp, nil
}

func (s *service) readableProduct(ctx context.Context, caller *types.UserContext, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !visibility.ForUser(caller).CanRead(product.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return product, nil
}
