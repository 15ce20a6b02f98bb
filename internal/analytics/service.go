package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/money"
	"github.com/merthanaya/pos-backend/pkg/types"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

// Service aggregates PAID orders into dashboard reports. Staff callers only see orders they ran.
type Service interface {
	Summary(ctx context.Context, caller *types.UserContext, params RangeParams) (*SummaryResponse, error)
	TopProducts(ctx context.Context, caller *types.UserContext, params RangeParams, limit int) (*TopProductsResponse, error)
	SalesByCategory(ctx context.Context, caller *types.UserContext, params RangeParams) (*CategorySalesResponse, error)
	SalesTrend(ctx context.Context, caller *types.UserContext, params RangeParams) (*SalesTrendResponse, error)
	HourlyDistribution(ctx context.Context, caller *types.UserContext, params RangeParams) (*HourlyDistributionResponse, error)
}

type reportRepository interface {
	PaidOrders(ctx context.Context, scope visibility.Scope, start, end time.Time) ([]OrderRow, error)
	PaidItems(ctx context.Context, scope visibility.Scope, start, end time.Time) ([]ItemRow, error)
}

type service struct {
	repo     reportRepository
	location *time.Location
	now      func() time.Time
}

// NewService builds the analytics service. A nil location falls back to time.Local.
func NewService(repo reportRepository, location *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if location == nil {
		location = time.Local
	}
	return &service{repo: repo, location: location, now: time.Now}, nil
}

var hundred = decimal.NewFromInt(100)

func (s *service) Summary(ctx context.Context, caller *types.UserContext, params RangeParams) (*SummaryResponse, error) {
	p, err := resolvePeriod(params, MaxDays, s.now(), s.location)
	if err != nil {
		return nil, err
	}
	scope := visibility.ForUser(caller)
	orders, err := s.repo.PaidOrders(ctx, scope, p.Start, p.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load paid orders")
	}
	items, err := s.repo.PaidItems(ctx, scope, p.Start, p.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load paid items")
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
	}
	var itemsSold int64
	for _, item := range items {
		itemsSold += item.Quantity.IntPart()
	}
	average := decimal.Zero
	if len(orders) > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(len(orders))))
	}

	return &SummaryResponse{Summary: Summary{
		TotalRevenue:      money.Amount(revenue),
		TotalOrders:       len(orders),
		AverageOrderValue: money.Amount(average),
		TotalItemsSold:    itemsSold,
		DateFrom:          p.From(),
		DateTo:            p.To(),
	}}, nil
}

func (s *service) TopProducts(ctx context.Context, caller *types.UserContext, params RangeParams, limit int) (*TopProductsResponse, error) {
	if limit == 0 {
		limit = DefaultTopLimit
	}
	if limit < 1 || limit > MaxTopLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("limit must be between 1 and %d", MaxTopLimit))
	}
	p, items, err := s.items(ctx, caller, params, MaxDays)
	if err != nil {
		return nil, err
	}

	type stats struct {
		row     ItemRow
		units   decimal.Decimal
		revenue decimal.Decimal
	}
	byProduct := map[uuid.UUID]*stats{}
	order := []uuid.UUID{}
	for _, item := range items {
		st, ok := byProduct[item.ProductID]
		if !ok {
			st = &stats{row: item}
			byProduct[item.ProductID] = st
			order = append(order, item.ProductID)
		}
		st.units = st.units.Add(item.Quantity)
		st.revenue = st.revenue.Add(item.PriceAtPurchase.Mul(item.Quantity))
	}
	sort.SliceStable(order, func(i, j int) bool {
		return byProduct[order[i]].revenue.GreaterThan(byProduct[order[j]].revenue)
	})
	if len(order) > limit {
		order = order[:limit]
	}

	products := make([]TopProduct, 0, len(order))
	for _, id := range order {
		st := byProduct[id]
		products = append(products, TopProduct{
			ProductID:   id,
			ProductName: st.row.ProductName,
			Category:    orDefault(st.row.Category, otherCategory),
			UnitsSold:   money.Quantity(st.units),
			Revenue:     money.Amount(st.revenue),
			UnitType:    orDefault(st.row.UnitType, fallbackUnitType),
		})
	}
	return &TopProductsResponse{Products: products, DateFrom: p.From(), DateTo: p.To()}, nil
}

func (s *service) SalesByCategory(ctx context.Context, caller *types.UserContext, params RangeParams) (*CategorySalesResponse, error) {
	p, items, err := s.items(ctx, caller, params, MaxDays)
	if err != nil {
		return nil, err
	}

	revenue := map[string]decimal.Decimal{}
	orders := map[string]map[uuid.UUID]struct{}{}
	names := []string{}
	total := decimal.Zero
	for _, item := range items {
		category := orDefault(item.Category, otherCategory)
		if _, ok := revenue[category]; !ok {
			names = append(names, category)
			orders[category] = map[uuid.UUID]struct{}{}
		}
		line := item.PriceAtPurchase.Mul(item.Quantity)
		revenue[category] = revenue[category].Add(line)
		orders[category][item.OrderID] = struct{}{}
		total = total.Add(line)
	}
	sort.SliceStable(names, func(i, j int) bool {
		return revenue[names[i]].GreaterThan(revenue[names[j]])
	})

	categories := make([]CategorySales, 0, len(names))
	for _, name := range names {
		pct := 0.0
		if total.IsPositive() {
			pct, _ = revenue[name].Div(total).Mul(hundred).Round(1).Float64()
		}
		categories = append(categories, CategorySales{
			Category:   name,
			Revenue:    money.Amount(revenue[name]),
			OrderCount: len(orders[name]),
			Percentage: pct,
		})
	}
	return &CategorySalesResponse{Categories: categories, DateFrom: p.From(), DateTo: p.To()}, nil
}

func (s *service) SalesTrend(ctx context.Context, caller *types.UserContext, params RangeParams) (*SalesTrendResponse, error) {
	p, orders, err := s.orders(ctx, caller, params, MaxTrendDays)
	if err != nil {
		return nil, err
	}

	days := p.days()
	index := make(map[string]int, len(days))
	buckets := make([]DailySales, len(days))
	sums := make([]decimal.Decimal, len(days))
	for i, day := range days {
		index[day] = i
		buckets[i].Date = day
	}
	for _, o := range orders {
		i, ok := index[o.CreatedAt.In(s.location).Format(dayLayout)]
		if !ok {
			continue
		}
		buckets[i].OrderCount++
		sums[i] = sums[i].Add(o.TotalAmount)
	}
	for i := range buckets {
		buckets[i].Revenue = money.Amount(sums[i])
	}
	return &SalesTrendResponse{Data: buckets, DateFrom: p.From(), DateTo: p.To()}, nil
}

func (s *service) HourlyDistribution(ctx context.Context, caller *types.UserContext, params RangeParams) (*HourlyDistributionResponse, error) {
	p, orders, err := s.orders(ctx, caller, params, MaxDays)
	if err != nil {
		return nil, err
	}

	buckets := make([]HourlyBucket, 24)
	sums := make([]decimal.Decimal, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, o := range orders {
		h := o.CreatedAt.In(s.location).Hour()
		buckets[h].OrderCount++
		sums[h] = sums[h].Add(o.TotalAmount)
	}
	for h := range buckets {
		buckets[h].Revenue = money.Amount(sums[h])
	}
	return &HourlyDistributionResponse{Data: buckets, DateFrom: p.From(), DateTo: p.To()}, nil
}

func (s *service) orders(ctx context.Context, caller *types.UserContext, params RangeParams, maxDays int) (period, []OrderRow, error) {
	p, err := resolvePeriod(params, maxDays, s.now(), s.location)
	if err != nil {
		return p, nil, err
	}
	rows, err := s.repo.PaidOrders(ctx, visibility.ForUser(caller), p.Start, p.End)
	if err != nil {
		return p, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load paid orders")
	}
	return p, rows, nil
}

func (s *service) items(ctx context.Context, caller *types.UserContext, params RangeParams, maxDays int) (period, []ItemRow, error) {
	p, err := resolvePeriod(params, maxDays, s.now(), s.location)
	if err != nil {
		return p, nil, err
	}
	rows, err := s.repo.PaidItems(ctx, visibility.ForUser(caller), p.Start, p.End)
	if err != nil {
		return p, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load paid items")
	}
	return p, rows, nil
}

func orDefault(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
