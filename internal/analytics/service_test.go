package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/types"
	"github.com/merthanaya/pos-backend/pkg/visibility"
)

var wita = time.FixedZone("WITA", 8*3600)

type fakeReports struct {
	orders    []OrderRow
	items     []ItemRow
	err       error
	lastScope visibility.Scope
	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeReports) PaidOrders(_ context.Context, scope visibility.Scope, start, end time.Time) ([]OrderRow, error) {
	f.lastScope, f.lastStart, f.lastEnd = scope, start, end
	return f.orders, f.err
}

func (f *fakeReports) PaidItems(_ context.Context, scope visibility.Scope, start, end time.Time) ([]ItemRow, error) {
	f.lastScope, f.lastStart, f.lastEnd = scope, start, end
	return f.items, f.err
}

func newTestService(t *testing.T, repo reportRepository) *service {
	t.Helper()
	svc, err := NewService(repo, wita)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	s := svc.(*service)
	s.now = func() time.Time { return time.Date(2024, 1, 7, 3, 0, 0, 0, time.UTC) }
	return s
}

func strPtr(v string) *string { return &v }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestResolvePeriodDefaultsToSevenDays(t *testing.T) {
	now := time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC) // Jan 8th in WITA
	p, err := resolvePeriod(RangeParams{}, MaxDays, now, wita)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.From() != "2024-01-02" || p.To() != "2024-01-08" {
		t.Fatalf("unexpected range %s..%s", p.From(), p.To())
	}
	if len(p.days()) != 7 {
		t.Fatalf("expected 7 days, got %d", len(p.days()))
	}
	if !p.Start.Equal(time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", p.Start)
	}
}

func TestResolvePeriodValidation(t *testing.T) {
	now := time.Now()
	cases := []RangeParams{
		{Days: 366},
		{Days: -1},
		{DateFrom: "2024-01-01"},
		{DateTo: "2024-01-01"},
		{DateFrom: "2024/01/01", DateTo: "2024-01-02"},
		{DateFrom: "2024-01-05", DateTo: "2024-01-01"},
	}
	for _, params := range cases {
		if _, err := resolvePeriod(params, MaxDays, now, wita); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", params, err)
		}
	}
	if _, err := resolvePeriod(RangeParams{Days: 91}, MaxTrendDays, now, wita); err == nil {
		t.Fatalf("expected trend range cap")
	}
}

func TestSummaryAggregates(t *testing.T) {
	repo := &fakeReports{
		orders: []OrderRow{
			{ID: uuid.New(), TotalAmount: dec("25.00")},
			{ID: uuid.New(), TotalAmount: dec("10.00")},
		},
		items: []ItemRow{
			{Quantity: dec("2")},
			{Quantity: dec("1.75")},
			{Quantity: dec("0.5")},
		},
	}
	svc := newTestService(t, repo)
	staff := &types.UserContext{ID: uuid.New(), Role: enums.UserRoleStaff}

	resp, err := svc.Summary(context.Background(), staff, RangeParams{DateFrom: "2024-01-01", DateTo: "2024-01-03"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resp.Summary
	if got.TotalRevenue != 35 || got.TotalOrders != 2 || got.AverageOrderValue != 17.5 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if got.TotalItemsSold != 3 {
		t.Fatalf("expected truncated item count 3, got %d", got.TotalItemsSold)
	}
	if got.DateFrom != "2024-01-01" || got.DateTo != "2024-01-03" {
		t.Fatalf("unexpected dates %s..%s", got.DateFrom, got.DateTo)
	}
	if repo.lastScope.OwnerID() != staff.ID {
		t.Fatalf("staff must be scoped to their own orders")
	}
}

func TestSummaryEmpty(t *testing.T) {
	svc := newTestService(t, &fakeReports{})
	resp, err := svc.Summary(context.Background(), nil, RangeParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Summary.AverageOrderValue != 0 || resp.Summary.TotalOrders != 0 {
		t.Fatalf("unexpected empty summary %+v", resp.Summary)
	}
}

func TestTopProductsRanksByRevenueWithFallbacks(t *testing.T) {
	kopi, teh, gone := uuid.New(), uuid.New(), uuid.New()
	repo := &fakeReports{items: []ItemRow{
		{ProductID: kopi, ProductName: "Kopi", Quantity: dec("2"), PriceAtPurchase: dec("15000"), Category: strPtr("Drinks"), UnitType: strPtr("item")},
		{ProductID: teh, ProductName: "Teh", Quantity: dec("1"), PriceAtPurchase: dec("5000"), Category: strPtr("Drinks"), UnitType: strPtr("item")},
		{ProductID: kopi, ProductName: "Kopi", Quantity: dec("1"), PriceAtPurchase: dec("14000"), Category: strPtr("Drinks"), UnitType: strPtr("item")},
		{ProductID: gone, ProductName: "Gula 1kg", Quantity: dec("1.5"), PriceAtPurchase: dec("20000")},
	}}
	svc := newTestService(t, repo)

	resp, err := svc.TopProducts(context.Background(), nil, RangeParams{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Products) != 2 {
		t.Fatalf("expected limit 2, got %d", len(resp.Products))
	}
	first, second := resp.Products[0], resp.Products[1]
	if first.ProductID != kopi || first.Revenue != 44000 || first.UnitsSold != 3 {
		t.Fatalf("unexpected top product %+v", first)
	}
	if second.ProductID != gone || second.Category != "Other" || second.UnitType != "item" || second.ProductName != "Gula 1kg" {
		t.Fatalf("deleted product should fall back to snapshot data: %+v", second)
	}

	if _, err := svc.TopProducts(context.Background(), nil, RangeParams{}, 51); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected limit validation, got %v", err)
	}
}

func TestSalesByCategoryPercentages(t *testing.T) {
	o1, o2 := uuid.New(), uuid.New()
	repo := &fakeReports{items: []ItemRow{
		{OrderID: o1, Quantity: dec("1"), PriceAtPurchase: dec("10"), Category: strPtr("Food")},
		{OrderID: o1, Quantity: dec("1"), PriceAtPurchase: dec("10"), Category: strPtr("Food")},
		{OrderID: o2, Quantity: dec("1"), PriceAtPurchase: dec("10"), Category: strPtr("Food")},
		{OrderID: o2, Quantity: dec("2"), PriceAtPurchase: dec("5"), Category: strPtr("Drinks")},
		{OrderID: o2, Quantity: dec("1"), PriceAtPurchase: dec("10")},
	}}
	svc := newTestService(t, repo)

	resp, err := svc.SalesByCategory(context.Background(), nil, RangeParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(resp.Categories))
	}
	food := resp.Categories[0]
	if food.Category != "Food" || food.Revenue != 30 || food.OrderCount != 2 || food.Percentage != 60 {
		t.Fatalf("unexpected food bucket %+v", food)
	}
	sum := 0.0
	for _, c := range resp.Categories {
		sum += c.Percentage
	}
	if sum < 99.8 || sum > 100.2 {
		t.Fatalf("percentages should sum to ~100, got %v", sum)
	}
}

func TestSalesByCategoryZeroRevenue(t *testing.T) {
	repo := &fakeReports{items: []ItemRow{{OrderID: uuid.New(), Quantity: dec("1"), PriceAtPurchase: decimal.Zero}}}
	svc := newTestService(t, repo)
	resp, err := svc.SalesByCategory(context.Background(), nil, RangeParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Categories[0].Percentage != 0 {
		t.Fatalf("expected 0 percentage, got %v", resp.Categories[0].Percentage)
	}
}

func TestSalesTrendFillsEveryDay(t *testing.T) {
	repo := &fakeReports{orders: []OrderRow{
		// 2024-01-06 17:00 UTC is 2024-01-07 01:00 in WITA.
		{TotalAmount: dec("25"), CreatedAt: time.Date(2024, 1, 6, 17, 0, 0, 0, time.UTC)},
		{TotalAmount: dec("5"), CreatedAt: time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC)},
	}}
	svc := newTestService(t, repo)

	resp, err := svc.SalesTrend(context.Background(), nil, RangeParams{Days: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(resp.Data))
	}
	if resp.Data[0].Date != "2024-01-01" || resp.Data[6].Date != "2024-01-07" {
		t.Fatalf("unexpected bucket dates %s..%s", resp.Data[0].Date, resp.Data[6].Date)
	}
	if resp.Data[6].Revenue != 25 || resp.Data[6].OrderCount != 1 {
		t.Fatalf("unexpected last bucket %+v", resp.Data[6])
	}
	if resp.Data[2].Revenue != 5 || resp.Data[1].OrderCount != 0 {
		t.Fatalf("unexpected buckets %+v", resp.Data)
	}
}

func TestHourlyDistributionUsesBusinessZone(t *testing.T) {
	repo := &fakeReports{orders: []OrderRow{
		{TotalAmount: dec("12.5"), CreatedAt: time.Date(2024, 1, 6, 1, 30, 0, 0, time.UTC)},
		{TotalAmount: dec("7.5"), CreatedAt: time.Date(2024, 1, 5, 1, 10, 0, 0, time.UTC)},
	}}
	svc := newTestService(t, repo)

	resp, err := svc.HourlyDistribution(context.Background(), nil, RangeParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(resp.Data))
	}
	if resp.Data[9].OrderCount != 2 || resp.Data[9].Revenue != 20 {
		t.Fatalf("expected both orders at 09:00 local, got %+v", resp.Data[9])
	}
	if resp.Data[1].OrderCount != 0 {
		t.Fatalf("UTC hour must not be used")
	}
}

func TestServicePropagatesRepositoryError(t *testing.T) {
	svc := newTestService(t, &fakeReports{err: errors.New("db down")})
	_, err := svc.SalesTrend(context.Background(), nil, RangeParams{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(nil, nil); err == nil {
		t.Fatalf("expected error for nil repository")
	}
}
