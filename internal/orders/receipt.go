package orders

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/merthanaya/pos-backend/internal/stores"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/receipt"
	"github.com/merthanaya/pos-backend/pkg/types"
)

type storeSettings interface {
	GetMine(ctx context.Context, owner *types.UserContext) (*stores.StoreDTO, error)
}

// Receipt renders the order as a PDF branded with the caller's store settings.
func (s *service) Receipt(ctx context.Context, caller *types.UserContext, id uuid.UUID) (*ReceiptFile, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.GetMine(ctx, caller)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	units := map[uuid.UUID]enums.UnitType{}
	if len(productIDs) > 0 {
		products, err := s.repo.FindProducts(ctx, productIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt products")
		}
		for _, p := range products {
			units[p.ID] = p.UnitType
		}
	}

	invoice := s.invoiceFor(order)
	doc := receipt.Receipt{
		StoreName: store.Name,
		Address:   deref(store.Address),
		Phone:     deref(store.Phone),
		Footer:    deref(store.ReceiptFooter),
		InvoiceID: invoice,
		ShortID:   ShortID(order.DailyID),
		Status:    order.Status.String(),
		IssuedAt:  order.CreatedAt.In(s.location),
		Total:     order.TotalAmount,
	}
	if strings.TrimSpace(doc.Footer) == "" {
		doc.Footer = stores.DefaultReceiptFooter
	}
	for _, item := range order.Items {
		unit, ok := units[item.ProductID]
		if !ok {
			unit = enums.UnitTypeItem
		}
		doc.Lines = append(doc.Lines, receipt.Line{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitType:  unit.String(),
			UnitPrice: item.PriceAtPurchase,
			Subtotal:  item.Subtotal,
		})
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render receipt")
	}
	return &ReceiptFile{
		Filename: fmt.Sprintf("receipt-%s.pdf", invoice),
		Content:  buf.Bytes(),
	}, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
