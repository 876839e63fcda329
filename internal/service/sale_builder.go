package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildSaleRequest is a cart plus the sale's metadata.
type BuildSaleRequest struct {
	Items         []domain.CartLine
	CustomerID    *uuid.UUID
	PaymentMethod domain.PaymentMethod
	ActorID       uuid.UUID
	Notes         string
}

// SaleBuilder validates a cart against current stock and prices it.
type SaleBuilder interface {
	BuildSale(ctx context.Context, req BuildSaleRequest) (*domain.DraftSale, error)
}

type saleBuilder struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	now       func() time.Time
}

// NewSaleBuilder creates a new instance of SaleBuilder
func NewSaleBuilder(products repository.ProductRepository, customers repository.CustomerRepository) SaleBuilder {
	return &saleBuilder{
		products:  products,
		customers: customers,
		now:       time.Now,
	}
}

// BuildSale checks each line in order: product exists and is active, quantity
// is positive, cumulative quantity fits in stock. Lines for the same product
// are merged. Nothing is written.
func (b *saleBuilder) BuildSale(ctx context.Context, req BuildSaleRequest) (*domain.DraftSale, error) {
	if len(req.Items) == 0 {
		return nil, &domain.ValidationError{
			Field:   "items",
			Message: "cart must contain at least one product",
			Reason:  domain.ErrEmptyCart,
		}
	}
	if err := validateActor(req.ActorID); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, domain.NewValidationError("payment_method", fmt.Sprintf("unsupported payment method %q", req.PaymentMethod))
	}

	if req.CustomerID != nil {
		if _, err := b.customers.FindByID(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	lines := make([]domain.DraftLine, 0, len(req.Items))
	index := make(map[uuid.UUID]int, len(req.Items))

	for i, item := range req.Items {
		product, err := b.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, domain.NewNotFoundError(domain.EntityProduct, item.ProductID)
		}

		if item.Quantity <= 0 {
			return nil, &domain.ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: fmt.Sprintf("quantity for %s must be a positive integer", product.Code),
				Reason:  domain.ErrInvalidQuantity,
			}
		}

		pos, seen := index[product.ID]
		already := 0
		if seen {
			already = lines[pos].Quantity
		}

		// already <= Stock holds here, so the subtraction cannot wrap.
		if item.Quantity > product.Stock-already {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductCode: product.Code,
				Requested:   saturatingAdd(already, item.Quantity),
				Available:   product.Stock,
			}
		}
		requested := already + item.Quantity

		if seen {
			lines[pos].Quantity = requested
			lines[pos].Subtotal = domain.LineSubtotal(lines[pos].UnitPrice, requested)
			continue
		}

		index[product.ID] = len(lines)
		lines = append(lines, domain.DraftLine{
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    domain.LineSubtotal(product.Price, item.Quantity),
		})
	}

	subtotals := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		subtotals[i] = line.Subtotal
	}

	return &domain.DraftSale{
		CustomerID:    req.CustomerID,
		AccountID:     req.ActorID,
		PaymentMethod: req.PaymentMethod,
		Notes:         strings.TrimSpace(req.Notes),
		Items:         lines,
		Totals:        domain.ComputeTotals(subtotals),
		BuiltAt:       b.now(),
	}, nil
}

// saturatingAdd adds two non-negative ints, clamping at math.MaxInt.
func saturatingAdd(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}
