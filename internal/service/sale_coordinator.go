package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleCoordinator persists a draft sale, its items and the matching stock
// decrements as one unit.
type SaleCoordinator interface {
	CommitSale(ctx context.Context, draft *domain.DraftSale) (*domain.Sale, error)
}

type saleCoordinator struct {
	tx       repository.Transactor
	sales    repository.SaleRepository
	products repository.ProductRepository
	ledger   StockLedger
	logger   *zap.Logger
	now      func() time.Time
}

// NewSaleCoordinator creates a new instance of SaleCoordinator
func NewSaleCoordinator(
	tx repository.Transactor,
	sales repository.SaleRepository,
	products repository.ProductRepository,
	ledger StockLedger,
	logger *zap.Logger,
) SaleCoordinator {
	return &saleCoordinator{
		tx:       tx,
		sales:    sales,
		products: products,
		ledger:   ledger,
		logger:   logger.Named("sales"),
		now:      time.Now,
	}
}

// saleCommit walks a draft through the commit state machine.
type saleCommit struct {
	state  domain.SaleState
	logger *zap.Logger
}

func (c *saleCommit) advance(to domain.SaleState) error {
	if !c.state.CanTransition(to) {
		return fmt.Errorf("illegal sale state transition %s -> %s", c.state, to)
	}
	c.logger.Debug("Sale state changed", zap.String("from", string(c.state)), zap.String("to", string(to)))
	c.state = to
	return nil
}

func (c *saleCoordinator) CommitSale(ctx context.Context, draft *domain.DraftSale) (*domain.Sale, error) {
	commit := &saleCommit{state: domain.SaleStateDraft, logger: c.logger}

	if err := commit.advance(domain.SaleStateValidating); err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		_ = commit.advance(domain.SaleStateRolledBack)
		return nil, err
	}

	if err := commit.advance(domain.SaleStateCommitting); err != nil {
		return nil, err
	}

	var sale *domain.Sale
	err := c.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		var err error
		sale, err = c.commitTx(ctx, tx, draft)
		return err
	})
	if err != nil {
		_ = commit.advance(domain.SaleStateRolledBack)
		c.logger.Warn("Sale rolled back",
			zap.String("account_id", draft.AccountID.String()),
			zap.Int("lines", len(draft.Items)),
			zap.Error(err),
		)
		return nil, err
	}

	if err := commit.advance(domain.SaleStateCommitted); err != nil {
		return nil, err
	}
	c.logger.Info("Sale committed",
		zap.String("sale_number", sale.Number),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.Int("lines", len(sale.Items)),
	)
	return sale, nil
}

func (c *saleCoordinator) commitTx(ctx context.Context, tx repository.DBTX, draft *domain.DraftSale) (*domain.Sale, error) {
	// Lock every product up front in a fixed order so concurrent commits
	// touching the same products cannot deadlock.
	lines := sortedLines(draft.Items)
	for _, line := range lines {
		product, err := c.products.LockForUpdateTx(ctx, tx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, domain.NewNotFoundError(domain.EntityProduct, line.ProductID)
		}
	}

	seq, err := c.sales.NextNumberTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		ID:            uuid.New(),
		Number:        domain.FormatSaleNumber(seq),
		CustomerID:    draft.CustomerID,
		AccountID:     draft.AccountID,
		Subtotal:      draft.Subtotal,
		Tax:           draft.Tax,
		Total:         draft.Total,
		Status:        domain.SaleStatusCompleted,
		PaymentMethod: draft.PaymentMethod,
		Notes:         draft.Notes,
		CreatedAt:     c.now(),
	}
	if err := c.sales.CreateTx(ctx, tx, sale); err != nil {
		return nil, err
	}

	for _, line := range draft.Items {
		item := domain.SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		}
		if err := c.sales.CreateItemTx(ctx, tx, &item); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}

	reason := domain.SaleReason(sale.Number)
	for _, line := range lines {
		_, err := c.ledger.AdjustTx(ctx, tx, domain.StockAdjustment{
			ProductID: line.ProductID,
			Delta:     -line.Quantity,
			ActorID:   draft.AccountID,
			Reason:    reason,
		})
		if err != nil {
			return nil, err
		}
	}

	return sale, nil
}

// validateDraft rejects drafts that were tampered with or built elsewhere.
func validateDraft(draft *domain.DraftSale) error {
	if draft == nil || len(draft.Items) == 0 {
		return &domain.ValidationError{Field: "items", Message: "cart must contain at least one product", Reason: domain.ErrEmptyCart}
	}
	if err := validateActor(draft.AccountID); err != nil {
		return err
	}
	if !draft.PaymentMethod.Valid() {
		return domain.NewValidationError("payment_method", fmt.Sprintf("unsupported payment method %q", draft.PaymentMethod))
	}

	seen := make(map[uuid.UUID]bool, len(draft.Items))
	subtotals := make([]decimal.Decimal, len(draft.Items))
	for i, line := range draft.Items {
		field := fmt.Sprintf("items[%d]", i)
		if seen[line.ProductID] {
			return domain.NewValidationError(field, "product appears more than once")
		}
		seen[line.ProductID] = true

		if line.Quantity <= 0 {
			return &domain.ValidationError{Field: field + ".quantity", Message: "quantity must be a positive integer", Reason: domain.ErrInvalidQuantity}
		}
		if !line.UnitPrice.IsPositive() {
			return domain.NewValidationError(field+".unit_price", "unit price must be positive")
		}
		if !line.Subtotal.Equal(domain.LineSubtotal(line.UnitPrice, line.Quantity)) {
			return domain.NewValidationError(field+".subtotal", "line subtotal does not match quantity and price")
		}
		subtotals[i] = line.Subtotal
	}

	if !domain.ComputeTotals(subtotals).Equal(draft.Totals) {
		return domain.NewValidationError("total", "totals do not match the sale lines")
	}
	return nil
}

func sortedLines(items []domain.DraftLine) []domain.DraftLine {
	lines := append([]domain.DraftLine(nil), items...)
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].ProductID[:], lines[j].ProductID[:]) < 0
	})
	return lines
}
