package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultHistoryLimit is used when the caller does not ask for a size.
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// StockLedger owns every write to product stock. Each change is paired with an
// append-only history entry in the same transaction.
type StockLedger interface {
	// Adjust applies delta in its own transaction and returns the new stock.
	Adjust(ctx context.Context, adj domain.StockAdjustment) (int, error)
	// AdjustTx applies delta inside tx. A zero delta returns (nil, nil).
	AdjustTx(ctx context.Context, tx repository.DBTX, adj domain.StockAdjustment) (*domain.StockHistoryEntry, error)
	// SetLevelTx moves stock to target inside tx, recording the difference.
	SetLevelTx(ctx context.Context, tx repository.DBTX, productID uuid.UUID, target int, actorID uuid.UUID, reason string) (*domain.StockHistoryEntry, error)
	History(ctx context.Context, productID uuid.UUID, limit int) ([]*domain.StockHistoryView, error)
}

type stockLedger struct {
	products repository.ProductRepository
	history  repository.StockHistoryRepository
	tx       repository.Transactor
	logger   *zap.Logger
	now      func() time.Time
}

// NewStockLedger creates a new instance of StockLedger
func NewStockLedger(
	products repository.ProductRepository,
	history repository.StockHistoryRepository,
	tx repository.Transactor,
	logger *zap.Logger,
) StockLedger {
	return &stockLedger{
		products: products,
		history:  history,
		tx:       tx,
		logger:   logger.Named("ledger"),
		now:      time.Now,
	}
}

func (l *stockLedger) Adjust(ctx context.Context, adj domain.StockAdjustment) (int, error) {
	if err := validateActor(adj.ActorID); err != nil {
		return 0, err
	}
	adj.Reason = strings.TrimSpace(adj.Reason)
	if adj.Reason == "" {
		adj.Reason = domain.ManualAdjustmentReason
	}
	if adj.Delta > domain.MaxStockDelta || adj.Delta < -domain.MaxStockDelta {
		return 0, domain.NewValidationError("delta",
			fmt.Sprintf("adjustment must be between -%d and %d units", domain.MaxStockDelta, domain.MaxStockDelta))
	}

	if adj.Delta == 0 {
		product, err := l.products.FindByID(ctx, adj.ProductID)
		if err != nil {
			return 0, err
		}
		if !product.Active {
			return 0, domain.NewNotFoundError(domain.EntityProduct, adj.ProductID)
		}
		return product.Stock, nil
	}

	var entry *domain.StockHistoryEntry
	err := l.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		var err error
		entry, err = l.AdjustTx(ctx, tx, adj)
		return err
	})
	if err != nil {
		l.logger.Warn("Stock adjustment rejected",
			zap.String("product_id", adj.ProductID.String()),
			zap.Int("delta", adj.Delta),
			zap.Error(err),
		)
		return 0, err
	}

	l.logger.Info("Stock adjusted",
		zap.String("product_id", adj.ProductID.String()),
		zap.Int("before", entry.QuantityBefore),
		zap.Int("after", entry.QuantityAfter),
		zap.String("movement", string(entry.MovementType)),
		zap.String("actor_id", adj.ActorID.String()),
	)
	return entry.QuantityAfter, nil
}

func (l *stockLedger) AdjustTx(ctx context.Context, tx repository.DBTX, adj domain.StockAdjustment) (*domain.StockHistoryEntry, error) {
	if err := validateActor(adj.ActorID); err != nil {
		return nil, err
	}
	if adj.Delta == 0 {
		return nil, nil
	}
	if adj.Delta < -domain.MaxStockLevel {
		return nil, domain.NewValidationError("delta", "adjustment exceeds any possible stock level")
	}

	product, err := l.products.LockForUpdateTx(ctx, tx, adj.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domain.NewNotFoundError(domain.EntityProduct, adj.ProductID)
	}
	// Stock is within [0, MaxStockLevel], so neither side of this check wraps.
	if adj.Delta > domain.MaxStockLevel-product.Stock {
		return nil, domain.NewValidationError("delta",
			fmt.Sprintf("stock of %s cannot exceed %d units", product.Code, domain.MaxStockLevel))
	}

	return l.apply(ctx, tx, product, product.Stock+adj.Delta, adj.ActorID, adj.Reason)
}

func (l *stockLedger) SetLevelTx(ctx context.Context, tx repository.DBTX, productID uuid.UUID, target int, actorID uuid.UUID, reason string) (*domain.StockHistoryEntry, error) {
	if err := validateActor(actorID); err != nil {
		return nil, err
	}
	if target < 0 {
		return nil, domain.NewValidationError("stock", "stock cannot be negative")
	}
	if target > domain.MaxStockLevel {
		return nil, domain.NewValidationError("stock", fmt.Sprintf("stock cannot exceed %d units", domain.MaxStockLevel))
	}

	product, err := l.products.LockForUpdateTx(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	return l.apply(ctx, tx, product, target, actorID, reason)
}

// apply writes the new level and its history entry. product must be locked.
func (l *stockLedger) apply(ctx context.Context, tx repository.DBTX, product *domain.Product, newStock int, actorID uuid.UUID, reason string) (*domain.StockHistoryEntry, error) {
	if newStock < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductCode: product.Code,
			Requested:   product.Stock - newStock,
			Available:   product.Stock,
		}
	}

	movement, changed := domain.MovementFor(product.Stock, newStock)
	if !changed {
		return nil, nil
	}

	if err := l.products.SetStockTx(ctx, tx, product.ID, newStock); err != nil {
		return nil, err
	}

	entry := &domain.StockHistoryEntry{
		ID:             uuid.New(),
		ProductID:      product.ID,
		AccountID:      actorID,
		QuantityBefore: product.Stock,
		QuantityAfter:  newStock,
		MovementType:   movement,
		Reason:         reason,
		CreatedAt:      l.now(),
	}
	if err := l.history.AppendTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	product.Stock = newStock
	return entry, nil
}

func (l *stockLedger) History(ctx context.Context, productID uuid.UUID, limit int) ([]*domain.StockHistoryView, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	if _, err := l.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	return l.history.ListByProduct(ctx, productID, limit)
}

func validateActor(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return domain.NewValidationError("actor_id", "an acting account is required")
	}
	return nil
}
