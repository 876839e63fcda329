package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLedger_AdjustRecordsMovement(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	p := f.store.addProduct("MOU001", "89.90", 10)

	after, err := f.ledger.Adjust(ctx, domain.StockAdjustment{ProductID: p.ID, Delta: 5, ActorID: f.seller.ID, Reason: "Reposición"})
	require.NoError(t, err)
	assert.Equal(t, 15, after)

	after, err = f.ledger.Adjust(ctx, domain.StockAdjustment{ProductID: p.ID, Delta: -3, ActorID: f.seller.ID})
	require.NoError(t, err)
	assert.Equal(t, 12, after)

	history := f.store.historyOf(p.ID)
	require.Len(t, history, 2)
	assert.Equal(t, domain.MovementIn, history[0].MovementType)
	assert.Equal(t, 10, history[0].QuantityBefore)
	assert.Equal(t, 15, history[0].QuantityAfter)
	assert.Equal(t, "Reposición", history[0].Reason)
	assert.Equal(t, domain.MovementOut, history[1].MovementType)
	assert.Equal(t, domain.ManualAdjustmentReason, history[1].Reason)
	assert.Equal(t, f.seller.ID, history[1].AccountID)
}

func TestStockLedger_RejectsNegativeResult(t *testing.T) {
	f := newSalesFixture()
	p := f.store.addProduct("MOU001", "89.90", 2)

	_, err := f.ledger.Adjust(context.Background(), domain.StockAdjustment{ProductID: p.ID, Delta: -3, ActorID: f.seller.ID})

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 2, f.store.stockOf(p.ID))
	assert.Empty(t, f.store.historyOf(p.ID))
}

func TestStockLedger_ZeroDeltaWritesNothing(t *testing.T) {
	f := newSalesFixture()
	p := f.store.addProduct("MOU001", "89.90", 7)

	after, err := f.ledger.Adjust(context.Background(), domain.StockAdjustment{ProductID: p.ID, ActorID: f.seller.ID})
	require.NoError(t, err)
	assert.Equal(t, 7, after)
	assert.Empty(t, f.store.historyOf(p.ID))
}

func TestStockLedger_RequiresActor(t *testing.T) {
	f := newSalesFixture()
	p := f.store.addProduct("MOU001", "89.90", 7)

	_, err := f.ledger.Adjust(context.Background(), domain.StockAdjustment{ProductID: p.ID, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStockLedger_UnknownAndInactiveProducts(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()

	_, err := f.ledger.Adjust(ctx, domain.StockAdjustment{ProductID: uuid.New(), Delta: 1, ActorID: f.seller.ID})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	p := f.store.addProduct("MOU001", "89.90", 7)
	require.NoError(t, memProducts{f.store}.Deactivate(ctx, p.ID))
	_, err = f.ledger.Adjust(ctx, domain.StockAdjustment{ProductID: p.ID, Delta: 1, ActorID: f.seller.ID})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestStockLedger_SetLevel(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	p := f.store.addProduct("MON001", "899.00", 8)

	err := f.store.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		entry, err := f.ledger.SetLevelTx(ctx, tx, p.ID, 3, f.seller.ID, domain.ManualAdjustmentReason)
		require.NoError(t, err)
		assert.Equal(t, -5, entry.Delta())
		assert.Equal(t, domain.MovementOut, entry.MovementType)

		entry, err = f.ledger.SetLevelTx(ctx, tx, p.ID, 3, f.seller.ID, domain.ManualAdjustmentReason)
		assert.NoError(t, err)
		assert.Nil(t, entry)

		_, err = f.ledger.SetLevelTx(ctx, tx, p.ID, -1, f.seller.ID, domain.ManualAdjustmentReason)
		assert.ErrorIs(t, err, domain.ErrValidation)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.store.stockOf(p.ID))
	assert.Len(t, f.store.historyOf(p.ID), 1)
}

func TestStockLedger_BoundsAdjustments(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	p := f.store.addProduct("ACC001", "89.90", 40)

	for _, delta := range []int{domain.MaxStockDelta + 1, -domain.MaxStockDelta - 1, math.MaxInt, math.MinInt} {
		_, err := f.ledger.Adjust(ctx, domain.StockAdjustment{ProductID: p.ID, Delta: delta, ActorID: f.seller.ID})
		assert.ErrorIs(t, err, domain.ErrValidation, "delta %d", delta)
	}

	after, err := f.ledger.Adjust(ctx, domain.StockAdjustment{ProductID: p.ID, Delta: domain.MaxStockDelta, ActorID: f.seller.ID})
	require.NoError(t, err)
	assert.Equal(t, 40+domain.MaxStockDelta, after)

	err = f.store.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		_, err := f.ledger.AdjustTx(ctx, tx, domain.StockAdjustment{ProductID: p.ID, Delta: math.MaxInt, ActorID: f.seller.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = f.ledger.AdjustTx(ctx, tx, domain.StockAdjustment{ProductID: p.ID, Delta: math.MinInt, ActorID: f.seller.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = f.ledger.SetLevelTx(ctx, tx, p.ID, domain.MaxStockLevel+1, f.seller.ID, domain.ManualAdjustmentReason)
		assert.ErrorIs(t, err, domain.ErrValidation)

		entry, err := f.ledger.SetLevelTx(ctx, tx, p.ID, domain.MaxStockLevel, f.seller.ID, domain.ManualAdjustmentReason)
		require.NoError(t, err)
		assert.Equal(t, domain.MaxStockLevel, entry.QuantityAfter)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MaxStockLevel, f.store.stockOf(p.ID))
	assert.Len(t, f.store.historyOf(p.ID), 2)
}

func TestStockLedger_HistoryNewestFirstAndLimited(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	p := f.store.addProduct("KEY001", "249.00", 0)

	for i := 1; i <= 5; i++ {
		_, err := f.ledger.Adjust(ctx, domain.StockAdjustment{ProductID: p.ID, Delta: 1, ActorID: f.seller.ID})
		require.NoError(t, err)
	}

	history, err := f.ledger.History(ctx, p.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 5, history[0].QuantityAfter)
	assert.Equal(t, 4, history[1].QuantityAfter)
	assert.Equal(t, f.seller.FullName, history[0].AccountName)

	all, err := f.ledger.History(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = f.ledger.History(ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
