package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock history entry.
type MovementType string

const (
	MovementIn  MovementType = "entrada"
	MovementOut MovementType = "salida"
)

const (
	// MaxStockDelta bounds a single manual adjustment.
	MaxStockDelta = 1_000_000
	// MaxStockLevel is the largest value the products.stock INTEGER column holds.
	MaxStockLevel = math.MaxInt32
)

// ManualAdjustmentReason labels stock changes made through product edits.
const ManualAdjustmentReason = "Ajuste manual"

// MovementFor derives the movement type of a stock change. ok is false when
// the level did not change, in which case nothing must be recorded.
func MovementFor(before, after int) (movement MovementType, ok bool) {
	switch {
	case after > before:
		return MovementIn, true
	case after < before:
		return MovementOut, true
	default:
		return "", false
	}
}

// StockAdjustment is a request to change a product's stock by Delta units.
type StockAdjustment struct {
	ProductID uuid.UUID
	Delta     int
	ActorID   uuid.UUID
	Reason    string
}

// StockHistoryEntry is one immutable line of the stock audit log.
type StockHistoryEntry struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	ProductID      uuid.UUID    `json:"product_id" db:"product_id"`
	AccountID      uuid.UUID    `json:"account_id" db:"account_id"`
	QuantityBefore int          `json:"quantity_before" db:"quantity_before"`
	QuantityAfter  int          `json:"quantity_after" db:"quantity_after"`
	MovementType   MovementType `json:"movement_type" db:"movement_type"`
	Reason         string       `json:"reason" db:"reason"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// Delta returns the signed change recorded by the entry.
func (e *StockHistoryEntry) Delta() int {
	return e.QuantityAfter - e.QuantityBefore
}
