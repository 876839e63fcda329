package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleNumberPrefix precedes the zero-padded sequence value.
const SaleNumberPrefix = "VTA"

// FormatSaleNumber renders a sequence value as VTA-000001.
func FormatSaleNumber(seq int64) string {
	return fmt.Sprintf("%s-%06d", SaleNumberPrefix, seq)
}

// SaleReason is the stock history reason recorded for a sale's decrements.
func SaleReason(number string) string {
	return "Venta " + number
}

type SaleStatus string

const SaleStatusCompleted SaleStatus = "completada"

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentCard     PaymentMethod = "tarjeta"
	PaymentTransfer PaymentMethod = "transferencia"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// CartLine is one product/quantity pair requested by the seller.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// DraftLine is a validated cart line with its frozen price.
type DraftLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// DraftSale is a priced cart that has not been persisted.
type DraftSale struct {
	CustomerID    *uuid.UUID    `json:"customer_id,omitempty"`
	AccountID     uuid.UUID     `json:"account_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Notes         string        `json:"notes"`
	Items         []DraftLine   `json:"items"`
	Totals
	BuiltAt time.Time `json:"built_at"`
}

// Sale is a committed sale header.
type Sale struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Number        string          `json:"number" db:"number"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty" db:"customer_id"`
	AccountID     uuid.UUID       `json:"account_id" db:"account_id"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax           decimal.Decimal `json:"tax" db:"tax"`
	Total         decimal.Decimal `json:"total" db:"total"`
	Status        SaleStatus      `json:"status" db:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	Notes         string          `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	Items         []SaleItem      `json:"items,omitempty"`
}

// SaleItem is a persisted line of a sale.
type SaleItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	SaleID    uuid.UUID       `json:"sale_id" db:"sale_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// SaleState tracks a draft through commit.
type SaleState string

const (
	SaleStateDraft      SaleState = "draft"
	SaleStateValidating SaleState = "validating"
	SaleStateCommitting SaleState = "committing"
	SaleStateCommitted  SaleState = "committed"
	SaleStateRolledBack SaleState = "rolled_back"
)

var saleTransitions = map[SaleState][]SaleState{
	SaleStateDraft:      {SaleStateValidating},
	SaleStateValidating: {SaleStateCommitting, SaleStateRolledBack},
	SaleStateCommitting: {SaleStateCommitted, SaleStateRolledBack},
}

// CanTransition reports whether from -> to is a legal step.
func (s SaleState) CanTransition(to SaleState) bool {
	for _, next := range saleTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s SaleState) Terminal() bool {
	return s == SaleStateCommitted || s == SaleStateRolledBack
}
