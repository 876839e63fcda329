package domain

import "github.com/shopspring/decimal"

// TaxRate is the IGV applied to every sale.
var TaxRate = decimal.RequireFromString("0.18")

// Totals holds the derived money figures of a sale.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// LineSubtotal is quantity times unit price.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// TaxFor rounds subtotal*TaxRate half away from zero to two places.
func TaxFor(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

// ComputeTotals derives subtotal, tax and total from line subtotals.
func ComputeTotals(lineSubtotals []decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, s := range lineSubtotals {
		subtotal = subtotal.Add(s)
	}
	tax := TaxFor(subtotal)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Equal compares totals by value.
func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) && t.Tax.Equal(o.Tax) && t.Total.Equal(o.Total)
}
