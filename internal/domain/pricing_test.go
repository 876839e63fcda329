package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_LaptopScenario(t *testing.T) {
	price := decimal.RequireFromString("2499.00")
	totals := ComputeTotals([]decimal.Decimal{LineSubtotal(price, 2)})

	assert.Equal(t, "4998.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "899.64", totals.Tax.StringFixed(2))
	assert.Equal(t, "5897.64", totals.Total.StringFixed(2))
}

func TestTaxFor_RoundsHalfAwayFromZero(t *testing.T) {
	// 0.25 * 0.18 = 0.045
	assert.Equal(t, "0.05", TaxFor(decimal.RequireFromString("0.25")).StringFixed(2))
	// 10.01 * 0.18 = 1.8018
	assert.Equal(t, "1.80", TaxFor(decimal.RequireFromString("10.01")).StringFixed(2))
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := ComputeTotals(nil)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

// Property: total is always subtotal plus the rounded tax
func TestProperty_TotalsAreDerived(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total == subtotal + round(subtotal*0.18, 2)", prop.ForAll(
		func(cents []int64, qty []int) bool {
			n := len(cents)
			if len(qty) < n {
				n = len(qty)
			}
			lines := make([]decimal.Decimal, 0, n)
			expected := decimal.Zero
			for i := 0; i < n; i++ {
				line := LineSubtotal(decimal.New(cents[i], -2), qty[i])
				lines = append(lines, line)
				expected = expected.Add(line)
			}
			totals := ComputeTotals(lines)

			return totals.Subtotal.Equal(expected) &&
				totals.Tax.Equal(expected.Mul(TaxRate).Round(2)) &&
				totals.Total.Equal(totals.Subtotal.Add(totals.Tax)) &&
				totals.Tax.Exponent() >= -2
		},
		gen.SliceOf(gen.Int64Range(1, 1_000_000)),
		gen.SliceOf(gen.IntRange(1, 50)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
