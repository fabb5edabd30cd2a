package pos

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)

	// Tolerance is the rounding slack allowed when comparing money amounts
	Tolerance = decimal.RequireFromString("0.01")
)

// Totals is the tax-inclusive decomposition of a set of lines
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// LineAmounts holds the derived money columns of a single line
type LineAmounts struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLineAmounts splits unitPrice*quantity into net and tax parts.
// The unit price already includes tax at taxRate percent.
func ComputeLineAmounts(unitPrice, quantity, taxRate decimal.Decimal) LineAmounts {
	gross := unitPrice.Mul(quantity)
	total := gross.Round(2)
	subtotal := net(gross, taxRate).Round(2)
	return LineAmounts{
		Subtotal: subtotal,
		Tax:      total.Sub(subtotal),
		Total:    total,
	}
}

// ComputeTotals sums the lines that still count: voided lines and lines
// pending cancellation are skipped. Each line is rounded on its own before
// summing, so the result equals the sum of the persisted line amounts and
// always satisfies Total = Subtotal + Tax.
func ComputeTotals(lines []CartLine) Totals {
	total := decimal.Zero
	subtotal := decimal.Zero
	for _, l := range lines {
		if !l.Counts() {
			continue
		}
		amounts := ComputeLineAmounts(l.UnitPrice, l.Quantity, l.TaxRate)
		total = total.Add(amounts.Total)
		subtotal = subtotal.Add(amounts.Subtotal)
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      total.Sub(subtotal),
		Total:    total,
	}
}

func net(gross, taxRate decimal.Decimal) decimal.Decimal {
	return gross.Div(one.Add(taxRate.Div(hundred)))
}

// WithinTolerance reports whether a and b differ by at most one cent
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
