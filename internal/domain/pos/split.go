package pos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitMode selects how a ticket is divided
type SplitMode string

const (
	SplitModeAmount  SplitMode = "amount"
	SplitModeProduct SplitMode = "product"
)

// SplitItem is a share of one ticket line inside a split
type SplitItem struct {
	LineID      uuid.UUID       `json:"line_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Amount is unit price times quantity
func (i SplitItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(i.Quantity)
}

// Split is one independently payable share. Amount always equals the sum of
// its items; RequestedAmount is what the caller asked for in amount mode.
type Split struct {
	Index           int              `json:"index"`
	Amount          decimal.Decimal  `json:"amount"`
	RequestedAmount *decimal.Decimal `json:"requested_amount,omitempty"`
	Totals          Totals           `json:"totals"`
	Items           []SplitItem      `json:"items"`
}

// SplitResult is the transient output of a split; nothing is persisted
type SplitResult struct {
	Mode   SplitMode       `json:"mode"`
	Total  decimal.Decimal `json:"total"`
	Splits []Split         `json:"splits"`
}

// ProductAssignment gives, for one ticket line, the whole-unit quantity that
// goes to each bucket
type ProductAssignment struct {
	LineID     uuid.UUID `json:"line_id"`
	Quantities []int64   `json:"quantities"`
}

// SplitByAmount replicates every counted line into each split with its
// quantity scaled by amount/total and rounded to 2 decimals. Each split is
// scaled on its own, so equal requested amounts always get equal shares; the
// shares of a line may therefore differ from its quantity by the rounding.
func SplitByAmount(lines []CartLine, amounts []decimal.Decimal) (*SplitResult, error) {
	live := countedLines(lines)
	total := ComputeTotals(lines).Total
	if len(live) == 0 || !total.IsPositive() {
		return nil, ErrEmptyCart
	}
	if len(amounts) == 0 {
		return nil, ErrInvalidSplitAmount
	}
	sum := decimal.Zero
	for _, a := range amounts {
		if !a.IsPositive() {
			return nil, ErrInvalidSplitAmount
		}
		sum = sum.Add(a)
	}
	if !WithinTolerance(sum, total) {
		return nil, ErrSplitAmountMismatch
	}

	result := &SplitResult{Mode: SplitModeAmount, Total: total}
	for i, a := range amounts {
		requested := a
		split := Split{Index: i + 1, RequestedAmount: &requested}
		for _, l := range live {
			qty := l.Quantity.Mul(a).Div(total).Round(2)
			if qty.IsPositive() {
				split.Items = append(split.Items, itemFromLine(l, qty))
			}
		}
		finishSplit(&split)
		result.Splits = append(result.Splits, split)
	}
	return result, nil
}

// SplitByProduct partitions whole units of each counted line across buckets.
// Every line must be assigned exactly once and its bucket quantities must add
// up to the line quantity. Buckets that receive nothing are dropped.
func SplitByProduct(lines []CartLine, assignments []ProductAssignment) (*SplitResult, error) {
	live := countedLines(lines)
	if len(live) == 0 {
		return nil, ErrEmptyCart
	}
	if len(assignments) != len(live) {
		return nil, ErrSplitAssignment
	}

	byLine := make(map[uuid.UUID][]int64, len(assignments))
	for _, a := range assignments {
		if _, dup := byLine[a.LineID]; dup {
			return nil, ErrSplitAssignment
		}
		byLine[a.LineID] = a.Quantities
	}

	buckets := -1
	for _, l := range live {
		qs, ok := byLine[l.ID]
		if !ok {
			return nil, ErrSplitAssignment
		}
		if !l.Quantity.IsInteger() {
			return nil, ErrFractionalSplitSource
		}
		if buckets == -1 {
			buckets = len(qs)
		} else if len(qs) != buckets {
			return nil, ErrSplitAssignment
		}
		var sum int64
		for _, q := range qs {
			if q < 0 {
				return nil, ErrSplitAssignment
			}
			sum += q
		}
		if !decimal.NewFromInt(sum).Equal(l.Quantity) {
			return nil, ErrSplitAssignment
		}
	}
	if buckets < 1 {
		return nil, ErrSplitAssignment
	}

	result := &SplitResult{Mode: SplitModeProduct, Total: ComputeTotals(lines).Total}
	for b := 0; b < buckets; b++ {
		var split Split
		for _, l := range live {
			q := byLine[l.ID][b]
			if q > 0 {
				split.Items = append(split.Items, itemFromLine(l, decimal.NewFromInt(q)))
			}
		}
		if len(split.Items) == 0 {
			continue
		}
		split.Index = len(result.Splits) + 1
		finishSplit(&split)
		result.Splits = append(result.Splits, split)
	}
	return result, nil
}

func countedLines(lines []CartLine) []CartLine {
	var live []CartLine
	for _, l := range lines {
		if l.Counts() {
			live = append(live, l)
		}
	}
	return live
}

func itemFromLine(l CartLine, qty decimal.Decimal) SplitItem {
	return SplitItem{
		LineID:      l.ID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		UnitPrice:   l.UnitPrice,
		TaxRate:     l.TaxRate,
		Quantity:    qty,
	}
}

func finishSplit(s *Split) {
	lines := make([]CartLine, len(s.Items))
	for i, it := range s.Items {
		lines[i] = CartLine{UnitPrice: it.UnitPrice, TaxRate: it.TaxRate, Quantity: it.Quantity}
	}
	s.Totals = ComputeTotals(lines)
	s.Amount = s.Totals.Total
}
