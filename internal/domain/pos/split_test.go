package pos

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByAmount_ProportionalQuantities(t *testing.T) {
	lines := []CartLine{line("3000", "1", "0")}

	result, err := SplitByAmount(lines, []decimal.Decimal{dec("1000"), dec("2000")})
	require.NoError(t, err)
	require.Len(t, result.Splits, 2)

	first, second := result.Splits[0], result.Splits[1]
	require.Len(t, first.Items, 1)
	require.Len(t, second.Items, 1)
	assert.True(t, first.Items[0].Quantity.Equal(dec("0.33")), "got %s", first.Items[0].Quantity)
	assert.True(t, second.Items[0].Quantity.Equal(dec("0.67")), "got %s", second.Items[0].Quantity)
	assert.True(t, first.Amount.Equal(dec("990")))
	assert.True(t, second.Amount.Equal(dec("2010")))
	assert.True(t, first.RequestedAmount.Equal(dec("1000")))
	assert.True(t, first.Amount.Add(second.Amount).Equal(result.Total))
}

func TestSplitByAmount_AmountEqualsItems(t *testing.T) {
	lines := []CartLine{
		line("1180", "2", "18"),
		line("450", "3", "10"),
		line("99.99", "1", "0"),
	}
	total := ComputeTotals(lines).Total

	cases := [][]string{
		{"1000", "2809.99"},
		{"1269.99", "1270", "1270"},
		{"0.01", "3809.98"},
		{"952.5", "952.5", "952.5", "952.49"},
	}

	for _, amounts := range cases {
		parts := make([]decimal.Decimal, len(amounts))
		for i, a := range amounts {
			parts[i] = dec(a)
		}
		result, err := SplitByAmount(lines, parts)
		require.NoError(t, err, "amounts %v of total %s", amounts, total)

		for _, s := range result.Splits {
			items := decimal.Zero
			for _, it := range s.Items {
				assert.False(t, it.Quantity.IsNegative())
				items = items.Add(it.Amount())
			}
			assert.True(t, WithinTolerance(items, s.Amount), "split %d: items %s amount %s", s.Index, items, s.Amount)

			for _, it := range s.Items {
				for _, l := range lines {
					if it.LineID == l.ID {
						want := l.Quantity.Mul(*s.RequestedAmount).Div(total).Round(2)
						assert.True(t, it.Quantity.Equal(want), "split %d line %s: got %s want %s", s.Index, l.ProductName, it.Quantity, want)
					}
				}
			}
		}
	}
}

func TestSplitByAmount_EqualSharesAreEqual(t *testing.T) {
	lines := []CartLine{line("3000", "1", "0")}

	result, err := SplitByAmount(lines, []decimal.Decimal{dec("1000"), dec("1000"), dec("1000")})
	require.NoError(t, err)
	require.Len(t, result.Splits, 3)

	for _, s := range result.Splits {
		require.Len(t, s.Items, 1)
		assert.True(t, s.Items[0].Quantity.Equal(dec("0.33")), "split %d quantity %s", s.Index, s.Items[0].Quantity)
		assert.True(t, s.Amount.Equal(dec("990")), "split %d amount %s", s.Index, s.Amount)
	}
}

func TestSplitByAmount_Validation(t *testing.T) {
	lines := []CartLine{line("3000", "1", "0")}

	_, err := SplitByAmount(lines, []decimal.Decimal{dec("1000"), dec("1000")})
	assert.ErrorIs(t, err, ErrSplitAmountMismatch)

	_, err = SplitByAmount(lines, []decimal.Decimal{dec("3000"), dec("0")})
	assert.ErrorIs(t, err, ErrInvalidSplitAmount)

	_, err = SplitByAmount(lines, nil)
	assert.ErrorIs(t, err, ErrInvalidSplitAmount)

	_, err = SplitByAmount(nil, []decimal.Decimal{dec("1")})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = SplitByAmount(lines, []decimal.Decimal{dec("1000"), dec("2000.01")})
	assert.NoError(t, err)
}

func TestSplitByProduct(t *testing.T) {
	burger := line("1180", "3", "18")
	beer := line("1000", "2", "18")
	voided := line("500", "1", "0")
	voided.Voided = true
	lines := []CartLine{burger, beer, voided}

	result, err := SplitByProduct(lines, []ProductAssignment{
		{LineID: burger.ID, Quantities: []int64{1, 2, 0}},
		{LineID: beer.ID, Quantities: []int64{2, 0, 0}},
	})
	require.NoError(t, err)
	require.Len(t, result.Splits, 2, "empty third bucket is dropped")

	assert.True(t, result.Splits[0].Amount.Equal(dec("3180")))
	assert.True(t, result.Splits[1].Amount.Equal(dec("2360")))
	assert.Equal(t, 2, result.Splits[1].Index)
	assert.True(t, result.Total.Equal(dec("5540")))

	for _, l := range []CartLine{burger, beer} {
		qty := decimal.Zero
		for _, s := range result.Splits {
			for _, it := range s.Items {
				if it.LineID == l.ID {
					assert.True(t, it.Quantity.IsPositive())
					qty = qty.Add(it.Quantity)
				}
			}
		}
		assert.True(t, qty.Equal(l.Quantity))
	}
}

func TestSplitByProduct_Validation(t *testing.T) {
	burger := line("1180", "3", "18")
	half := line("800", "1.5", "18")
	tea := line("100", "1", "0")

	tests := []struct {
		name        string
		lines       []CartLine
		assignments []ProductAssignment
		want        error
	}{
		{
			name:        "quantities do not add up",
			lines:       []CartLine{burger},
			assignments: []ProductAssignment{{LineID: burger.ID, Quantities: []int64{1, 1}}},
			want:        ErrSplitAssignment,
		},
		{
			name:        "negative quantity",
			lines:       []CartLine{burger},
			assignments: []ProductAssignment{{LineID: burger.ID, Quantities: []int64{4, -1}}},
			want:        ErrSplitAssignment,
		},
		{
			name:        "missing line",
			lines:       []CartLine{burger},
			assignments: []ProductAssignment{{LineID: uuid.New(), Quantities: []int64{3}}},
			want:        ErrSplitAssignment,
		},
		{
			name:        "fractional source quantity",
			lines:       []CartLine{half},
			assignments: []ProductAssignment{{LineID: half.ID, Quantities: []int64{1, 0}}},
			want:        ErrFractionalSplitSource,
		},
		{
			name:  "bucket count differs between lines",
			lines: []CartLine{burger, tea},
			assignments: []ProductAssignment{
				{LineID: burger.ID, Quantities: []int64{1, 2}},
				{LineID: tea.ID, Quantities: []int64{1}},
			},
			want: ErrSplitAssignment,
		},
		{
			name: "empty cart",
			want: ErrEmptyCart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitByProduct(tt.lines, tt.assignments)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
