package model

import "github.com/shopspring/decimal"

var (
	// BalanceTolerance is the largest allowed absolute sum of a posting.
	BalanceTolerance = decimal.New(1, -2)
	// SplitTolerance is the allowed mismatch between PITI components and the stated total.
	SplitTolerance = decimal.New(2, -2)

	hundred = decimal.NewFromInt(100)
)

// Cents converts an amount to integer cents, rounding half away from zero.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// IsWholeCents reports whether d has no fractional cents.
func IsWholeCents(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Truncate(0))
}

// FromCents converts integer cents to a decimal amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// ScaleAmounts multiplies each amount by factor, rounded to cents. The largest
// line is kept exact and any rounding residual is folded into the next largest
// line, so a zero-sum input stays zero-sum.
func ScaleAmounts(amounts []decimal.Decimal, factor decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(amounts))
	if len(amounts) == 0 {
		return out
	}

	largest, second := -1, -1
	sum := decimal.Zero
	for i, a := range amounts {
		out[i] = a.Mul(factor).Round(2)
		sum = sum.Add(out[i])
		switch {
		case largest < 0 || a.Abs().GreaterThan(amounts[largest].Abs()):
			second = largest
			largest = i
		case second < 0 || a.Abs().GreaterThan(amounts[second].Abs()):
			second = i
		}
	}

	if !sum.IsZero() {
		target := second
		if target < 0 {
			target = largest
		}
		out[target] = out[target].Sub(sum)
	}
	return out
}
