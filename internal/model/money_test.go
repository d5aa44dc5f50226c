package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCents(t *testing.T) {
	assert.Equal(t, int64(4537), Cents(dec("45.37")))
	assert.Equal(t, int64(-4537), Cents(dec("-45.37")))
	assert.Equal(t, int64(1), Cents(dec("0.005")))
	assert.True(t, FromCents(-3900).Equal(dec("-39.00")))
}

func TestScaleAmounts_TwoLines(t *testing.T) {
	factor := dec("55.00").Div(dec("45.37"))
	got := ScaleAmounts([]decimal.Decimal{dec("-45.37"), dec("45.37")}, factor)
	require.Len(t, got, 2)
	assert.Equal(t, "-55.00", got[0].StringFixed(2))
	assert.Equal(t, "55.00", got[1].StringFixed(2))
}

func TestScaleAmounts_ResidualKeepsLargestExact(t *testing.T) {
	in := []decimal.Decimal{dec("-10.00"), dec("3.33"), dec("3.33"), dec("3.34")}
	got := ScaleAmounts(in, dec("1.5"))

	assert.Equal(t, "-15.00", got[0].StringFixed(2))
	sum := decimal.Zero
	for _, g := range got {
		sum = sum.Add(g)
	}
	assert.True(t, sum.IsZero(), "scaled amounts must stay zero-sum, got %s", sum)
}

func TestScaleAmounts_Empty(t *testing.T) {
	assert.Empty(t, ScaleAmounts(nil, dec("2")))
}

func TestIsWholeCents(t *testing.T) {
	assert.True(t, IsWholeCents(dec("10.01")))
	assert.True(t, IsWholeCents(dec("-10.10")))
	assert.True(t, IsWholeCents(dec("7")))
	assert.False(t, IsWholeCents(dec("100.005")))
	assert.False(t, IsWholeCents(dec("-0.001")))
}
