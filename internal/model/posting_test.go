package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCheckBalanced(t *testing.T) {
	p := Posting{Lines: []PostingLine{
		{AccountID: 1, Amount: dec("-45.37")},
		{AccountID: 2, Amount: dec("45.37")},
	}}
	require.NoError(t, p.CheckBalanced(BalanceTolerance))
	assert.True(t, p.Sum().IsZero())
}

func TestCheckBalanced_WithinTolerance(t *testing.T) {
	p := Posting{Lines: []PostingLine{
		{AccountID: 1, Amount: dec("-10.00")},
		{AccountID: 2, Amount: dec("10.01")},
	}}
	assert.NoError(t, p.CheckBalanced(BalanceTolerance))
}

func TestCheckBalanced_Unbalanced(t *testing.T) {
	p := Posting{Lines: []PostingLine{
		{AccountID: 1, Amount: dec("-10.00")},
		{AccountID: 2, Amount: dec("10.02")},
	}}
	err := p.CheckBalanced(BalanceTolerance)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariant))
	assert.Contains(t, err.Error(), "0.02")
}

func TestCheckBalanced_Empty(t *testing.T) {
	err := Posting{}.CheckBalanced(BalanceTolerance)
	require.Error(t, err)
	var ie InvariantError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "non_empty", ie.Invariant)
}

func TestCheckBalanced_MissingAccount(t *testing.T) {
	p := Posting{Lines: []PostingLine{
		{AccountID: 1, Amount: dec("-1.00")},
		{Amount: dec("1.00")},
	}}
	err := p.CheckBalanced(BalanceTolerance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestValidationErrorIs(t *testing.T) {
	err := error(ValidationError{Field: "amount", Description: "required"})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrInvariant))
	assert.Equal(t, "invalid amount: required", err.Error())
}
