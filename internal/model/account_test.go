package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCode(t *testing.T) {
	tests := []struct {
		code string
		want AccountClass
	}{
		{"10100", ClassCash},
		{"1010", ClassCash},
		{"2100", ClassCreditCard},
		{"21000", ClassCreditCard},
		{"30000", ClassEquity},
		{"40100", ClassIncome},
		{"51000", ClassExpense},
		{"61500", ClassExpense},
		{"63010", ClassRealEstateAsset},
		{"64010", ClassRealEstateLoan},
		{" 2100 ", ClassCreditCard},
		{"", ClassUnknown},
		{"9000", ClassUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyCode(tt.code), "ClassifyCode(%q)", tt.code)
	}
}

func TestAccountClass(t *testing.T) {
	cc := Account{Code: "2100"}
	assert.Equal(t, ClassCreditCard, cc.Class())
	assert.True(t, cc.Class().InvertsStatementSign())

	bank := Account{Code: "10100"}
	assert.False(t, bank.Class().InvertsStatementSign())

	assert.True(t, ClassExpense.IsCategory())
	assert.True(t, ClassIncome.IsCategory())
	assert.False(t, ClassCash.IsCategory())
	assert.Equal(t, "real_estate_loan", ClassRealEstateLoan.String())
}
