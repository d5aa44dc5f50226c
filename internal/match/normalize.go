package match

import (
	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// Normalize converts a statement amount into the ledger sign convention of an
// account class. Credit cards report charges as positive; the ledger records
// them as credits (negative) on the liability account.
func Normalize(amount decimal.Decimal, class model.AccountClass) decimal.Decimal {
	if class.InvertsStatementSign() {
		return amount.Neg()
	}
	return amount
}

// Denormalize is the inverse of Normalize.
func Denormalize(amount decimal.Decimal, class model.AccountClass) decimal.Decimal {
	return Normalize(amount, class)
}
