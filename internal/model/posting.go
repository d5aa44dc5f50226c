package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PostingLine is one side of a balanced posting. Zero IDs mean "not linked".
type PostingLine struct {
	AccountID       int64
	Amount          decimal.Decimal // positive = debit, negative = credit
	JobID           int64
	VendorID        int64
	InstallerID     int64
	DealID          int64
	RehabCategoryID int64
	Purpose         Purpose
	Cleared         bool
	Memo            string
}

// Posting is a balanced set of lines belonging to one ledger transaction.
type Posting struct {
	Date        time.Time
	Description string
	Reference   string
	Lines       []PostingLine
}

// Sum returns the sum of all line amounts.
func (p Posting) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

// CheckBalanced verifies the posting is non-empty, every line names an account,
// and the lines sum to zero within tol.
func (p Posting) CheckBalanced(tol decimal.Decimal) error {
	if len(p.Lines) == 0 {
		return InvariantError{Invariant: "non_empty", Description: "posting has no lines"}
	}
	for i, l := range p.Lines {
		if l.AccountID == 0 {
			return InvariantError{Invariant: "account", Description: fmt.Sprintf("line %d has no account", i+1)}
		}
	}
	if sum := p.Sum(); sum.Abs().GreaterThan(tol) {
		return InvariantError{
			Invariant:   "zero_sum",
			Description: fmt.Sprintf("lines sum to %s, must be 0", sum.StringFixed(2)),
		}
	}
	return nil
}
