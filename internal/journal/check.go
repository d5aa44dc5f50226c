package journal

import (
	"fmt"

	"github.com/flipledger/flipledger/internal/model"
)

// AccountChecker reports whether an account code exists.
type AccountChecker interface {
	Exists(code string) bool
}

// Problem is a single integrity failure found in a journal.
type Problem struct {
	Check         string
	TransactionID int64
	Description   string
}

func (p Problem) Error() string {
	return fmt.Sprintf("transaction #%d: %s: %s", p.TransactionID, p.Check, p.Description)
}

// Check audits journal lines and returns every problem found:
//   - each transaction's lines sum to zero in cents
//   - each transaction has at least two lines
//   - every line names a known account and a non-zero whole-cent amount
//   - lines of one transaction share date, description and reference
//   - references are unique across transactions
func Check(entries []model.LedgerEntry, accounts AccountChecker) []Problem {
	var problems []Problem
	add := func(check string, txID int64, format string, args ...any) {
		problems = append(problems, Problem{Check: check, TransactionID: txID, Description: fmt.Sprintf(format, args...)})
	}

	type group struct {
		first model.LedgerEntry
		lines int
		sum   int64
	}
	groups := make(map[int64]*group)
	var order []int64

	for _, e := range entries {
		g, ok := groups[e.TransactionID]
		if !ok {
			g = &group{first: e}
			groups[e.TransactionID] = g
			order = append(order, e.TransactionID)
		} else {
			if !e.Date.Equal(g.first.Date) {
				add("header", e.TransactionID, "line dated %s, transaction dated %s",
					e.Date.Format(dateFormat), g.first.Date.Format(dateFormat))
			}
			if e.Description != g.first.Description || e.Reference != g.first.Reference {
				add("header", e.TransactionID, "lines disagree on description or reference")
			}
		}
		g.lines++
		g.sum += model.Cents(e.Amount)

		if !accounts.Exists(e.AccountCode) {
			add("account", e.TransactionID, "unknown account %q", e.AccountCode)
		}
		if e.Amount.IsZero() {
			add("amount", e.TransactionID, "line on %s has zero amount", e.AccountCode)
		} else if !model.IsWholeCents(e.Amount) {
			add("amount", e.TransactionID, "%s has more than 2 decimal places", e.Amount)
		}
	}

	refs := make(map[string]int64)
	for _, id := range order {
		g := groups[id]
		if g.lines < 2 {
			add("lines", id, "transaction has %d line, need at least 2", g.lines)
		}
		if g.sum != 0 {
			add("zero_sum", id, "lines sum to %s", model.FromCents(g.sum).StringFixed(2))
		}
		if ref := g.first.Reference; ref != "" {
			if other, dup := refs[ref]; dup {
				add("reference", id, "reference %s already used by transaction #%d", ref, other)
			} else {
				refs[ref] = id
			}
		}
	}
	return problems
}
