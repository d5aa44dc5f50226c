// Package posting builds balanced ledger postings for each transaction archetype.
//
// Every builder returns a Posting whose lines sum to zero or an error; input
// problems are model.ValidationError, an unbalanced result is model.InvariantError.
package posting

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/config"
	"github.com/flipledger/flipledger/internal/model"
)

// CostType is a rehab cost-type code.
type CostType string

const (
	CostLabor      CostType = "L"
	CostMaterial   CostType = "M"
	CostService    CostType = "S"
	CostInspection CostType = "I"
	CostHolding    CostType = "H"
)

// ParseCostType validates a cost-type code.
func ParseCostType(s string) (CostType, error) {
	switch ct := CostType(s); ct {
	case CostLabor, CostMaterial, CostService, CostInspection, CostHolding:
		return ct, nil
	}
	return "", model.ValidationError{Field: "cost type", Description: fmt.Sprintf("%q is not one of L, M, S, I, H", s)}
}

// Config holds resolved account IDs and tolerances.
type Config struct {
	BalanceTolerance decimal.Decimal
	SplitTolerance   decimal.Decimal
	ClosingCosts     int64
	GainOnSale       int64
	Interest         int64
	Escrow           int64
	Rehab            map[CostType]int64
}

// AccountLookup resolves account codes.
type AccountLookup interface {
	AccountByCode(ctx context.Context, code string) (model.Account, error)
}

// BalanceReader reads live account balances.
type BalanceReader interface {
	AccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

// ResolveConfig turns the posting section of flipledger.yaml into account IDs.
func ResolveConfig(ctx context.Context, lookup AccountLookup, pc config.PostingConfig) (Config, error) {
	cfg := Config{
		BalanceTolerance: decimal.NewFromFloat(pc.BalanceTolerance),
		SplitTolerance:   decimal.NewFromFloat(pc.SplitTolerance),
		Rehab:            make(map[CostType]int64, len(pc.RehabAccounts)),
	}
	resolve := func(what, code string) (int64, error) {
		a, err := lookup.AccountByCode(ctx, code)
		if err != nil {
			return 0, fmt.Errorf("resolving %s account %s: %w", what, code, err)
		}
		return a.ID, nil
	}

	var err error
	if cfg.ClosingCosts, err = resolve("closing costs", pc.ClosingCostsAccount); err != nil {
		return Config{}, err
	}
	if cfg.GainOnSale, err = resolve("gain on sale", pc.GainOnSaleAccount); err != nil {
		return Config{}, err
	}
	if cfg.Interest, err = resolve("interest", pc.InterestAccount); err != nil {
		return Config{}, err
	}
	if cfg.Escrow, err = resolve("escrow", pc.EscrowAccount); err != nil {
		return Config{}, err
	}
	for ct, code := range pc.RehabAccounts {
		id, err := resolve("rehab "+ct, code)
		if err != nil {
			return Config{}, err
		}
		cfg.Rehab[CostType(ct)] = id
	}
	return cfg, nil
}

// Builder constructs postings.
type Builder struct {
	cfg      Config
	balances BalanceReader
}

// NewBuilder creates a Builder. balances is only needed for flip sales.
func NewBuilder(cfg Config, balances BalanceReader) *Builder {
	if cfg.BalanceTolerance.IsZero() {
		cfg.BalanceTolerance = model.BalanceTolerance
	}
	if cfg.SplitTolerance.IsZero() {
		cfg.SplitTolerance = model.SplitTolerance
	}
	return &Builder{cfg: cfg, balances: balances}
}

func (b *Builder) finalize(p model.Posting) (model.Posting, error) {
	if err := p.CheckBalanced(b.cfg.BalanceTolerance); err != nil {
		return model.Posting{}, fmt.Errorf("building %q: %w", p.Description, err)
	}
	return p, nil
}

// NewEntry builds the two-line posting for a reviewed new transaction: the
// cash line carries the normalized amount and the category line its negation.
// Vendor, job and installer links go on the category line only.
func (b *Builder) NewEntry(cashAccountID int64, rt model.ReviewTransaction) (model.Posting, error) {
	if cashAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "account", Description: "a bank or card account is required"}
	}
	category := rt.CategoryAccountID()
	if category == 0 {
		return model.Posting{}, model.ValidationError{Field: "account", Description: fmt.Sprintf("no category for %q; set one before committing", rt.Description())}
	}
	amount := rt.NormalizedAmount
	if amount.IsZero() {
		return model.Posting{}, model.ValidationError{Field: "amount", Description: "must not be zero"}
	}
	if err := requireCents("amount", amount); err != nil {
		return model.Posting{}, err
	}

	cleared := rt.Cleared()
	purpose := rt.Purpose()
	var memo string
	if rt.Candidate.Reference != "" {
		memo = "bank ref " + rt.Candidate.Reference
	}

	return b.finalize(model.Posting{
		Date:        rt.Candidate.Date,
		Description: rt.Description(),
		Lines: []model.PostingLine{
			{AccountID: cashAccountID, Amount: amount, Purpose: purpose, Cleared: cleared, Memo: memo},
			{
				AccountID:   category,
				Amount:      amount.Neg(),
				VendorID:    rt.VendorID(),
				JobID:       rt.JobID(),
				InstallerID: rt.InstallerID(),
				Purpose:     purpose,
				Cleared:     cleared,
			},
		},
	})
}

// TipScaleFactor returns |actual| / |original|, the uniform factor applied to
// every line of a tip-adjusted transaction.
func TipScaleFactor(original, actual decimal.Decimal) (decimal.Decimal, error) {
	if original.IsZero() {
		return decimal.Zero, model.ValidationError{Field: "original amount", Description: "must not be zero"}
	}
	if actual.IsZero() {
		return decimal.Zero, model.ValidationError{Field: "amount", Description: "must not be zero"}
	}
	return actual.Abs().Div(original.Abs()), nil
}

func requirePositive(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return model.ValidationError{Field: field, Description: "must be greater than zero"}
	}
	return requireCents(field, d)
}

func requireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return model.ValidationError{Field: field, Description: "must not be negative"}
	}
	return requireCents(field, d)
}

func requireCents(field string, d decimal.Decimal) error {
	if !model.IsWholeCents(d) {
		return model.ValidationError{Field: field, Description: fmt.Sprintf("%s has more than 2 decimal places", d)}
	}
	return nil
}
