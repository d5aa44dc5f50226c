package posting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// AcquisitionInput describes a flip purchase closing.
type AcquisitionInput struct {
	Deal          model.Deal
	CashAccountID int64
	Date          time.Time
	PurchasePrice decimal.Decimal
	ClosingCosts  decimal.Decimal
	LoanAmount    decimal.Decimal
	Description   string
}

// Acquisition debits the deal's asset for the purchase price, debits closing
// costs, credits the loan for the financed amount and credits cash for the
// cash to close (purchase + closing - loan). Zero lines are omitted.
func (b *Builder) Acquisition(in AcquisitionInput) (model.Posting, error) {
	if err := requirePositive("purchase price", in.PurchasePrice); err != nil {
		return model.Posting{}, err
	}
	if err := requireNonNegative("closing costs", in.ClosingCosts); err != nil {
		return model.Posting{}, err
	}
	if err := requireNonNegative("loan amount", in.LoanAmount); err != nil {
		return model.Posting{}, err
	}
	if in.Deal.AssetAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "deal", Description: "has no asset account"}
	}
	if in.LoanAmount.IsPositive() && in.Deal.LoanAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "deal", Description: "financed purchase needs a loan account"}
	}
	if in.CashAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "cash account", Description: "required"}
	}

	dealID := in.Deal.ID
	lines := []model.PostingLine{
		{AccountID: in.Deal.AssetAccountID, Amount: in.PurchasePrice, DealID: dealID, Memo: "purchase price"},
	}
	if in.ClosingCosts.IsPositive() {
		lines = append(lines, model.PostingLine{AccountID: b.cfg.ClosingCosts, Amount: in.ClosingCosts, DealID: dealID, Memo: "closing costs"})
	}
	if in.LoanAmount.IsPositive() {
		lines = append(lines, model.PostingLine{AccountID: in.Deal.LoanAccountID, Amount: in.LoanAmount.Neg(), DealID: dealID, Memo: "financed"})
	}
	cashToClose := in.PurchasePrice.Add(in.ClosingCosts).Sub(in.LoanAmount)
	if !cashToClose.IsZero() {
		lines = append(lines, model.PostingLine{AccountID: in.CashAccountID, Amount: cashToClose.Neg(), DealID: dealID, Memo: "cash to close"})
	}

	return b.finalize(model.Posting{
		Date:        in.Date,
		Description: orDefault(in.Description, "Acquisition: "+in.Deal.Name),
		Lines:       lines,
	})
}

// SaleInput describes a flip sale closing.
type SaleInput struct {
	Deal          model.Deal
	CashAccountID int64
	Date          time.Time
	SalePrice     decimal.Decimal
	SellingCosts  decimal.Decimal
	Description   string
}

// Sale reads the loan payoff and asset balance live, then debits cash for the
// net proceeds (sale - selling costs - payoff), debits the loan to zero,
// debits closing costs and credits the asset for its full balance. The
// difference between sale price and asset balance goes to gain on sale.
func (b *Builder) Sale(ctx context.Context, in SaleInput) (model.Posting, error) {
	if err := requirePositive("sale price", in.SalePrice); err != nil {
		return model.Posting{}, err
	}
	if err := requireNonNegative("selling costs", in.SellingCosts); err != nil {
		return model.Posting{}, err
	}
	if in.Deal.AssetAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "deal", Description: "has no asset account"}
	}
	if in.CashAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "cash account", Description: "required"}
	}
	if b.balances == nil {
		return model.Posting{}, fmt.Errorf("building sale of %s: no balance reader", in.Deal.Name)
	}

	assetBalance, err := b.balances.AccountBalance(ctx, in.Deal.AssetAccountID)
	if err != nil {
		return model.Posting{}, fmt.Errorf("reading asset balance: %w", err)
	}
	if !assetBalance.IsPositive() {
		return model.Posting{}, model.ValidationError{Field: "deal", Description: fmt.Sprintf("%s has no asset balance to sell", in.Deal.Name)}
	}
	payoff := decimal.Zero
	if in.Deal.LoanAccountID != 0 {
		loanBalance, err := b.balances.AccountBalance(ctx, in.Deal.LoanAccountID)
		if err != nil {
			return model.Posting{}, fmt.Errorf("reading loan balance: %w", err)
		}
		payoff = loanBalance.Neg()
		if payoff.IsNegative() {
			return model.Posting{}, model.ValidationError{Field: "deal", Description: fmt.Sprintf("loan account of %s has a debit balance", in.Deal.Name)}
		}
	}

	dealID := in.Deal.ID
	net := in.SalePrice.Sub(in.SellingCosts).Sub(payoff)
	var lines []model.PostingLine
	if !net.IsZero() {
		lines = append(lines, model.PostingLine{AccountID: in.CashAccountID, Amount: net, DealID: dealID, Memo: "net proceeds"})
	}
	if payoff.IsPositive() {
		lines = append(lines, model.PostingLine{AccountID: in.Deal.LoanAccountID, Amount: payoff, DealID: dealID, Memo: "loan payoff"})
	}
	if in.SellingCosts.IsPositive() {
		lines = append(lines, model.PostingLine{AccountID: b.cfg.ClosingCosts, Amount: in.SellingCosts, DealID: dealID, Memo: "selling costs"})
	}
	lines = append(lines, model.PostingLine{AccountID: in.Deal.AssetAccountID, Amount: assetBalance.Neg(), DealID: dealID, Memo: "remove asset"})
	if gain := in.SalePrice.Sub(assetBalance); !gain.IsZero() {
		lines = append(lines, model.PostingLine{AccountID: b.cfg.GainOnSale, Amount: gain.Neg(), DealID: dealID, Memo: "gain on sale"})
	}

	return b.finalize(model.Posting{
		Date:        in.Date,
		Description: orDefault(in.Description, "Sale: "+in.Deal.Name),
		Lines:       lines,
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
