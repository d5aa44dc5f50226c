package posting

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// MortgageInput is one PITI payment split into its components.
type MortgageInput struct {
	Deal          model.Deal
	CashAccountID int64
	Date          time.Time
	Total         decimal.Decimal
	Principal     decimal.Decimal
	Interest      decimal.Decimal
	Escrow        decimal.Decimal
	Description   string
}

// Mortgage credits cash for the payment and debits principal (loan account),
// interest and escrow, each only when positive. The components must add up to
// Total within the split tolerance; the cash line carries their exact sum.
func (b *Builder) Mortgage(in MortgageInput) (model.Posting, error) {
	if err := requirePositive("total", in.Total); err != nil {
		return model.Posting{}, err
	}
	parts := []struct {
		field  string
		amount decimal.Decimal
	}{
		{"principal", in.Principal},
		{"interest", in.Interest},
		{"escrow", in.Escrow},
	}
	for _, c := range parts {
		if err := requireNonNegative(c.field, c.amount); err != nil {
			return model.Posting{}, err
		}
	}
	if in.CashAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "cash account", Description: "required"}
	}
	components := in.Principal.Add(in.Interest).Add(in.Escrow)
	if diff := components.Sub(in.Total).Abs(); diff.GreaterThan(b.cfg.SplitTolerance) {
		return model.Posting{}, model.ValidationError{
			Field: "split",
			Description: fmt.Sprintf("principal %s + interest %s + escrow %s = %s, payment is %s",
				in.Principal.StringFixed(2), in.Interest.StringFixed(2), in.Escrow.StringFixed(2),
				components.StringFixed(2), in.Total.StringFixed(2)),
		}
	}
	if in.Principal.IsPositive() && in.Deal.LoanAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "deal", Description: "principal payment needs a loan account"}
	}

	dealID := in.Deal.ID
	lines := []model.PostingLine{
		{AccountID: in.CashAccountID, Amount: components.Neg(), DealID: dealID},
	}
	if in.Principal.IsPositive() {
		lines = append(lines, model.PostingLine{AccountID: in.Deal.LoanAccountID, Amount: in.Principal, DealID: dealID, Memo: "principal"})
	}
	if in.Interest.IsPositive() {
		lines = append(lines, model.PostingLine{AccountID: b.cfg.Interest, Amount: in.Interest, DealID: dealID, Memo: "interest"})
	}
	if in.Escrow.IsPositive() {
		lines = append(lines, model.PostingLine{AccountID: b.cfg.Escrow, Amount: in.Escrow, DealID: dealID, Memo: "escrow"})
	}

	return b.finalize(model.Posting{
		Date:        in.Date,
		Description: orDefault(in.Description, "Mortgage: "+in.Deal.Name),
		Lines:       lines,
	})
}

// Split is the amortization breakdown of one payment.
type Split struct {
	PaymentNumber  int
	Payment        decimal.Decimal // scheduled principal + interest
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	Escrow         decimal.Decimal
	EscrowInferred bool
	Balance        decimal.Decimal // remaining after this payment
	Warnings       []string
}

// Input returns the mortgage input for this split.
func (s Split) Input(deal model.Deal, cashAccountID int64, date time.Time, total decimal.Decimal) MortgageInput {
	return MortgageInput{
		Deal:          deal,
		CashAccountID: cashAccountID,
		Date:          date,
		Total:         total,
		Principal:     s.Principal,
		Interest:      s.Interest,
		Escrow:        s.Escrow,
	}
}

// AutoSplit derives principal and interest for the payment covering date from
// a standard amortization schedule. With a nil escrow the remainder of total is
// taken as escrow and a warning is attached.
func AutoSplit(deal model.Deal, date time.Time, total decimal.Decimal, escrow *decimal.Decimal) (Split, error) {
	if !deal.OriginalLoan.IsPositive() {
		return Split{}, model.ValidationError{Field: "loan amount", Description: fmt.Sprintf("%s has no original loan", deal.Name)}
	}
	if deal.TermMonths <= 0 {
		return Split{}, model.ValidationError{Field: "term", Description: "must be at least one month"}
	}
	if deal.AnnualRate.IsNegative() {
		return Split{}, model.ValidationError{Field: "rate", Description: "must not be negative"}
	}
	if err := requirePositive("total", total); err != nil {
		return Split{}, err
	}

	first := deal.FirstPaymentDate
	if first.IsZero() {
		if deal.CloseDate.IsZero() {
			return Split{}, model.ValidationError{Field: "deal", Description: "needs a close date or first payment date"}
		}
		first = deal.CloseDate.AddDate(0, 1, 0)
	}
	n := monthsBetween(first, date) + 1
	if n < 1 {
		return Split{}, model.ValidationError{Field: "date", Description: fmt.Sprintf("%s is before the first payment %s", date.Format(time.DateOnly), first.Format(time.DateOnly))}
	}
	if n > deal.TermMonths {
		return Split{}, model.ValidationError{Field: "date", Description: fmt.Sprintf("payment %d is past the %d-month term", n, deal.TermMonths)}
	}

	rate := deal.AnnualRate.Div(decimal.NewFromInt(1200))
	payment := scheduledPayment(deal.OriginalLoan, rate, deal.TermMonths)

	balance := deal.OriginalLoan
	var principal, interest decimal.Decimal
	for k := 1; k <= n; k++ {
		interest = balance.Mul(rate).Round(2)
		principal = payment.Sub(interest)
		if k == deal.TermMonths || principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)
	}

	s := Split{
		PaymentNumber: n,
		Payment:       payment,
		Principal:     principal,
		Interest:      interest,
		Balance:       balance,
	}
	if escrow != nil {
		s.Escrow = *escrow
		return s, nil
	}
	s.Escrow = total.Sub(principal).Sub(interest)
	if s.Escrow.IsNegative() {
		return Split{}, model.ValidationError{
			Field:       "total",
			Description: fmt.Sprintf("%s is less than principal %s + interest %s", total.StringFixed(2), principal.StringFixed(2), interest.StringFixed(2)),
		}
	}
	s.EscrowInferred = true
	s.Warnings = append(s.Warnings, fmt.Sprintf("escrow %s inferred from total; pass it explicitly to silence this", s.Escrow.StringFixed(2)))
	return s, nil
}

func scheduledPayment(loan, rate decimal.Decimal, term int) decimal.Decimal {
	if rate.IsZero() {
		return loan.Div(decimal.NewFromInt(int64(term))).Round(2)
	}
	r := rate.InexactFloat64()
	factor := r / (1 - math.Pow(1+r, -float64(term)))
	return loan.Mul(decimal.NewFromFloat(factor)).Round(2)
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
