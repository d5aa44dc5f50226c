package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// CreateDeal inserts a flip deal and returns its ID.
func (s *SQLiteStore) CreateDeal(ctx context.Context, d model.Deal) (int64, error) {
	if d.Name == "" {
		return 0, model.ValidationError{Field: "name", Description: "required"}
	}
	if d.AssetAccountID == 0 {
		return 0, model.ValidationError{Field: "asset account", Description: "required"}
	}
	if d.CloseDate.IsZero() {
		return 0, model.ValidationError{Field: "close date", Description: "required"}
	}
	var firstPayment sql.NullString
	if !d.FirstPaymentDate.IsZero() {
		firstPayment = sql.NullString{String: formatDate(d.FirstPaymentDate), Valid: true}
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO deals (name, asset_account_id, loan_account_id, original_loan, annual_rate,
		                   term_months, close_date, first_payment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		d.Name, d.AssetAccountID, nullID(d.LoanAccountID), model.Cents(d.OriginalLoan),
		d.AnnualRate.String(), d.TermMonths, formatDate(d.CloseDate), firstPayment,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting deal %q: %w", d.Name, err)
	}
	return id, nil
}

// Deal looks up a deal by ID.
func (s *SQLiteStore) Deal(ctx context.Context, id int64) (model.Deal, error) {
	var d model.Deal
	var loanID sql.NullInt64
	var loanCents int64
	var rate, closeDate string
	var firstPayment sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, asset_account_id, loan_account_id, original_loan, annual_rate,
		       term_months, close_date, first_payment_date
		FROM deals WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.AssetAccountID, &loanID, &loanCents, &rate, &d.TermMonths, &closeDate, &firstPayment)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Deal{}, fmt.Errorf("deal #%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Deal{}, fmt.Errorf("querying deal #%d: %w", id, err)
	}

	d.LoanAccountID = loanID.Int64
	d.OriginalLoan = model.FromCents(loanCents)
	if d.AnnualRate, err = decimal.NewFromString(rate); err != nil {
		return model.Deal{}, fmt.Errorf("parsing rate of deal #%d: %w", id, err)
	}
	if d.CloseDate, err = parseDate(closeDate); err != nil {
		return model.Deal{}, err
	}
	if firstPayment.Valid {
		if d.FirstPaymentDate, err = parseDate(firstPayment.String); err != nil {
			return model.Deal{}, err
		}
	}
	return d, nil
}
