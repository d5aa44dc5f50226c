package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// CreateTransaction writes a posting as one transaction with N lines. Every
// line must be whole cents and the lines must sum to exactly zero cents, or the
// whole write is rejected.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, p model.Posting) (int64, error) {
	if err := p.CheckBalanced(model.BalanceTolerance); err != nil {
		return 0, err
	}
	var sum int64
	for i, l := range p.Lines {
		if !model.IsWholeCents(l.Amount) {
			return 0, model.InvariantError{
				Invariant:   "cents",
				Description: fmt.Sprintf("line %d amount %s has more than 2 decimal places", i+1, l.Amount),
			}
		}
		sum += model.Cents(l.Amount)
	}
	if sum != 0 {
		return 0, model.InvariantError{
			Invariant:   "zero_sum",
			Description: fmt.Sprintf("lines sum to %s after rounding to cents", model.FromCents(sum).StringFixed(2)),
		}
	}

	var txID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var ref sql.NullString
		if p.Reference != "" {
			ref = sql.NullString{String: p.Reference, Valid: true}
		}
		err := tx.QueryRowContext(ctx,
			`INSERT INTO transactions (date, description, reference) VALUES (?, ?, ?) RETURNING id`,
			formatDate(p.Date), p.Description, ref,
		).Scan(&txID)
		if err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}

		for i, l := range p.Lines {
			purpose := l.Purpose
			if purpose == "" {
				purpose = model.PurposeBusiness
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO transaction_lines
					(transaction_id, account_id, amount, cleared, vendor_id, job_id,
					 installer_id, deal_id, rehab_category_id, purpose, memo)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				txID, l.AccountID, model.Cents(l.Amount), boolInt(l.Cleared),
				nullID(l.VendorID), nullID(l.JobID), nullID(l.InstallerID),
				nullID(l.DealID), nullID(l.RehabCategoryID), string(purpose), l.Memo,
			)
			if err != nil {
				return fmt.Errorf("inserting line %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return txID, nil
}

// MarkCleared sets a transaction's date to the bank date and clears all its
// lines. Applying it twice leaves the same state.
func (s *SQLiteStore) MarkCleared(ctx context.Context, txID int64, date time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return clearTx(ctx, tx, txID, date)
	})
}

// ScaleTransaction multiplies every line of a transaction by factor, rounding to
// cents while keeping the lines zero-sum, then sets the bank date and clears it.
func (s *SQLiteStore) ScaleTransaction(ctx context.Context, txID int64, factor decimal.Decimal, date time.Time) error {
	if !factor.IsPositive() {
		return model.ValidationError{Field: "factor", Description: "must be positive"}
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id, amount FROM transaction_lines WHERE transaction_id = ? ORDER BY id`, txID)
		if err != nil {
			return fmt.Errorf("querying lines of transaction #%d: %w", txID, err)
		}
		var ids []int64
		var amounts []decimal.Decimal
		err = eachRow(rows, func(r *sql.Rows) error {
			var id, cents int64
			if err := r.Scan(&id, &cents); err != nil {
				return err
			}
			ids = append(ids, id)
			amounts = append(amounts, model.FromCents(cents))
			return nil
		})
		if err != nil {
			return fmt.Errorf("reading lines of transaction #%d: %w", txID, err)
		}
		if len(ids) == 0 {
			return fmt.Errorf("transaction #%d: %w", txID, ErrNotFound)
		}

		for i, amt := range model.ScaleAmounts(amounts, factor) {
			if _, err := tx.ExecContext(ctx, `UPDATE transaction_lines SET amount = ? WHERE id = ?`, model.Cents(amt), ids[i]); err != nil {
				return fmt.Errorf("scaling line #%d: %w", ids[i], err)
			}
		}
		return clearTx(ctx, tx, txID, date)
	})
}

func clearTx(ctx context.Context, tx *sql.Tx, txID int64, date time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE transactions SET date = ? WHERE id = ?`, formatDate(date), txID)
	if err != nil {
		return fmt.Errorf("updating transaction #%d: %w", txID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction #%d: %w", txID, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE transaction_lines SET cleared = 1 WHERE transaction_id = ?`, txID); err != nil {
		return fmt.Errorf("clearing lines of transaction #%d: %w", txID, err)
	}
	return nil
}
