package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

const entrySelect = `
	SELECT l.id, l.transaction_id, l.account_id, a.code, t.date, t.description,
	       l.amount, l.cleared, l.purpose, COALESCE(t.reference, ''), l.memo,
	       COALESCE(l.vendor_id, 0), COALESCE(v.name, ''),
	       COALESCE(l.job_id, 0), COALESCE(j.name, ''),
	       COALESCE(l.installer_id, 0), COALESCE(i.name, '')
	FROM transaction_lines l
	JOIN transactions t ON t.id = l.transaction_id
	JOIN accounts a ON a.id = l.account_id
	LEFT JOIN vendors v ON v.id = l.vendor_id
	LEFT JOIN jobs j ON j.id = l.job_id
	LEFT JOIN installers i ON i.id = l.installer_id`

func scanEntries(rows *sql.Rows) ([]model.LedgerEntry, error) {
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var date string
		var cents int64
		var cleared int
		err := rows.Scan(
			&e.LineID, &e.TransactionID, &e.AccountID, &e.AccountCode, &date, &e.Description,
			&cents, &cleared, &e.Purpose, &e.Reference, &e.Memo,
			&e.VendorID, &e.VendorName,
			&e.JobID, &e.JobName,
			&e.InstallerID, &e.InstallerName,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger line: %w", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		e.Amount = model.FromCents(cents)
		e.Cleared = cleared != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) queryEntries(ctx context.Context, what, where string, args ...any) ([]model.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, entrySelect+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", what, err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	return entries, nil
}

// PendingEntries returns uncleared lines on accountID dated on or after since.
func (s *SQLiteStore) PendingEntries(ctx context.Context, accountID int64, since time.Time) ([]model.LedgerEntry, error) {
	return s.queryEntries(ctx, "pending entries",
		`WHERE l.account_id = ? AND l.cleared = 0 AND t.date >= ? ORDER BY t.date, l.id`,
		accountID, formatDate(since))
}

// ClearedEntries returns cleared lines on accountID dated on or after since.
func (s *SQLiteStore) ClearedEntries(ctx context.Context, accountID int64, since time.Time) ([]model.LedgerEntry, error) {
	return s.queryEntries(ctx, "cleared entries",
		`WHERE l.account_id = ? AND l.cleared = 1 AND t.date >= ? ORDER BY t.date, l.id`,
		accountID, formatDate(since))
}

// RecentHistory returns cleared category-side (income/expense) lines across all
// accounts, newest first, for suggestion heuristics.
func (s *SQLiteStore) RecentHistory(ctx context.Context, since time.Time, limit int) ([]model.LedgerEntry, error) {
	return s.queryEntries(ctx, "history",
		`WHERE l.cleared = 1 AND t.date >= ?
		   AND substr(a.code, 1, 1) IN ('4', '5', '6')
		   AND substr(a.code, 1, 2) NOT IN ('63', '64')
		 ORDER BY t.date DESC, l.id DESC
		 LIMIT ?`,
		formatDate(since), limit)
}

// EntriesBetween returns all lines on accountID dated within [from, to].
func (s *SQLiteStore) EntriesBetween(ctx context.Context, accountID int64, from, to time.Time) ([]model.LedgerEntry, error) {
	return s.queryEntries(ctx, "entries",
		`WHERE l.account_id = ? AND t.date BETWEEN ? AND ? ORDER BY t.date, l.id`,
		accountID, formatDate(from), formatDate(to))
}

// Journal returns every line dated within [from, to], grouped by transaction.
func (s *SQLiteStore) Journal(ctx context.Context, from, to time.Time) ([]model.LedgerEntry, error) {
	return s.queryEntries(ctx, "journal",
		`WHERE t.date BETWEEN ? AND ? ORDER BY t.date, t.id, l.id`,
		formatDate(from), formatDate(to))
}

// TransactionLines returns every line of a transaction.
func (s *SQLiteStore) TransactionLines(ctx context.Context, txID int64) ([]model.LedgerEntry, error) {
	entries, err := s.queryEntries(ctx, "transaction lines", `WHERE l.transaction_id = ? ORDER BY l.id`, txID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("transaction #%d: %w", txID, ErrNotFound)
	}
	return entries, nil
}

// AccountBalance returns the sum of all lines posted to accountID.
func (s *SQLiteStore) AccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM transaction_lines WHERE account_id = ?`, accountID,
	).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("querying balance of account #%d: %w", accountID, err)
	}
	return model.FromCents(cents), nil
}
