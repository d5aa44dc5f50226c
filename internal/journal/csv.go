package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

const (
	dateFormat = "2006-01-02"
	numFields  = 13
)

const (
	colTxID = iota
	colRef
	colDate
	colAccount
	colDesc
	colDebit
	colCredit
	colCleared
	colVendor
	colJob
	colInstaller
	colPurpose
	colMemo
)

// Header is the journal CSV column header.
var Header = []string{
	"transaction_id", "reference", "date", "account_code", "description",
	"debit", "credit", "cleared", "vendor", "job", "installer", "purpose", "memo",
}

// ReadEntries reads a journal CSV (with header) into ledger entries.
func ReadEntries(r io.Reader) ([]model.LedgerEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	entries := make([]model.LedgerEntry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes ledger entries as a journal CSV with header.
func WriteEntries(w io.Writer, entries []model.LedgerEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts a ledger line to a CSV row. Positive amounts are
// debits, negative amounts credits.
func MarshalEntry(e model.LedgerEntry) []string {
	row := make([]string, numFields)
	row[colTxID] = strconv.FormatInt(e.TransactionID, 10)
	row[colRef] = e.Reference
	row[colDate] = e.Date.Format(dateFormat)
	row[colAccount] = e.AccountCode
	row[colDesc] = e.Description

	switch {
	case e.Amount.IsPositive():
		row[colDebit] = e.Amount.StringFixed(2)
	case e.Amount.IsNegative():
		row[colCredit] = e.Amount.Neg().StringFixed(2)
	}

	row[colCleared] = strconv.FormatBool(e.Cleared)
	row[colVendor] = e.VendorName
	row[colJob] = e.JobName
	row[colInstaller] = e.InstallerName
	row[colPurpose] = string(e.Purpose)
	row[colMemo] = e.Memo
	return row
}

// UnmarshalEntry converts a CSV row to a ledger line. Only the named
// columns survive; vendor, job and installer IDs stay zero.
func UnmarshalEntry(record []string) (model.LedgerEntry, error) {
	if len(record) != numFields {
		return model.LedgerEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	txID, err := strconv.ParseInt(record[colTxID], 10, 64)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing transaction_id %q: %w", record[colTxID], err)
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	var debit, credit decimal.Decimal
	if record[colDebit] != "" {
		if debit, err = decimal.NewFromString(record[colDebit]); err != nil {
			return model.LedgerEntry{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}
	if record[colCredit] != "" {
		if credit, err = decimal.NewFromString(record[colCredit]); err != nil {
			return model.LedgerEntry{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}
	if !debit.IsZero() && !credit.IsZero() {
		return model.LedgerEntry{}, fmt.Errorf("row has both debit %s and credit %s", debit, credit)
	}

	cleared, err := strconv.ParseBool(record[colCleared])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing cleared %q: %w", record[colCleared], err)
	}

	return model.LedgerEntry{
		TransactionID: txID,
		Reference:     record[colRef],
		Date:          date,
		AccountCode:   record[colAccount],
		Description:   record[colDesc],
		Amount:        debit.Sub(credit),
		Cleared:       cleared,
		VendorName:    record[colVendor],
		JobName:       record[colJob],
		InstallerName: record[colInstaller],
		Purpose:       model.Purpose(record[colPurpose]),
		Memo:          record[colMemo],
	}, nil
}
