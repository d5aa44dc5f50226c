// Package commitlog keeps an append-only CSV record of reconciliation and
// posting outcomes.
package commitlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Action is what happened to one item.
type Action string

const (
	ActionCleared     Action = "cleared"
	ActionCreated     Action = "created"
	ActionTipAdjusted Action = "tip_adjusted"
	ActionPosted      Action = "posted"
	ActionSkipped     Action = "skipped"
	ActionFailed      Action = "failed"
)

// Entry is one row in the commit log.
type Entry struct {
	Timestamp     time.Time
	RunID         string
	Action        Action
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	TransactionID int64
	Reference     string
	Error         string
}

// Header is the CSV header for the commit log.
const Header = "timestamp,run_id,action,date,description,amount,transaction_id,reference,error"

const (
	numFields        = 9
	colTimestamp     = 0
	colRunID         = 1
	colAction        = 2
	colDate          = 3
	colDescription   = 4
	colAmount        = 5
	colTransactionID = 6
	colReference     = 7
	colError         = 8
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colAction] = string(e.Action)
	if !e.Date.IsZero() {
		row[colDate] = e.Date.Format(time.DateOnly)
	}
	row[colDescription] = e.Description
	row[colAmount] = e.Amount.StringFixed(2)
	if e.TransactionID != 0 {
		row[colTransactionID] = strconv.FormatInt(e.TransactionID, 10)
	}
	row[colReference] = e.Reference
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	var date time.Time
	if record[colDate] != "" {
		if date, err = time.Parse(time.DateOnly, record[colDate]); err != nil {
			return Entry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	var txID int64
	if record[colTransactionID] != "" {
		if txID, err = strconv.ParseInt(record[colTransactionID], 10, 64); err != nil {
			return Entry{}, fmt.Errorf("parsing transaction id %q: %w", record[colTransactionID], err)
		}
	}

	return Entry{
		Timestamp:     ts,
		RunID:         record[colRunID],
		Action:        Action(record[colAction]),
		Date:          date,
		Description:   record[colDescription],
		Amount:        amount,
		TransactionID: txID,
		Reference:     record[colReference],
		Error:         record[colError],
	}, nil
}

// Append writes entries to path, creating the file and header if needed.
func Append(path string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating commit log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening commit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening commit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading commit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
