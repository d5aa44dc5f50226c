package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// CSVParser parses a generic CSV with a header row naming at least date,
// description and amount columns. Optional columns: status, reference.
type CSVParser struct{}

var csvDateFormats = []string{"2006-01-02", "01/02/2006", "1/2/2006", "01/02/06"}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads the CSV and returns candidate transactions.
func (p *CSVParser) Parse(r io.Reader) ([]model.CandidateTransaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"date", "description", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("CSV header missing %q column", required)
		}
	}

	var txns []model.CandidateTransaction
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		txn, err := parseCSVRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseCSVRow(rec []string, cols map[string]int) (model.CandidateTransaction, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := parseFlexibleDate(field("date"))
	if err != nil {
		return model.CandidateTransaction{}, err
	}

	amount, err := parseAmount(field("amount"))
	if err != nil {
		return model.CandidateTransaction{}, err
	}

	status := model.BankPosted
	if strings.EqualFold(field("status"), string(model.BankPending)) {
		status = model.BankPending
	}

	return model.CandidateTransaction{
		Date:        date,
		Description: field("description"),
		Amount:      amount,
		BankStatus:  status,
		Reference:   field("reference"),
	}, nil
}

func parseFlexibleDate(s string) (time.Time, error) {
	for _, layout := range csvDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unrecognized format", s)
}

// parseAmount accepts "$1,234.56", "-12.00" and accounting "(12.00)".
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	neg := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		neg = true
		clean = clean[1 : len(clean)-1]
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
