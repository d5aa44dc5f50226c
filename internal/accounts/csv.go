package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/flipledger/flipledger/internal/model"
)

const (
	numFields  = 5
	colCode    = 0
	colName    = 1
	colType    = 2
	colPurpose = 3
	colDesc    = 4
)

var validTypes = map[model.AccountType]bool{
	model.AccountTypeAsset:     true,
	model.AccountTypeLiability: true,
	model.AccountTypeEquity:    true,
	model.AccountTypeIncome:    true,
	model.AccountTypeExpense:   true,
}

// ReadAccounts reads a chart-of-accounts CSV seed.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if seen[acct.Code] {
			return nil, fmt.Errorf("row %d: duplicate account code %q", i+2, acct.Code)
		}
		seen[acct.Code] = true
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes a chart-of-accounts CSV seed.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"code", "name", "type", "purpose", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colPurpose] = string(acct.Purpose)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an active Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	code := strings.TrimSpace(record[colCode])
	if model.ClassifyCode(code) == model.ClassUnknown {
		return model.Account{}, fmt.Errorf("account code %q has no known class prefix", code)
	}

	typ := model.AccountType(strings.TrimSpace(record[colType]))
	if !validTypes[typ] {
		return model.Account{}, fmt.Errorf("unknown account type %q", record[colType])
	}

	purpose := model.Purpose(strings.TrimSpace(record[colPurpose]))
	if purpose == "" {
		purpose = model.PurposeBusiness
	}

	return model.Account{
		Code:        code,
		Name:        record[colName],
		Type:        typ,
		Purpose:     purpose,
		Active:      true,
		Description: record[colDesc],
	}, nil
}
