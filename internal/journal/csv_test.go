package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipledger/flipledger/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func line(txID int64, ref, code, amount string) model.LedgerEntry {
	return model.LedgerEntry{
		TransactionID: txID,
		Reference:     ref,
		Date:          date(2025, 6, 1),
		AccountCode:   code,
		Description:   "HOME DEPOT",
		Amount:        dec(amount),
		Purpose:       model.PurposeBusiness,
	}
}

func TestMarshalEntry_DebitCredit(t *testing.T) {
	debit := MarshalEntry(line(1, "2025-06-01-abc", "51000", "42.10"))
	assert.Equal(t, "42.10", debit[colDebit])
	assert.Empty(t, debit[colCredit])

	credit := MarshalEntry(line(1, "2025-06-01-abc", "10100", "-42.10"))
	assert.Empty(t, credit[colDebit])
	assert.Equal(t, "42.10", credit[colCredit])
	assert.Equal(t, "false", credit[colCleared])
	assert.Equal(t, "2025-06-01", credit[colDate])
}

func TestWriteReadEntries(t *testing.T) {
	in := []model.LedgerEntry{
		line(3, "2025-06-01-abc", "10100", "-42.10"),
		line(3, "2025-06-01-abc", "51000", "42.10"),
	}
	in[0].Cleared = true
	in[0].Memo = "bank ref 9912"
	in[1].VendorName = "Home Depot"
	in[1].JobName = "Smith kitchen"

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(Header, ",")+"\n"))

	out, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.Equal(t, in[i].TransactionID, out[i].TransactionID)
		assert.Equal(t, in[i].Reference, out[i].Reference)
		assert.True(t, in[i].Date.Equal(out[i].Date))
		assert.Equal(t, in[i].AccountCode, out[i].AccountCode)
		assert.True(t, in[i].Amount.Equal(out[i].Amount), "row %d amount", i)
		assert.Equal(t, in[i].Cleared, out[i].Cleared)
		assert.Equal(t, in[i].VendorName, out[i].VendorName)
		assert.Equal(t, in[i].JobName, out[i].JobName)
		assert.Equal(t, in[i].Memo, out[i].Memo)
	}
}

func TestReadEntries_Empty(t *testing.T) {
	out, err := ReadEntries(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnmarshalEntry_Rejects(t *testing.T) {
	valid := MarshalEntry(line(1, "", "51000", "10.00"))

	tests := []struct {
		name   string
		mutate func([]string) []string
		want   string
	}{
		{"short row", func(r []string) []string { return r[:5] }, "expected 13 fields"},
		{"bad id", func(r []string) []string { r[colTxID] = "x"; return r }, "transaction_id"},
		{"bad date", func(r []string) []string { r[colDate] = "06/01/2025"; return r }, "date"},
		{"bad debit", func(r []string) []string { r[colDebit] = "ten"; return r }, "debit"},
		{"both sides", func(r []string) []string { r[colCredit] = "1.00"; return r }, "both debit"},
		{"bad cleared", func(r []string) []string { r[colCleared] = "maybe"; return r }, "cleared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.mutate(append([]string(nil), valid...))
			_, err := UnmarshalEntry(row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
