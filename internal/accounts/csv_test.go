package accounts

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipledger/flipledger/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{Code: "10100", Name: "Business Checking", Type: model.AccountTypeAsset, Purpose: model.PurposeBusiness, Active: true, Description: "Primary checking account"},
		{Code: "60300", Name: "Meals", Type: model.AccountTypeExpense, Purpose: model.PurposeMixed, Active: true},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestReadAccounts_DefaultPurpose(t *testing.T) {
	in := "code,name,type,purpose,description\n51000,Materials,expense,,\n"
	got, err := ReadAccounts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.PurposeBusiness, got[0].Purpose)
	assert.True(t, got[0].Active)
}

func TestReadAccounts_Rejects(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"unknown prefix", "90000,Suspense,asset,business,", "no known class prefix"},
		{"unknown type", "51000,Materials,cost,business,", "unknown account type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := "code,name,type,purpose,description\n" + tt.row + "\n"
			_, err := ReadAccounts(strings.NewReader(in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestReadAccounts_DuplicateCode(t *testing.T) {
	in := "code,name,type,purpose,description\n51000,A,expense,,\n51000,B,expense,,\n"
	_, err := ReadAccounts(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate account code")
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart("flip_and_contract")
	require.NotEmpty(t, chart)

	codes := make(map[string]model.Account)
	for _, acct := range chart {
		codes[acct.Code] = acct
	}
	for _, code := range []string{CodeChecking, CodeCreditCard, CodeGainOnSale, CodeClosingCosts, CodeInterest, CodeEscrow,
		CodeRehabLabor, CodeRehabMaterials, CodeRehabServices, CodeRehabInspection, CodeRehabHolding} {
		_, ok := codes[code]
		assert.True(t, ok, "expected account %s", code)
	}
	assert.Len(t, codes, len(chart), "codes must be unique")

	for _, acct := range chart {
		assert.NotEmpty(t, acct.Name, "account %s missing name", acct.Code)
		assert.NotEqual(t, model.ClassUnknown, acct.Class(), "account %s has unknown class", acct.Code)
	}
}

func TestDefaultChart_UnknownBusinessType(t *testing.T) {
	assert.Equal(t, DefaultChart("flip_and_contract"), DefaultChart("something_else"))
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	defer f.Close()

	accounts, err := ReadAccounts(f)
	require.NoError(t, err)
	require.Len(t, accounts, 9)

	classes := make(map[model.AccountClass]bool)
	for _, acct := range accounts {
		classes[acct.Class()] = true
	}
	assert.True(t, classes[model.ClassCash])
	assert.True(t, classes[model.ClassCreditCard])
	assert.True(t, classes[model.ClassRealEstateAsset])
	assert.True(t, classes[model.ClassRealEstateLoan])
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart("flip_and_contract")

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, chart))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
}
