package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipledger/flipledger/internal/model"
)

type knownCodes map[string]bool

func (k knownCodes) Exists(code string) bool { return k[code] }

var chart = knownCodes{"10100": true, "51000": true, "60300": true}

func checks(problems []Problem) []string {
	var out []string
	for _, p := range problems {
		out = append(out, p.Check)
	}
	return out
}

func TestCheck_Clean(t *testing.T) {
	entries := []model.LedgerEntry{
		line(1, "2025-06-01-aaa", "10100", "-42.10"),
		line(1, "2025-06-01-aaa", "51000", "42.10"),
		line(2, "2025-06-01-bbb", "10100", "-30.00"),
		line(2, "2025-06-01-bbb", "51000", "20.00"),
		line(2, "2025-06-01-bbb", "60300", "10.00"),
	}
	assert.Empty(t, Check(entries, chart))
}

func TestCheck_Unbalanced(t *testing.T) {
	entries := []model.LedgerEntry{
		line(1, "", "10100", "-42.10"),
		line(1, "", "51000", "42.00"),
	}
	problems := Check(entries, chart)
	require.Len(t, problems, 1)
	assert.Equal(t, "zero_sum", problems[0].Check)
	assert.Equal(t, int64(1), problems[0].TransactionID)
	assert.Contains(t, problems[0].Error(), "-0.10")
}

func TestCheck_LineProblems(t *testing.T) {
	entries := []model.LedgerEntry{
		line(1, "", "99999", "-1.005"),
		line(1, "", "51000", "1.005"),
		line(1, "", "60300", "0"),
	}
	got := checks(Check(entries, chart))
	assert.Contains(t, got, "account")
	assert.Contains(t, got, "amount")
	assert.Len(t, got, 4)
}

func TestCheck_SingleLine(t *testing.T) {
	problems := Check([]model.LedgerEntry{line(4, "", "10100", "5.00")}, chart)
	assert.ElementsMatch(t, []string{"lines", "zero_sum"}, checks(problems))
}

func TestCheck_HeaderMismatch(t *testing.T) {
	a := line(1, "2025-06-01-aaa", "10100", "-5.00")
	b := line(1, "2025-06-01-aaa", "51000", "5.00")
	b.Date = date(2025, 6, 2)
	b.Description = "other"
	got := checks(Check([]model.LedgerEntry{a, b}, chart))
	assert.Equal(t, []string{"header", "header"}, got)
}

func TestCheck_DuplicateReference(t *testing.T) {
	entries := []model.LedgerEntry{
		line(1, "2025-06-01-aaa", "10100", "-5.00"),
		line(1, "2025-06-01-aaa", "51000", "5.00"),
		line(2, "2025-06-01-aaa", "10100", "-7.00"),
		line(2, "2025-06-01-aaa", "51000", "7.00"),
	}
	problems := Check(entries, chart)
	require.Len(t, problems, 1)
	assert.Equal(t, "reference", problems[0].Check)
	assert.Equal(t, int64(2), problems[0].TransactionID)
}
