package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipledger/flipledger/internal/accounts"
	"github.com/flipledger/flipledger/internal/commitlog"
	"github.com/flipledger/flipledger/internal/config"
	"github.com/flipledger/flipledger/internal/journal"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "flipledger-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "flipledger")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/flipledger")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runFlipledger(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// inProject runs a command against the project in dir.
func inProject(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return runFlipledger(t, append([]string{"--config", filepath.Join(dir, config.FileName)}, args...)...)
}

func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runFlipledger(t, "init", dir, "--name", "Test Flips")
	require.NoError(t, err, out)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initProject(t)

	for _, d := range []string{"import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{config.FileName, "flipledger.db", "chart-of-accounts.csv"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir := initProject(t)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Test Flips", cfg.Business.Name)
	assert.Equal(t, "flip_and_contract", cfg.Business.Type)
	assert.Equal(t, filepath.Join(dir, "flipledger.db"), cfg.DatabasePath())
}

func TestInit_Accounts(t *testing.T) {
	dir := initProject(t)

	svc, err := accounts.Load(filepath.Join(dir, "chart-of-accounts.csv"))
	require.NoError(t, err)
	assert.Len(t, svc.All(), len(accounts.DefaultChart("flip_and_contract")))
	assert.True(t, svc.Exists(accounts.CodeChecking))
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runFlipledger(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExistingProject(t *testing.T) {
	dir := initProject(t)
	out, err := runFlipledger(t, "init", dir, "--name", "Again")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_ChartMissingPostingAccounts(t *testing.T) {
	chart, err := filepath.Abs("../accounts/testdata/chart-of-accounts.csv")
	require.NoError(t, err)

	out, err := runFlipledger(t, "init", t.TempDir(), "--name", "Sparse", "--chart", chart)
	require.Error(t, err)
	assert.Contains(t, out, "missing a posting account")
}

func TestInit_ChartWithoutStatementAccounts(t *testing.T) {
	chart := filepath.Join(t.TempDir(), "chart.csv")
	require.NoError(t, os.WriteFile(chart, []byte("code,name,type,purpose,description\n"+
		"30000,Owner's Equity,equity,business,\n"+
		"61000,Closing Costs,expense,business,\n"), 0o644))

	out, err := runFlipledger(t, "init", t.TempDir(), "--name", "No Bank", "--chart", chart)
	require.Error(t, err)
	assert.Contains(t, out, "no bank or credit card account")
}

func TestInit_ListsStatementAccounts(t *testing.T) {
	out, err := runFlipledger(t, "init", t.TempDir(), "--name", "Listing")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Statement account "+accounts.CodeChecking)
	assert.Contains(t, out, "Statement account "+accounts.CodeCreditCard)
}

const statement = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,03/14/2024,HOME DEPOT #4521,-212.48,DEBIT_CARD,8412.77,
DEBIT,03/15/2024,JOES DINER,-55.00,DEBIT_CARD,8357.77,
`

func TestReconcile_ProcessSetCommit(t *testing.T) {
	dir := initProject(t)
	file := filepath.Join(dir, "import", "march.csv")
	require.NoError(t, os.WriteFile(file, []byte(statement), 0o644))

	out, err := inProject(t, dir, "reconcile", "process", "--account", accounts.CodeChecking, "--file", file, "--format", "chase")
	require.NoError(t, err, out)
	assert.Contains(t, out, "HOME DEPOT #4521")

	out, err = inProject(t, dir, "reconcile", "status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "review")

	out, err = inProject(t, dir, "reconcile", "process", "--account", accounts.CodeChecking, "--file", file, "--format", "chase")
	require.Error(t, err, "second process while reviewing")

	out, err = inProject(t, dir, "reconcile", "set", "1", "--account", accounts.CodeRehabMaterials)
	require.NoError(t, err, out)
	out, err = inProject(t, dir, "reconcile", "select", "2", "--off")
	require.NoError(t, err, out)

	out, err = inProject(t, dir, "reconcile", "commit")
	require.NoError(t, err, out)

	entries, err := commitlog.Read(filepath.Join(dir, "commit-log.csv"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, commitlog.ActionCreated, entries[0].Action)
	assert.Equal(t, "HOME DEPOT #4521", entries[0].Description)

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "march.csv"))
	assert.NoError(t, err, "inbox statement is archived")

	out, err = inProject(t, dir, "reconcile", "show")
	require.Error(t, err, "review is cleared after a successful commit")
}

func TestReconcile_Cancel(t *testing.T) {
	dir := initProject(t)
	file := filepath.Join(dir, "march.csv")
	require.NoError(t, os.WriteFile(file, []byte(statement), 0o644))

	_, err := inProject(t, dir, "reconcile", "cancel")
	require.Error(t, err, "nothing to cancel")

	out, err := inProject(t, dir, "reconcile", "process", "--account", accounts.CodeChecking, "--file", file, "--format", "chase")
	require.NoError(t, err, out)
	out, err = inProject(t, dir, "reconcile", "cancel")
	require.NoError(t, err, out)

	_, err = inProject(t, dir, "reconcile", "show")
	require.Error(t, err)
}

func TestReconcile_RejectsCategoryAccount(t *testing.T) {
	dir := initProject(t)
	file := filepath.Join(dir, "march.csv")
	require.NoError(t, os.WriteFile(file, []byte(statement), 0o644))

	out, err := inProject(t, dir, "reconcile", "process", "--account", accounts.CodeRehabMaterials, "--file", file, "--format", "chase")
	require.Error(t, err)
	assert.Contains(t, out, "not a bank or credit card")
}

func TestPost_ExpenseAndMortgage(t *testing.T) {
	dir := initProject(t)

	out, err := inProject(t, dir, "post", "expense",
		"--account", accounts.CodeChecking, "--category", accounts.CodeRehabMaterials,
		"--amount", "212.40", "--date", "2025-06-01", "--description", "HOME DEPOT 4410")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Posted transaction")

	out, err = inProject(t, dir, "deal", "add", "--name", "12 Elm St", "--asset", "63010", "--loan", "64010",
		"--loan-amount", "100000", "--rate", "6", "--term", "360", "--close", "2025-01-15")
	require.NoError(t, err, out)

	out, err = inProject(t, dir, "split", "--deal", "1", "--date", "2025-02-15", "--total", "750")
	require.NoError(t, err, out)
	assert.Contains(t, out, "150.45")

	out, err = inProject(t, dir, "post", "mortgage", "--deal", "1", "--account", accounts.CodeChecking,
		"--date", "2025-03-01", "--total", "1500", "--principal", "950", "--interest", "450", "--escrow", "99")
	require.Error(t, err, "components off by 1.00")
	assert.Contains(t, out, "split")

	out, err = inProject(t, dir, "post", "mortgage", "--deal", "1", "--account", accounts.CodeChecking,
		"--date", "2025-03-01", "--total", "1500", "--principal", "950", "--interest", "450", "--escrow", "100")
	require.NoError(t, err, out)

	entries, err := commitlog.Read(filepath.Join(dir, "commit-log.csv"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, commitlog.ActionPosted, entries[1].Action)
}

func TestJournal_ExportAndCheck(t *testing.T) {
	dir := initProject(t)

	out, err := inProject(t, dir, "post", "expense",
		"--account", accounts.CodeChecking, "--category", accounts.CodeRehabMaterials,
		"--amount", "212.40", "--date", "2025-06-01", "--description", "HOME DEPOT 4410")
	require.NoError(t, err, out)

	csvPath := filepath.Join(dir, "journal.csv")
	out, err = inProject(t, dir, "journal", "export", "--from", "2025-06-01", "--to", "2025-06-30", "--out", csvPath)
	require.NoError(t, err, out)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	lines, err := journal.ReadEntries(f)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "HOME DEPOT 4410", lines[0].Description)
	assert.True(t, lines[0].Amount.Add(lines[1].Amount).IsZero())

	out, err = inProject(t, dir, "journal", "check")
	require.NoError(t, err, out)
	assert.Contains(t, out, "no problems")

	out, err = inProject(t, dir, "journal", "check", "--file", csvPath)
	require.NoError(t, err, out)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte(strings.Join(journal.Header, ",")+"\n"+
		"9,,2025-06-01,99999,stray,5.00,,false,,,,business,\n"), 0o644))
	out, err = inProject(t, dir, "journal", "check", "--file", bad)
	require.Error(t, err)
	assert.Contains(t, out, "zero_sum")
	assert.Contains(t, out, "unknown account")
}

func TestPost_RejectsFractionalCents(t *testing.T) {
	dir := initProject(t)

	out, err := inProject(t, dir, "post", "expense",
		"--account", accounts.CodeChecking, "--category", accounts.CodeRehabMaterials,
		"--amount", "212.405", "--date", "2025-06-01", "--description", "HOME DEPOT 4410")
	require.Error(t, err)
	assert.Contains(t, out, "more than 2 decimal places")

	out, err = inProject(t, dir, "deal", "add", "--name", "9 Oak Ave", "--asset", "63020",
		"--loan", "64020", "--loan-amount", "80000", "--rate", "7.125", "--term", "360", "--close", "2025-02-01")
	require.NoError(t, err, out)

	out, err = inProject(t, dir, "journal", "check")
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 lines checked")
}
