package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const transactionsCSV = `date,description,account,amount,account,amount
# january
2024-01-01,Salary,Assets:Checking,2000,Income:Salary,-2000
2024-01-05,Groceries,Expenses:Groceries,150,Assets:Checking,-150
2024-01-10,Rent,Expenses:Rent,900,Assets:Checking,-900
`

// balanceRows returns the fields of every table row, keyed by account.
func balanceRows(stdout string) map[string][]string {
	rows := make(map[string][]string)
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n")[1:] {
		fields := strings.Fields(line)
		rows[fields[0]] = fields[1:]
	}
	return rows
}

func TestReadTransactions(t *testing.T) {
	rows, err := readTransactions(strings.NewReader(transactionsCSV))
	assert.NoError(t, err)
	assert.Equal(t, 3, len(rows))
	assert.Equal(t, "Groceries", rows[1].Description)
	assert.Equal(t, []splitRow{{"Expenses:Groceries", "150"}, {"Assets:Checking", "-150"}}, rows[1].Splits)

	_, err = readTransactions(strings.NewReader("2024-01-01,odd,Assets:Checking\n"))
	assert.Error(t, err)
	_, err = readTransactions(strings.NewReader("2024-02-30,bad date,Assets:Checking,1\n"))
	assert.Error(t, err)
}

func TestBalance(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "transactions.csv")
	assert.NoError(t, os.WriteFile(path, []byte(transactionsCSV), 0o600))

	res := run(t, "balance", path)
	assert.NoError(t, res.err)
	assert.Equal(t, map[string][]string{
		"Assets:Checking":    {"asset", "950.00"},
		"Expenses:Groceries": {"expense", "150.00"},
		"Expenses:Rent":      {"expense", "900.00"},
		"Income:Salary":      {"income", "2000.00"},
	}, balanceRows(res.stdout))

	res = run(t, "balance", path, "--at", "2024-01-07")
	assert.NoError(t, res.err)
	assert.Equal(t, []string{"asset", "1850.00"}, balanceRows(res.stdout)["Assets:Checking"])
}

func TestBalanceWithBudget(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "transactions.csv")
	assert.NoError(t, os.WriteFile(path, []byte(transactionsCSV), 0o600))

	res := run(t, "balance", path, "--at", "2024-01-31", "--today", "2023-12-31",
		"--budget", "Expenses:Groceries=400")
	assert.NoError(t, res.err)
	rows := balanceRows(res.stdout)
	assert.Equal(t, []string{"expense", "150.00", "400.00"}, rows["Expenses:Groceries"])
	assert.Equal(t, []string{"asset", "950.00", "950.00"}, rows["Assets:Checking"])

	res = run(t, "balance", path, "--budget", "Assets:Checking=400")
	assert.Equal(t, 1, res.exitCode())
	assert.Contains(t, res.stderr, "cannot budget asset account")
}

func TestBalanceRejectsInvalidRows(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "bad.csv")
	assert.NoError(t, os.WriteFile(path, []byte("2024-01-01,ok,Assets:Checking,10,Income:Gift,-10\n2024-01-02,bad,Assets:Checking,asdf,Income:Gift,-10\n"), 0o600))

	res := run(t, "balance", path)
	assert.Equal(t, 2, res.exitCode())
	assert.Contains(t, res.stderr, "row 2")
}
