package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/ledger"
	"github.com/robinvdvleuten/kasboek/telemetry"
)

const (
	colTxnDate        = 0
	colTxnDescription = 1
	colTxnSplits      = 2
)

// accountPrefixes maps the leading component of an account name to its
// type, the way "Expenses:Groceries" names an expense account.
var accountPrefixes = map[string]ledger.AccountType{
	"assets":      ledger.Asset,
	"liabilities": ledger.Liability,
	"income":      ledger.Income,
	"expenses":    ledger.Expense,
}

type BalanceCmd struct {
	File   string            `arg:"" help:"Transactions CSV: date,description,account,amount[,account,amount...]." type:"existingfile"`
	At     time.Time         `help:"Report balances at the end of this date, the last transaction date when omitted." format:"2006-01-02"`
	Budget map[string]string `help:"Monthly budget for an income or expense account." placeholder:"ACCOUNT=AMOUNT"`
	Today  time.Time         `help:"Budgets only plan periods ending after this date, today when omitted." format:"2006-01-02"`
}

// txnRow is one line of a transactions CSV file.
type txnRow struct {
	Date        time.Time
	Description string
	Splits      []splitRow
}

type splitRow struct {
	Account string
	Amount  string
}

// readTransactions reads date,description,account,amount rows with any
// number of account,amount pairs. A first row starting with "date" is a
// header. Lines starting with # are ignored.
func readTransactions(r io.Reader) ([]txnRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][colTxnDate]), "date") {
		records = records[1:]
	}

	rows := make([]txnRow, 0, len(records))
	for i, rec := range records {
		row, err := unmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func unmarshalTransaction(record []string) (txnRow, error) {
	if len(record) < colTxnSplits+2 || (len(record)-colTxnSplits)%2 != 0 {
		return txnRow{}, fmt.Errorf("expected date, description and account,amount pairs, got %d fields", len(record))
	}
	date, err := time.Parse(dateFormat, strings.TrimSpace(record[colTxnDate]))
	if err != nil {
		return txnRow{}, fmt.Errorf("date: %w", err)
	}
	row := txnRow{Date: date, Description: strings.TrimSpace(record[colTxnDescription])}
	for i := colTxnSplits; i < len(record); i += 2 {
		row.Splits = append(row.Splits, splitRow{
			Account: strings.TrimSpace(record[i]),
			Amount:  strings.TrimSpace(record[i+1]),
		})
	}
	return row, nil
}

// accountOf returns the book account named name, creating it on first use.
// The type comes from the name's prefix, asset when there is none.
func accountOf(ctx context.Context, book *ledger.Book, name string) (*ledger.Account, error) {
	if name == "" {
		return nil, nil
	}
	if a := book.Accounts.Find(name); a != nil {
		return a, nil
	}
	typ := ledger.Asset
	if prefix, _, ok := strings.Cut(name, ":"); ok {
		if t, known := accountPrefixes[strings.ToLower(prefix)]; known {
			typ = t
		}
	}
	return book.NewAccount(ctx, name, typ, nil)
}

// loadBook adds every transaction of rows to book. Amounts are read with p;
// legs left unbalanced end up on an unassigned split.
func loadBook(ctx context.Context, book *ledger.Book, p *amount.Parser, rows []txnRow) error {
	timer := telemetry.StartTimer(ctx, "book.load")
	defer timer.End()

	for i, row := range rows {
		txn := ledger.NewTransaction(row.Date, row.Description)
		for _, sr := range row.Splits {
			a, err := accountOf(ctx, book, sr.Account)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			amt, err := p.Parse(sr.Amount)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			txn.AddSplit(ledger.NewSplit(a, amt))
		}
		if err := book.AddTransaction(ctx, txn); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	zerolog.Ctx(ctx).Debug().Int("transactions", book.Transactions.Len()).Int("accounts", book.Accounts.Len()).Msg("book loaded")
	return nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// addBudgets registers a monthly budget per entry of budgets, starting in
// the month of the first transaction.
func addBudgets(ctx context.Context, book *ledger.Book, p *amount.Parser, budgets map[string]string, today time.Time) (*ledger.BudgetList, error) {
	start := book.Transactions.FirstDate()
	if start.IsZero() {
		start = today
	}
	l := book.NewBudgetList(firstOfMonth(start), ledger.RepeatRule{Kind: ledger.Monthly})
	l.Since = today

	names := make([]string, 0, len(budgets))
	for name := range budgets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a, err := accountOf(ctx, book, name)
		if err != nil {
			return nil, err
		}
		amt, err := p.Parse(budgets[name])
		if err != nil {
			return nil, fmt.Errorf("budget of %q: %w", name, err)
		}
		if _, err := l.Add(a, amt); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (cmd *BalanceCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := openSession(ctx, globals, "balance")
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	file, err := os.Open(cmd.File)
	if err != nil {
		return fail(s, err)
	}
	rows, err := readTransactions(file)
	_ = file.Close()
	if err != nil {
		return fail(s, fmt.Errorf("%s: %w", cmd.File, err))
	}

	p, err := s.parser()
	if err != nil {
		return fail(s, err)
	}
	defaultCurrency, err := resolveCurrency(s.registry, s.cfg.DefaultCurrency)
	if err != nil {
		return fail(s, err)
	}
	book := ledger.NewBook(defaultCurrency, s.registry)
	if err := loadBook(s.ctx, book, p, rows); err != nil {
		return fail(s, fmt.Errorf("%s: %w", cmd.File, err))
	}

	today := cmd.Today
	if today.IsZero() {
		now := time.Now()
		today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	var budgets *ledger.BudgetList
	if len(cmd.Budget) > 0 {
		if budgets, err = addBudgets(s.ctx, book, p, cmd.Budget, today); err != nil {
			return fail(s, err)
		}
	}

	at := cmd.At
	if at.IsZero() {
		at = book.Transactions.LastDate()
	}
	if err := book.Oven.Cook(s.ctx, time.Time{}, at); err != nil {
		return fail(s, err)
	}

	f, err := s.formatter()
	if err != nil {
		return fail(s, err)
	}
	header := []string{"ACCOUNT", "TYPE", "BALANCE"}
	aligns := []alignment{alignLeft, alignLeft, alignRight}
	if budgets != nil {
		header = append(header, "WITH BUDGET")
		aligns = append(aligns, alignRight)
	}
	var rowsOut [][]string
	for _, a := range book.Accounts.Sorted() {
		entries := book.Accounts.EntriesFor(a)
		row := []string{a.Name(), a.Type.String(), s.amount(f, entries.NormalBalance(at))}
		if budgets != nil {
			row = append(row, s.amount(f, a.NormalizeAmount(entries.BalanceWithBudget(at))))
		}
		rowsOut = append(rowsOut, row)
	}
	writeTable(s.stdout, header, rowsOut, aligns...)
	return nil
}
