package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

// Budget plans an amount per period for an income or expense account.
type Budget struct {
	Account *Account
	Amount  amount.Amount
	Notes   string
}

type budgetSpawn struct {
	start time.Time
	txn   *Transaction
}

type period struct {
	start, end time.Time
}

// BudgetList holds the budgets of a book. Its budgets share one start date
// and repeat rule. Every period of a budget spawns a transaction dated on
// the last day of the period, for the part of the budget the actual
// transactions of that period have not consumed.
type BudgetList struct {
	Start time.Time
	Rule  RepeatRule
	Step  DateStepper
	// Since skips periods ending on or before it. Zero keeps every period.
	Since time.Time

	budgets      []*Budget
	transactions *TransactionList
	rates        amount.RateSource
	spawns       map[*Budget][]budgetSpawn
}

func NewBudgetList(transactions *TransactionList, rates amount.RateSource, start time.Time, rule RepeatRule) *BudgetList {
	return &BudgetList{
		Start:        start,
		Rule:         rule,
		Step:         CalendarStep,
		transactions: transactions,
		rates:        rates,
	}
}

// Add budgets amt per period for a, which must be an income or expense
// account.
func (l *BudgetList) Add(a *Account, amt amount.Amount) (*Budget, error) {
	if !a.Type.IsIncomeStatement() {
		return nil, fmt.Errorf("cannot budget %s account %q", a.Type, a.Name())
	}
	b := &Budget{Account: a, Amount: amt}
	l.budgets = append(l.budgets, b)
	return b, nil
}

func (l *BudgetList) Remove(b *Budget) error {
	i := indexOf(l.budgets, b)
	if i < 0 {
		return &NotFoundError{Kind: "budget"}
	}
	l.budgets = append(l.budgets[:i], l.budgets[i+1:]...)
	delete(l.spawns, b)
	return nil
}

func (l *BudgetList) All() []*Budget {
	return append([]*Budget(nil), l.budgets...)
}

// Spawns generates the budget spawns of every period starting on or before
// until. The spawn of the last period is dated past until. Periods the
// actual transactions already exhausted spawn nothing. Several budgets on
// one account consume transactions in the order they were added.
func (l *BudgetList) Spawns(from, until time.Time) ([]*Transaction, error) {
	if len(l.budgets) == 0 {
		return nil, nil
	}
	if until.IsZero() {
		return nil, ErrUnboundedSchedule
	}
	periods, err := l.periods(until)
	if err != nil {
		return nil, err
	}

	consumed := make(map[*Account]map[*Transaction]bool)
	l.spawns = make(map[*Budget][]budgetSpawn)
	var result []*Transaction
	for _, b := range l.budgets {
		if b.Amount.IsZero() {
			continue
		}
		if consumed[b.Account] == nil {
			consumed[b.Account] = make(map[*Transaction]bool)
		}
		spawns, err := l.spawnsFor(b, periods, consumed[b.Account])
		if err != nil {
			return nil, fmt.Errorf("budget of %q: %w", b.Account.Name(), err)
		}
		l.spawns[b] = spawns
		for _, s := range spawns {
			if s.txn.splits[0].amount.IsZero() || (!from.IsZero() && s.txn.Date.Before(from)) {
				continue
			}
			result = append(result, s.txn)
		}
	}
	return result, nil
}

func (l *BudgetList) periods(until time.Time) ([]period, error) {
	step := l.Step
	if step == nil {
		step = CalendarStep
	}
	start, err := step(l.Start, l.Rule, 0)
	if err != nil {
		return nil, err
	}
	var result []period
	for count := 1; !start.After(until); count++ {
		next, err := step(l.Start, l.Rule, count)
		if err != nil {
			return nil, err
		}
		if !next.After(start) {
			return nil, fmt.Errorf("period %d on %s does not follow %s", count, next.Format("2006-01-02"), start.Format("2006-01-02"))
		}
		end := next.AddDate(0, 0, -1)
		if l.Since.IsZero() || end.After(l.Since) {
			result = append(result, period{start: start, end: end})
		}
		start = next
	}
	return result, nil
}

func (l *BudgetList) spawnsFor(b *Budget, periods []period, consumed map[*Transaction]bool) ([]budgetSpawn, error) {
	target := b.Amount
	if b.Account.Type.IsCredit() {
		target = target.Neg()
	}
	cur := target.Currency()

	var relevant []*Transaction
	for _, t := range l.transactions.All() {
		if !consumed[t] && indexOf(t.AffectedAccounts(), b.Account) >= 0 {
			relevant = append(relevant, t)
		}
	}

	spawns := make([]budgetSpawn, 0, len(periods))
	for _, p := range periods {
		spent := amount.New(0, cur)
		for _, t := range relevant {
			if consumed[t] || t.Date.Before(p.start) || t.Date.After(p.end) {
				continue
			}
			amt, err := t.AmountForAccount(b.Account, cur, l.rates)
			if err != nil {
				return nil, err
			}
			if spent, err = spent.Add(amt); err != nil {
				return nil, err
			}
			consumed[t] = true
		}

		remaining := amount.New(0, cur)
		if spent.Abs().Val() < target.Abs().Val() {
			var err error
			if remaining, err = target.Sub(spent); err != nil {
				return nil, err
			}
		}
		txn := NewTransaction(p.end, "", WithType(BudgetSpawn), WithNotes(b.Notes), WithSplits(
			NewSplit(b.Account, remaining),
			NewSplit(nil, remaining.Neg()),
		))
		spawns = append(spawns, budgetSpawn{start: p.start, txn: txn})
	}
	return spawns, nil
}

// AmountFor prorates what the budgets of a still plan within [from, to],
// valued in cur. It reads the spawns of the last cook, so that cook must
// reach past to. Days up to Since are not planned anymore.
func (l *BudgetList) AmountFor(a *Account, from, to time.Time, cur *currency.Currency) (amount.Amount, error) {
	total := amount.New(0, cur)
	for _, b := range l.budgets {
		if b.Account != a {
			continue
		}
		for _, s := range l.spawns[b] {
			amt, err := s.txn.AmountForAccount(a, cur, l.rates)
			if err != nil {
				return amount.Amount{}, err
			}
			if amt.IsZero() {
				continue
			}
			start := s.start
			if !l.Since.IsZero() && !start.After(l.Since) {
				start = l.Since.AddDate(0, 0, 1)
			}
			if total, err = total.Add(prorate(amt, start, s.txn.Date, from, to)); err != nil {
				return amount.Amount{}, err
			}
		}
	}
	return total, nil
}

// prorate takes the share of a, spread evenly over the days of
// [start, end], that falls within [from, to].
func prorate(a amount.Amount, start, end, from, to time.Time) amount.Amount {
	span := days(start, end)
	if from.After(start) {
		start = from
	}
	if to.Before(end) {
		end = to
	}
	overlap := days(start, end)
	if span <= 0 || overlap <= 0 {
		return amount.New(0, a.Currency())
	}
	return a.Mul(decimal.NewFromInt(overlap).Div(decimal.NewFromInt(span)))
}

func days(start, end time.Time) int64 {
	return int64(math.Round(end.Sub(start).Hours()/24)) + 1
}
