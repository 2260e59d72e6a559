package ledger

import (
	"sort"
	"time"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

var maxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// ReconciliationKey orders entries the way reconciliation happened.
// Unreconciled splits sort after every reconciled one.
type ReconciliationKey struct {
	ReconciliationDate time.Time
	Date               time.Time
	Position           int
	SplitIndex         int
}

func (k ReconciliationKey) Less(other ReconciliationKey) bool {
	switch {
	case !k.ReconciliationDate.Equal(other.ReconciliationDate):
		return k.ReconciliationDate.Before(other.ReconciliationDate)
	case !k.Date.Equal(other.Date):
		return k.Date.Before(other.Date)
	case k.Position != other.Position:
		return k.Position < other.Position
	}
	return k.SplitIndex < other.SplitIndex
}

// Entry is a split seen from the ledger of its account, along with the
// running totals at that point. Entries are rebuilt on every cook.
type Entry struct {
	Split       *Split
	Transaction *Transaction

	amount            amount.Amount
	balance           amount.Amount
	reconciledBalance amount.Amount
	balanceWithBudget amount.Amount
	index             int
}

func (e *Entry) Date() time.Time { return e.Transaction.Date }

// Amount is the split amount in the account currency.
func (e *Entry) Amount() amount.Amount { return e.amount }

func (e *Entry) Balance() amount.Amount { return e.balance }

func (e *Entry) ReconciledBalance() amount.Amount { return e.reconciledBalance }

func (e *Entry) BalanceWithBudget() amount.Amount { return e.balanceWithBudget }

func (e *Entry) Reconciled() bool { return e.Split.Reconciled() }

func (e *Entry) Index() int { return e.index }

func (e *Entry) ReconciliationKey() ReconciliationKey {
	recDate := e.Split.ReconciliationDate()
	if recDate.IsZero() {
		recDate = maxDate
	}
	return ReconciliationKey{
		ReconciliationDate: recDate,
		Date:               e.Transaction.Date,
		Position:           e.Transaction.Position,
		SplitIndex:         e.Split.Index(),
	}
}

// Transfers lists the accounts on the other splits of the transaction.
func (e *Entry) Transfers() []*Account {
	var accounts []*Account
	for _, s := range e.Transaction.splits {
		if s == e.Split || s.account == nil || s.account == e.Split.account {
			continue
		}
		if indexOf(accounts, s.account) < 0 {
			accounts = append(accounts, s.account)
		}
	}
	return accounts
}

// EntryList holds the entries of one account in cooking order.
type EntryList struct {
	account        *Account
	entries        []*Entry
	lastReconciled *Entry
}

func newEntryList(a *Account) *EntryList {
	return &EntryList{account: a}
}

func (l *EntryList) Account() *Account { return l.account }

func (l *EntryList) Len() int { return len(l.entries) }

func (l *EntryList) At(i int) *Entry { return l.entries[i] }

func (l *EntryList) All() []*Entry {
	return append([]*Entry(nil), l.entries...)
}

func (l *EntryList) Add(e *Entry) {
	e.index = len(l.entries)
	l.entries = append(l.entries, e)
	l.track(e)
}

func (l *EntryList) track(e *Entry) {
	if !e.Reconciled() {
		return
	}
	if l.lastReconciled == nil || !e.ReconciliationKey().Less(l.lastReconciled.ReconciliationKey()) {
		l.lastReconciled = e
	}
}

func (l *EntryList) zero() amount.Amount {
	return amount.New(0, l.account.Currency)
}

// Last returns the last entry dated on or before date, or the very last
// entry when date is zero.
func (l *EntryList) Last(date time.Time) *Entry {
	if date.IsZero() {
		if len(l.entries) == 0 {
			return nil
		}
		return l.entries[len(l.entries)-1]
	}
	i := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].Date().After(date)
	})
	if i == 0 {
		return nil
	}
	return l.entries[i-1]
}

// LastBefore returns the last entry dated strictly before date.
func (l *EntryList) LastBefore(date time.Time) *Entry {
	i := sort.Search(len(l.entries), func(i int) bool {
		return !l.entries[i].Date().Before(date)
	})
	if i == 0 {
		return nil
	}
	return l.entries[i-1]
}

// Balance is the running balance at the end of date.
func (l *EntryList) Balance(date time.Time) amount.Amount {
	if e := l.Last(date); e != nil {
		return e.balance
	}
	return l.zero()
}

func (l *EntryList) BalanceWithBudget(date time.Time) amount.Amount {
	if e := l.Last(date); e != nil {
		return e.balanceWithBudget
	}
	return l.zero()
}

// NormalBalance is Balance with credit accounts flipped positive.
func (l *EntryList) NormalBalance(date time.Time) amount.Amount {
	return l.account.NormalizeAmount(l.Balance(date))
}

// BalanceOfReconciled is the reconciled balance as of the latest
// reconciliation.
func (l *EntryList) BalanceOfReconciled() amount.Amount {
	if l.lastReconciled == nil {
		return l.zero()
	}
	return l.lastReconciled.reconciledBalance
}

// ConvertedBalance values Balance(date) in cur at date, or at the date of
// the last entry when date is zero.
func (l *EntryList) ConvertedBalance(date time.Time, cur *currency.Currency, rates amount.RateSource) (amount.Amount, error) {
	e := l.Last(date)
	if e == nil {
		return amount.New(0, cur), nil
	}
	at := date
	if at.IsZero() {
		at = e.Date()
	}
	return amount.Convert(e.balance, cur, at, rates)
}

// CashFlow sums the entries dated within [from, to] in cur, leaving out
// budget spawns.
func (l *EntryList) CashFlow(from, to time.Time, cur *currency.Currency, rates amount.RateSource) (amount.Amount, error) {
	total := amount.New(0, cur)
	for _, e := range l.entries {
		if e.Date().Before(from) || e.Date().After(to) || e.Transaction.Type == BudgetSpawn {
			continue
		}
		converted, err := amount.Convert(e.amount, cur, e.Date(), rates)
		if err != nil {
			return amount.Amount{}, err
		}
		if total, err = total.Add(converted); err != nil {
			return amount.Amount{}, err
		}
	}
	return total, nil
}

// reconcile recomputes reconciled balances over the whole list in
// reconciliation order, so the result does not depend on where a cook
// started.
func (l *EntryList) reconcile() error {
	byKey := l.All()
	sort.SliceStable(byKey, func(i, j int) bool {
		return byKey[i].ReconciliationKey().Less(byKey[j].ReconciliationKey())
	})
	reconciled := l.zero()
	for _, e := range byKey {
		if e.Reconciled() {
			var err error
			if reconciled, err = reconciled.Add(e.amount); err != nil {
				return err
			}
		}
		e.reconciledBalance = reconciled
	}
	return nil
}

// Clear drops the entries dated on or after from. A zero date clears the
// whole list.
func (l *EntryList) Clear(from time.Time) {
	i := 0
	if !from.IsZero() {
		i = sort.Search(len(l.entries), func(i int) bool {
			return !l.entries[i].Date().Before(from)
		})
	}
	l.entries = l.entries[:i]
	l.lastReconciled = nil
	for _, e := range l.entries {
		l.track(e)
	}
}
