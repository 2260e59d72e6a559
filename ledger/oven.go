package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/telemetry"
)

// SpawnSource supplies generated transactions (schedule occurrences,
// budget spawns) dated within [from, until].
type SpawnSource interface {
	Spawns(from, until time.Time) ([]*Transaction, error)
}

// Oven cooks transactions into per-account entry lists.
type Oven struct {
	accounts     *AccountList
	transactions *TransactionList
	rates        amount.RateSource
	sources      []SpawnSource
	spawns       []*Transaction
}

func NewOven(accounts *AccountList, transactions *TransactionList, rates amount.RateSource) *Oven {
	return &Oven{accounts: accounts, transactions: transactions, rates: rates}
}

// AddSpawnSource registers a source of generated transactions.
func (o *Oven) AddSpawnSource(src SpawnSource) {
	o.sources = append(o.sources, src)
}

// Spawns returns the generated transactions of the last cook.
func (o *Oven) Spawns() []*Transaction {
	return append([]*Transaction(nil), o.spawns...)
}

type pair struct {
	txn   *Transaction
	split *Split
}

// Cook rebuilds entries dated from onward. Entries before from are kept and
// their balances carried over. A zero from recooks everything; a zero until
// stops at the last transaction, or at from when there is none. Without
// any horizon, spawn sources are not consulted.
func (o *Oven) Cook(ctx context.Context, from, until time.Time) error {
	timer := telemetry.StartTimer(ctx, "ledger.cook")
	defer timer.End()

	if until.IsZero() {
		until = o.transactions.LastDate()
	}
	if until.IsZero() {
		until = from
	}
	o.accounts.ClearEntries(from)

	var txns []*Transaction
	for _, t := range o.transactions.All() {
		if inRange(t.Date, from, until) {
			txns = append(txns, t)
		}
	}

	o.spawns = nil
	for _, src := range o.sources {
		if until.IsZero() {
			break
		}
		spawned, err := src.Spawns(from, until)
		if err != nil {
			return fmt.Errorf("spawning transactions: %w", err)
		}
		o.spawns = append(o.spawns, spawned...)
	}
	txns = append(txns, o.spawns...)
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })

	var order []*Account
	byAccount := make(map[*Account][]pair)
	for _, t := range txns {
		for _, s := range t.splits {
			if s.account == nil || !o.accounts.Contains(s.account) {
				continue
			}
			if _, ok := byAccount[s.account]; !ok {
				order = append(order, s.account)
			}
			byAccount[s.account] = append(byAccount[s.account], pair{txn: t, split: s})
		}
	}

	for _, a := range order {
		if err := o.cookAccount(a, byAccount[a]); err != nil {
			return fmt.Errorf("cooking %q: %w", a.Name(), err)
		}
	}
	if err := o.accounts.reconcileEntries(); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Int("transactions", len(txns)).
		Int("spawns", len(o.spawns)).
		Int("accounts", len(order)).
		Msg("cooked entries")
	return nil
}

func inRange(date, from, until time.Time) bool {
	if !from.IsZero() && date.Before(from) {
		return false
	}
	return until.IsZero() || !date.After(until)
}

func (o *Oven) cookAccount(a *Account, pairs []pair) error {
	el := o.accounts.EntriesFor(a)
	balance := el.zero()
	withBudget := el.zero()
	if last := el.Last(time.Time{}); last != nil {
		balance, withBudget = last.balance, last.balanceWithBudget
	}

	cooked := make([]*Entry, 0, len(pairs))
	for _, p := range pairs {
		amt, err := amount.Convert(p.split.amount, a.Currency, p.txn.Date, o.rates)
		if err != nil {
			return err
		}
		if p.txn.Type != BudgetSpawn {
			if balance, err = balance.Add(amt); err != nil {
				return err
			}
		}
		if withBudget, err = withBudget.Add(amt); err != nil {
			return err
		}
		cooked = append(cooked, &Entry{
			Split:             p.split,
			Transaction:       p.txn,
			amount:            amt,
			balance:           balance,
			balanceWithBudget: withBudget,
		})
	}

	for _, e := range cooked {
		el.Add(e)
	}
	return nil
}
