package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

// Book ties accounts, transactions, cooking and undo together. Every
// successful mutation records exactly one undo step and recooks.
type Book struct {
	Accounts     *AccountList
	Transactions *TransactionList
	Oven         *Oven
	Undoer       *Undoer
}

func NewBook(defaultCurrency *currency.Currency, rates amount.RateSource) *Book {
	accounts := NewAccountList(defaultCurrency)
	transactions := NewTransactionList()
	return &Book{
		Accounts:     accounts,
		Transactions: transactions,
		Oven:         NewOven(accounts, transactions, rates),
		Undoer:       NewUndoer(accounts, transactions),
	}
}

// Cook recooks every entry.
func (b *Book) Cook(ctx context.Context) error {
	return b.Oven.Cook(ctx, time.Time{}, time.Time{})
}

// commit cooks the applied action and records it. An action that fails to
// cook is reverted and leaves no undo step.
func (b *Book) commit(ctx context.Context, action *Action) error {
	b.Transactions.Invalidate()
	if err := b.Cook(ctx); err != nil {
		if derr := b.Undoer.Discard(action); derr != nil {
			return errors.Join(err, derr)
		}
		b.Transactions.Invalidate()
		zerolog.Ctx(ctx).Debug().Err(err).Str("action", action.Description).Msg("reverted")
		return errors.Join(err, b.Cook(ctx))
	}
	b.Undoer.Record(action)
	zerolog.Ctx(ctx).Debug().Str("action", action.Description).Msg("recorded")
	return nil
}

// AddSchedule makes the occurrences of s part of every cook.
func (b *Book) AddSchedule(s *Schedule) {
	b.Oven.AddSpawnSource(s)
}

// NewBudgetList makes the spawns of a new budget list part of every cook.
func (b *Book) NewBudgetList(start time.Time, rule RepeatRule) *BudgetList {
	l := NewBudgetList(b.Transactions, b.Oven.rates, start, rule)
	b.Oven.AddSpawnSource(l)
	return l
}

// NewAccount creates an account. An empty name picks a free "New account"
// name; a nil currency uses the book default.
func (b *Book) NewAccount(ctx context.Context, name string, typ AccountType, cur *currency.Currency) (*Account, error) {
	if name == "" {
		name = b.Accounts.NewName("New account")
	}
	a, err := b.Accounts.Create(name, cur, typ)
	if err != nil {
		return nil, err
	}
	action := NewAction("Add account")
	action.AccountsAdded(a)
	return a, b.commit(ctx, action)
}

// AccountEdit lists the account fields to change. Nil fields are left
// alone.
type AccountEdit struct {
	Name          *string
	Type          *AccountType
	Currency      *currency.Currency
	AccountNumber *string
	GroupName     *string
	Notes         *string
	Reference     *string
	Inactive      *bool
}

func (b *Book) ChangeAccount(ctx context.Context, a *Account, edit AccountEdit) error {
	if !b.Accounts.Contains(a) {
		return accountNotFound(a)
	}
	action := NewAction("Change account")
	action.ChangeAccounts(a)
	before := *a

	if err := applyAccountEdit(b.Accounts, a, edit); err != nil {
		_ = b.Accounts.restore(a, before)
		return err
	}
	return b.commit(ctx, action)
}

func applyAccountEdit(l *AccountList, a *Account, edit AccountEdit) error {
	if edit.Name != nil {
		if err := l.Rename(a, *edit.Name); err != nil {
			return err
		}
	}
	if edit.Reference != nil {
		if err := l.SetReference(a, *edit.Reference); err != nil {
			return err
		}
	}
	if edit.Type != nil {
		a.Type = *edit.Type
	}
	if edit.Currency != nil {
		a.Currency = edit.Currency
	}
	if edit.AccountNumber != nil {
		a.AccountNumber = *edit.AccountNumber
	}
	if edit.GroupName != nil {
		a.GroupName = *edit.GroupName
	}
	if edit.Notes != nil {
		a.Notes = *edit.Notes
	}
	if edit.Inactive != nil {
		a.Inactive = *edit.Inactive
	}
	return nil
}

// DeleteAccounts trashes accounts. Their splits move to reassignTo, or
// become unassigned when it is nil. Transactions left without any account
// are deleted.
func (b *Book) DeleteAccounts(ctx context.Context, accounts []*Account, reassignTo *Account) error {
	for _, a := range accounts {
		if !b.Accounts.Contains(a) {
			return accountNotFound(a)
		}
		if a == reassignTo {
			return fmt.Errorf("cannot reassign %q to itself", a.Name())
		}
	}
	action := NewAction("Remove account")
	for _, t := range b.Transactions.All() {
		affected := t.AffectedAccounts()
		touched, survives := false, reassignTo != nil
		for _, a := range affected {
			if indexOf(accounts, a) >= 0 {
				touched = true
			} else {
				survives = true
			}
		}
		switch {
		case !touched:
		case survives:
			action.ChangeTransactions(t)
		default:
			action.TransactionsDeleted(t)
			_ = b.Transactions.Remove(t)
		}
	}
	for _, a := range accounts {
		b.Transactions.ReassignAccount(a, reassignTo)
		if err := b.Accounts.Remove(a); err != nil {
			return err
		}
	}
	action.AccountsDeleted(accounts...)
	return b.commit(ctx, action)
}

// AddTransaction balances txn and appends it after the transactions on its
// date.
func (b *Book) AddTransaction(ctx context.Context, txn *Transaction) error {
	txn.Balance(nil, false)
	b.Transactions.Add(txn, false)
	action := NewAction("Add transaction")
	action.TransactionsAdded(txn)
	return b.commit(ctx, action)
}

// ChangeTransaction applies edits, rebalances and cleans up auto-created
// categories the edit left unused.
func (b *Book) ChangeTransaction(ctx context.Context, txn *Transaction, opts ...ChangeOption) error {
	if !b.Transactions.Contains(txn) {
		return transactionNotFound(txn)
	}
	action := NewAction("Change transaction")
	action.ChangeTransactions(txn)
	before := txn.Replicate()
	if err := txn.Change(opts...); err != nil {
		txn.CopyFrom(before)
		return err
	}
	txn.Balance(nil, false)
	b.Transactions.Sort()
	b.Accounts.CleanEmptyCategories(b.Transactions)
	return b.commit(ctx, action)
}

// ChangeSplit edits one split and rebalances around it. Two-split
// transactions keep their second leg mirrored.
func (b *Book) ChangeSplit(ctx context.Context, txn *Transaction, split *Split, account *Account, amt amount.Amount) error {
	if !b.Transactions.Contains(txn) {
		return transactionNotFound(txn)
	}
	if indexOf(txn.splits, split) < 0 {
		return &NotFoundError{Kind: "split"}
	}
	action := NewAction("Change transaction")
	action.ChangeTransactions(txn)
	split.SetAccount(account)
	split.SetAmount(amt)
	txn.Balance(split, true)
	txn.Touch()
	b.Accounts.CleanEmptyCategories(b.Transactions)
	return b.commit(ctx, action)
}

func (b *Book) DeleteTransactions(ctx context.Context, txns ...*Transaction) error {
	for _, t := range txns {
		if !b.Transactions.Contains(t) {
			return transactionNotFound(t)
		}
	}
	action := NewAction("Remove transaction")
	for _, t := range txns {
		_ = b.Transactions.Remove(t)
	}
	action.TransactionsDeleted(txns...)
	b.Accounts.CleanEmptyCategories(b.Transactions)
	return b.commit(ctx, action)
}

// ToggleReconciled reconciles split on date, or unreconciles it when it
// already is.
func (b *Book) ToggleReconciled(ctx context.Context, txn *Transaction, split *Split, date time.Time) error {
	if !b.Transactions.Contains(txn) {
		return transactionNotFound(txn)
	}
	if indexOf(txn.splits, split) < 0 {
		return &NotFoundError{Kind: "split"}
	}
	action := NewAction("Change reconciliation")
	action.ChangeTransactions(txn)
	if split.Reconciled() {
		split.Unreconcile()
	} else {
		split.Reconcile(date)
	}
	return b.commit(ctx, action)
}

// MoveTransaction places txn before target on their shared date, or last
// when target is nil.
func (b *Book) MoveTransaction(ctx context.Context, txn, target *Transaction) error {
	if !b.Transactions.Contains(txn) {
		return transactionNotFound(txn)
	}
	action := NewAction("Move transaction")
	action.ChangeTransactions(b.Transactions.TransactionsAt(txn.Date)...)
	if err := b.Transactions.MoveBefore(txn, target); err != nil {
		return err
	}
	return b.commit(ctx, action)
}

func (b *Book) Undo(ctx context.Context) error {
	if err := b.Undoer.Undo(); err != nil {
		return err
	}
	b.Transactions.Invalidate()
	return b.Cook(ctx)
}

func (b *Book) Redo(ctx context.Context) error {
	if err := b.Undoer.Redo(); err != nil {
		return err
	}
	b.Transactions.Invalidate()
	return b.Cook(ctx)
}
