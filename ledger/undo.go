package ledger

import (
	"errors"

	"golang.org/x/exp/slices"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

type accountChange struct {
	live     *Account
	before   Account
	after    Account
	captured bool
}

type transactionChange struct {
	live   *Transaction
	before *Transaction
	after  *Transaction
}

// Action records one mutation. Changed entities are snapshotted when they
// are registered, so register them before mutating.
type Action struct {
	Description string

	addedAccounts       []*Account
	deletedAccounts     []*Account
	changedAccounts     []*accountChange
	addedTransactions   []*Transaction
	deletedTransactions []*Transaction
	changedTransactions []*transactionChange
}

func NewAction(description string) *Action {
	return &Action{Description: description}
}

func (a *Action) AccountsAdded(accounts ...*Account) {
	a.addedAccounts = append(a.addedAccounts, accounts...)
}

func (a *Action) AccountsDeleted(accounts ...*Account) {
	a.deletedAccounts = append(a.deletedAccounts, accounts...)
}

// ChangeAccounts snapshots accounts about to be edited. Registering the
// same account twice keeps the first snapshot.
func (a *Action) ChangeAccounts(accounts ...*Account) {
	for _, acc := range accounts {
		if slices.ContainsFunc(a.changedAccounts, func(c *accountChange) bool { return c.live == acc }) {
			continue
		}
		a.changedAccounts = append(a.changedAccounts, &accountChange{live: acc, before: *acc})
	}
}

func (a *Action) TransactionsAdded(txns ...*Transaction) {
	a.addedTransactions = append(a.addedTransactions, txns...)
}

func (a *Action) TransactionsDeleted(txns ...*Transaction) {
	a.deletedTransactions = append(a.deletedTransactions, txns...)
}

// ChangeTransactions snapshots transactions about to be edited.
func (a *Action) ChangeTransactions(txns ...*Transaction) {
	for _, t := range txns {
		if slices.ContainsFunc(a.changedTransactions, func(c *transactionChange) bool { return c.live == t }) {
			continue
		}
		a.changedTransactions = append(a.changedTransactions, &transactionChange{live: t, before: t.Replicate()})
	}
}

// Empty reports whether the action records nothing.
func (a *Action) Empty() bool {
	return len(a.addedAccounts)+len(a.deletedAccounts)+len(a.changedAccounts)+
		len(a.addedTransactions)+len(a.deletedTransactions)+len(a.changedTransactions) == 0
}

// referencedAccounts lists every account the action could bring back.
func (a *Action) referencedAccounts() []*Account {
	refs := append([]*Account(nil), a.addedAccounts...)
	refs = append(refs, a.deletedAccounts...)
	for _, c := range a.changedAccounts {
		refs = append(refs, c.live)
	}
	txns := append([]*Transaction(nil), a.addedTransactions...)
	txns = append(txns, a.deletedTransactions...)
	for _, c := range a.changedTransactions {
		txns = append(txns, c.live, c.before)
		if c.after != nil {
			txns = append(txns, c.after)
		}
	}
	for _, t := range txns {
		refs = append(refs, t.AffectedAccounts()...)
	}
	return refs
}

// Undoer keeps the history of actions applied to an account list and a
// transaction list.
type Undoer struct {
	accounts     *AccountList
	transactions *TransactionList
	actions      []*Action
	index        int
	savePoint    int
}

func NewUndoer(accounts *AccountList, transactions *TransactionList) *Undoer {
	return &Undoer{accounts: accounts, transactions: transactions}
}

// Record appends an already applied action. Undone actions are discarded,
// along with trashed accounts nothing else can bring back.
func (u *Undoer) Record(action *Action) {
	if u.index < len(u.actions) {
		u.actions = u.actions[:u.index]
		if u.savePoint > u.index {
			u.savePoint = -1
		}
	}
	u.actions = append(u.actions, action)
	u.index++
	u.purgeTrash()
}

func (u *Undoer) purgeTrash() {
	referenced := make(map[*Account]bool)
	for _, action := range u.actions {
		for _, a := range action.referencedAccounts() {
			referenced[a] = true
		}
	}
	for _, a := range u.accounts.Trash() {
		if !referenced[a] {
			u.accounts.Purge(a)
		}
	}
}

func (u *Undoer) CanUndo() bool { return u.index > 0 }

func (u *Undoer) CanRedo() bool { return u.index < len(u.actions) }

func (u *Undoer) UndoDescription() string {
	if !u.CanUndo() {
		return ""
	}
	return u.actions[u.index-1].Description
}

func (u *Undoer) RedoDescription() string {
	if !u.CanRedo() {
		return ""
	}
	return u.actions[u.index].Description
}

// SetSavePoint marks the current state as saved.
func (u *Undoer) SetSavePoint() {
	u.savePoint = u.index
}

// Modified reports whether the state differs from the save point.
func (u *Undoer) Modified() bool {
	return u.index != u.savePoint
}

// Clear forgets the history and empties the trash.
func (u *Undoer) Clear() {
	u.actions = nil
	u.index = 0
	u.savePoint = 0
	u.purgeTrash()
}

// Undo reverts the last applied action. Nothing changes when an entity the
// action refers to is missing from where it should be.
func (u *Undoer) Undo() error {
	if !u.CanUndo() {
		return ErrNothingToUndo
	}
	action := u.actions[u.index-1]
	if err := u.checkUndo(action); err != nil {
		return err
	}
	for _, c := range action.changedAccounts {
		if !c.captured {
			c.after, c.captured = *c.live, true
		}
	}
	for _, c := range action.changedTransactions {
		if c.after == nil {
			c.after = c.live.Replicate()
		}
	}
	if err := u.revert(action); err != nil {
		return err
	}
	u.index--
	return nil
}

// revert applies the inverse of action without touching the history.
func (u *Undoer) revert(action *Action) error {
	for _, a := range action.addedAccounts {
		if err := u.accounts.Remove(a); err != nil {
			return err
		}
	}
	for _, a := range action.deletedAccounts {
		if err := u.accounts.Undelete(a); err != nil {
			return err
		}
	}
	for _, c := range action.changedAccounts {
		if err := u.accounts.restore(c.live, c.before); err != nil {
			return err
		}
	}
	for _, t := range action.addedTransactions {
		if err := u.transactions.Remove(t); err != nil {
			return err
		}
	}
	if err := u.restoreAccountsOf(action.deletedTransactions); err != nil {
		return err
	}
	for _, t := range action.deletedTransactions {
		u.transactions.Add(t, true)
	}
	for _, c := range action.changedTransactions {
		c.live.CopyFrom(c.before)
	}
	return u.afterTransactionChanges(action)
}

// Discard reverts an action that was applied but never recorded. Accounts
// it added are purged from the trash.
func (u *Undoer) Discard(action *Action) error {
	if err := u.checkUndo(action); err != nil {
		return err
	}
	if err := u.revert(action); err != nil {
		return err
	}
	u.purgeTrash()
	return nil
}

// Redo reapplies the last undone action.
func (u *Undoer) Redo() error {
	if !u.CanRedo() {
		return ErrNothingToRedo
	}
	action := u.actions[u.index]
	if err := u.checkRedo(action); err != nil {
		return err
	}

	for _, a := range action.addedAccounts {
		if err := u.accounts.Undelete(a); err != nil {
			return err
		}
	}
	for _, a := range action.deletedAccounts {
		if err := u.accounts.Remove(a); err != nil {
			return err
		}
	}
	for _, c := range action.changedAccounts {
		if err := u.accounts.restore(c.live, c.after); err != nil {
			return err
		}
	}
	if err := u.restoreAccountsOf(action.addedTransactions); err != nil {
		return err
	}
	for _, t := range action.addedTransactions {
		u.transactions.Add(t, true)
	}
	for _, t := range action.deletedTransactions {
		if err := u.transactions.Remove(t); err != nil {
			return err
		}
	}
	for _, c := range action.changedTransactions {
		c.live.CopyFrom(c.after)
	}
	if err := u.afterTransactionChanges(action); err != nil {
		return err
	}
	u.index++
	return nil
}

func (u *Undoer) checkUndo(action *Action) error {
	for _, a := range action.addedAccounts {
		if !u.accounts.Contains(a) {
			return accountNotFound(a)
		}
	}
	for _, a := range action.deletedAccounts {
		if !u.accounts.InTrash(a) {
			return accountNotFound(a)
		}
	}
	for _, c := range action.changedAccounts {
		if !u.accounts.Contains(c.live) && !slices.Contains(action.addedAccounts, c.live) &&
			!slices.Contains(action.deletedAccounts, c.live) {
			return accountNotFound(c.live)
		}
	}
	for _, t := range action.addedTransactions {
		if !u.transactions.Contains(t) {
			return transactionNotFound(t)
		}
	}
	for _, c := range action.changedTransactions {
		if !u.transactions.Contains(c.live) {
			return transactionNotFound(c.live)
		}
	}
	return nil
}

func (u *Undoer) checkRedo(action *Action) error {
	for _, a := range action.addedAccounts {
		if !u.accounts.InTrash(a) {
			return accountNotFound(a)
		}
	}
	for _, a := range action.deletedAccounts {
		if !u.accounts.Contains(a) {
			return accountNotFound(a)
		}
	}
	for _, t := range action.deletedTransactions {
		if !u.transactions.Contains(t) {
			return transactionNotFound(t)
		}
	}
	for _, c := range action.changedTransactions {
		if !u.transactions.Contains(c.live) {
			return transactionNotFound(c.live)
		}
	}
	return nil
}

// restoreAccountsOf brings back trashed accounts that txns point to.
func (u *Undoer) restoreAccountsOf(txns []*Transaction) error {
	for _, t := range txns {
		for _, a := range t.AffectedAccounts() {
			if u.accounts.Contains(a) {
				continue
			}
			if !u.accounts.InTrash(a) {
				return accountNotFound(a)
			}
			if err := u.accounts.Undelete(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// afterTransactionChanges resorts the transactions and keeps auto-created
// categories in step with the transactions that use them.
func (u *Undoer) afterTransactionChanges(action *Action) error {
	if len(action.changedTransactions) > 0 {
		u.transactions.Sort()
		var live []*Transaction
		for _, c := range action.changedTransactions {
			live = append(live, c.live)
		}
		if err := u.restoreAccountsOf(live); err != nil {
			return err
		}
	}
	if len(action.addedTransactions)+len(action.deletedTransactions)+len(action.changedTransactions) == 0 {
		return nil
	}
	keep := append(append([]*Account(nil), action.addedAccounts...), action.deletedAccounts...)
	u.accounts.CleanEmptyCategories(u.transactions, keep...)
	return nil
}
