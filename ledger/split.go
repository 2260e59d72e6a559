package ledger

import (
	"time"

	"github.com/robinvdvleuten/kasboek/amount"
)

// Split is one leg of a transaction. A nil account means unassigned.
type Split struct {
	Memo      string
	Reference string

	amount             amount.Amount
	account            *Account
	reconciliationDate time.Time
	index              int
}

func NewSplit(account *Account, amt amount.Amount) *Split {
	return &Split{account: account, amount: amt}
}

func (s *Split) Amount() amount.Amount { return s.amount }

func (s *Split) Account() *Account { return s.account }

// Index is the position of the split in its transaction.
func (s *Split) Index() int { return s.index }

// ReconciliationDate is zero when the split is not reconciled.
func (s *Split) ReconciliationDate() time.Time { return s.reconciliationDate }

func (s *Split) Reconciled() bool { return !s.reconciliationDate.IsZero() }

// SetAmount changes the amount. A different value or currency resets the
// reconciliation.
func (s *Split) SetAmount(amt amount.Amount) {
	if amt.Val() != s.amount.Val() || amt.Currency() != s.amount.Currency() {
		s.reconciliationDate = time.Time{}
	}
	s.amount = amt
}

// SetAccount reassigns the split. Moving to another account resets the
// reconciliation.
func (s *Split) SetAccount(a *Account) {
	if a != s.account {
		s.reconciliationDate = time.Time{}
	}
	s.account = a
}

func (s *Split) Reconcile(date time.Time) {
	s.reconciliationDate = date
}

func (s *Split) Unreconcile() {
	s.reconciliationDate = time.Time{}
}

func (s *Split) copy() *Split {
	c := *s
	return &c
}
