package ledger

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

// TransactionType separates user entered transactions from materialized
// schedule occurrences.
type TransactionType int

const (
	Normal TransactionType = iota + 1
	RecurrenceSpawn
	BudgetSpawn
)

func (t TransactionType) String() string {
	switch t {
	case Normal:
		return "normal"
	case RecurrenceSpawn:
		return "recurrence"
	case BudgetSpawn:
		return "budget"
	}
	return fmt.Sprintf("TransactionType(%d)", int(t))
}

// IsSpawn reports whether the transaction was generated by a schedule.
func (t TransactionType) IsSpawn() bool {
	switch t {
	case RecurrenceSpawn, BudgetSpawn:
		return true
	case Normal:
		return false
	}
	panic(fmt.Sprintf("unknown transaction type %d", int(t)))
}

// ErrAmountNotEditable is returned when a single amount is set on a
// transaction that has more than two splits or several currencies.
var ErrAmountNotEditable = errors.New("amount is not editable on a split transaction")

var lastMTime atomic.Int64

// nextMTime never returns the same instant twice.
func nextMTime() time.Time {
	for {
		last := lastMTime.Load()
		now := time.Now().UnixNano()
		if now <= last {
			now = last + 1
		}
		if lastMTime.CompareAndSwap(last, now) {
			return time.Unix(0, now)
		}
	}
}

// Transaction is a dated set of splits. It owns its splits and knows
// nothing about the list it lives in.
type Transaction struct {
	Type        TransactionType
	Date        time.Time
	Description string
	Payee       string
	Checkno     string
	Notes       string
	Position    int
	MTime       time.Time

	splits []*Split
}

// TransactionOption configures a new transaction.
type TransactionOption func(*Transaction)

func WithSplits(splits ...*Split) TransactionOption {
	return func(t *Transaction) {
		for _, s := range splits {
			t.AddSplit(s)
		}
	}
}

func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) { t.Payee = payee }
}

func WithCheckno(checkno string) TransactionOption {
	return func(t *Transaction) { t.Checkno = checkno }
}

func WithNotes(notes string) TransactionOption {
	return func(t *Transaction) { t.Notes = notes }
}

func WithType(typ TransactionType) TransactionOption {
	return func(t *Transaction) { t.Type = typ }
}

func NewTransaction(date time.Time, description string, opts ...TransactionOption) *Transaction {
	t := &Transaction{
		Type:        Normal,
		Date:        date,
		Description: description,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.MTime = nextMTime()
	return t
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s %s", t.Date.Format("2006-01-02"), t.Description)
}

// Splits returns the splits in order. The slice is a copy; the splits are not.
func (t *Transaction) Splits() []*Split {
	return append([]*Split(nil), t.splits...)
}

func (t *Transaction) Len() int {
	return len(t.splits)
}

func (t *Transaction) AddSplit(s *Split) {
	s.index = len(t.splits)
	t.splits = append(t.splits, s)
}

func (t *Transaction) RemoveSplit(s *Split) error {
	i := indexOf(t.splits, s)
	if i < 0 {
		return &NotFoundError{Kind: "split"}
	}
	t.splits = append(t.splits[:i], t.splits[i+1:]...)
	t.reindex()
	return nil
}

func (t *Transaction) reindex() {
	for i, s := range t.splits {
		s.index = i
	}
}

func (t *Transaction) Touch() {
	t.MTime = nextMTime()
}

// AffectedAccounts lists the distinct accounts of the splits in split order.
func (t *Transaction) AffectedAccounts() []*Account {
	var accounts []*Account
	for _, s := range t.splits {
		if s.account != nil && indexOf(accounts, s.account) < 0 {
			accounts = append(accounts, s.account)
		}
	}
	return accounts
}

// AmountForAccount sums the splits of a, valued in cur at the transaction
// date.
func (t *Transaction) AmountForAccount(a *Account, cur *currency.Currency, rates amount.RateSource) (amount.Amount, error) {
	total := amount.Zero
	for _, s := range t.splits {
		if s.account != a {
			continue
		}
		converted, err := amount.Convert(s.amount, cur, t.Date, rates)
		if err != nil {
			return amount.Amount{}, err
		}
		if total, err = total.Add(converted); err != nil {
			return amount.Amount{}, err
		}
	}
	return total, nil
}

// IsMCT reports whether the nonzero splits use more than one currency.
func (t *Transaction) IsMCT() bool {
	var seen *currency.Currency
	for _, s := range t.splits {
		if s.amount.IsZero() {
			continue
		}
		if seen == nil {
			seen = s.amount.Currency()
		} else if s.amount.Currency() != seen {
			return true
		}
	}
	return false
}

// Replicate returns a deep copy holding copies of the splits.
func (t *Transaction) Replicate() *Transaction {
	c := *t
	c.splits = make([]*Split, len(t.splits))
	for i, s := range t.splits {
		c.splits[i] = s.copy()
	}
	return &c
}

// CopyFrom overwrites t with the state of other, splits included.
func (t *Transaction) CopyFrom(other *Transaction) {
	r := other.Replicate()
	*t = *r
}

// ReassignAccount moves every split of old to replacement. A nil
// replacement unassigns them.
func (t *Transaction) ReassignAccount(old, replacement *Account) {
	for _, s := range t.splits {
		if s.account == old {
			s.SetAccount(replacement)
		}
	}
}

// splitted separates splits by side. Zero amount splits fill an empty side.
func (t *Transaction) splitted() (froms, tos []*Split) {
	var nulls []*Split
	for _, s := range t.splits {
		switch {
		case s.amount.Val() < 0:
			froms = append(froms, s)
		case s.amount.Val() > 0:
			tos = append(tos, s)
		default:
			nulls = append(nulls, s)
		}
	}
	if len(tos) == 0 && len(nulls) > 0 {
		tos = append(tos, nulls[len(nulls)-1])
		nulls = nulls[:len(nulls)-1]
	}
	if len(froms) == 0 && len(nulls) > 0 {
		froms = append(froms, nulls[len(nulls)-1])
	}
	return froms, tos
}

type change struct {
	date        *time.Time
	description *string
	payee       *string
	checkno     *string
	notes       *string
	from        *Account
	hasFrom     bool
	to          *Account
	hasTo       bool
	amount      *amount.Amount
	currency    *currency.Currency
	splits      []*Split
	hasSplits   bool
}

// ChangeOption describes one edit applied by Transaction.Change.
type ChangeOption func(*change)

func ChangeDate(date time.Time) ChangeOption {
	return func(c *change) { c.date = &date }
}

func ChangeDescription(description string) ChangeOption {
	return func(c *change) { c.description = &description }
}

func ChangePayee(payee string) ChangeOption {
	return func(c *change) { c.payee = &payee }
}

func ChangeCheckno(checkno string) ChangeOption {
	return func(c *change) { c.checkno = &checkno }
}

func ChangeNotes(notes string) ChangeOption {
	return func(c *change) { c.notes = &notes }
}

// ChangeFrom sets the account of the outgoing split of a two-sided
// transaction.
func ChangeFrom(a *Account) ChangeOption {
	return func(c *change) { c.from, c.hasFrom = a, true }
}

// ChangeTo sets the account of the incoming split.
func ChangeTo(a *Account) ChangeOption {
	return func(c *change) { c.to, c.hasTo = a, true }
}

// ChangeAmount moves amt from the "from" split to the "to" split.
func ChangeAmount(amt amount.Amount) ChangeOption {
	return func(c *change) { c.amount = &amt }
}

// ChangeCurrency retags every nonzero split to cur.
func ChangeCurrency(cur *currency.Currency) ChangeOption {
	return func(c *change) { c.currency = cur }
}

// ChangeSplits replaces the splits with copies of splits.
func ChangeSplits(splits []*Split) ChangeOption {
	return func(c *change) { c.splits, c.hasSplits = splits, true }
}

// Change applies edits and bumps the modification time.
func (t *Transaction) Change(opts ...ChangeOption) error {
	var c change
	for _, opt := range opts {
		opt(&c)
	}
	if c.amount != nil && (len(t.splits) > 2 || t.IsMCT()) && !c.hasSplits {
		return ErrAmountNotEditable
	}

	if c.date != nil {
		t.Date = *c.date
	}
	if c.description != nil {
		t.Description = *c.description
	}
	if c.payee != nil {
		t.Payee = *c.payee
	}
	if c.checkno != nil {
		t.Checkno = *c.checkno
	}
	if c.notes != nil {
		t.Notes = *c.notes
	}
	if c.hasSplits {
		t.splits = nil
		for _, s := range c.splits {
			t.AddSplit(s.copy())
		}
	}
	if c.amount != nil {
		if len(t.splits) > 2 {
			return ErrAmountNotEditable
		}
		for len(t.splits) < 2 {
			t.AddSplit(NewSplit(nil, amount.Zero))
		}
		froms, tos := t.splitted()
		if len(froms) == 0 || len(tos) == 0 || froms[0] == tos[0] {
			froms, tos = t.splits[:1], t.splits[1:]
		}
		amt := c.amount.Abs()
		froms[0].SetAmount(amt.Neg())
		tos[0].SetAmount(amt)
	}
	if c.hasFrom || c.hasTo {
		froms, tos := t.splitted()
		if c.hasFrom && len(froms) == 1 {
			froms[0].SetAccount(c.from)
		}
		if c.hasTo && len(tos) == 1 {
			tos[0].SetAccount(c.to)
		}
	}
	if c.currency != nil {
		for _, s := range t.splits {
			if !s.amount.IsZero() && s.amount.Currency() != c.currency {
				s.SetAmount(s.amount.WithCurrency(c.currency))
			}
		}
	}
	t.Touch()
	return nil
}
