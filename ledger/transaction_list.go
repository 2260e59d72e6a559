package ledger

import (
	"fmt"
	"sort"
	"time"
)

// TransactionList keeps transactions ordered by date, then position.
type TransactionList struct {
	transactions []*Transaction
	completion   *completion
}

// completion holds derived projections rebuilt after every mutation.
type completion struct {
	descriptions []string
	payees       []string
	accountNames []string
}

func NewTransactionList() *TransactionList {
	return &TransactionList{}
}

func less(a, b *Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.Position < b.Position
}

// Add inserts txn in order. Unless keepPosition is set, txn is positioned
// after the transactions already on its date.
func (l *TransactionList) Add(txn *Transaction, keepPosition bool) {
	if !keepPosition {
		txn.Position = 0
		for _, other := range l.TransactionsAt(txn.Date) {
			if other.Position >= txn.Position {
				txn.Position = other.Position + 1
			}
		}
	}
	i := sort.Search(len(l.transactions), func(i int) bool {
		return less(txn, l.transactions[i])
	})
	l.transactions = append(l.transactions, nil)
	copy(l.transactions[i+1:], l.transactions[i:])
	l.transactions[i] = txn
	l.Invalidate()
}

func (l *TransactionList) Remove(txn *Transaction) error {
	i := indexOf(l.transactions, txn)
	if i < 0 {
		return transactionNotFound(txn)
	}
	l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
	l.Invalidate()
	return nil
}

func (l *TransactionList) Contains(txn *Transaction) bool {
	return indexOf(l.transactions, txn) >= 0
}

func (l *TransactionList) Len() int {
	return len(l.transactions)
}

func (l *TransactionList) At(i int) *Transaction {
	return l.transactions[i]
}

func (l *TransactionList) All() []*Transaction {
	return append([]*Transaction(nil), l.transactions...)
}

// Sort restores the order after transactions were edited in place.
func (l *TransactionList) Sort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return less(l.transactions[i], l.transactions[j])
	})
	l.Invalidate()
}

// Invalidate drops the cached projections.
func (l *TransactionList) Invalidate() {
	l.completion = nil
}

func (l *TransactionList) TransactionsAt(date time.Time) []*Transaction {
	var result []*Transaction
	for _, t := range l.transactions {
		if t.Date.Equal(date) {
			result = append(result, t)
		}
	}
	return result
}

// MoveBefore repositions txn right before target. Both must share a date.
// A nil target moves txn last.
func (l *TransactionList) MoveBefore(txn, target *Transaction) error {
	if target == nil {
		return l.MoveLast(txn)
	}
	if !l.Contains(txn) {
		return transactionNotFound(txn)
	}
	if !l.Contains(target) {
		return transactionNotFound(target)
	}
	if !txn.Date.Equal(target.Date) {
		return fmt.Errorf("cannot move %q before %q: dates differ", txn.Description, target.Description)
	}
	var sameDay []*Transaction
	for _, t := range l.TransactionsAt(txn.Date) {
		if t != txn {
			sameDay = append(sameDay, t)
		}
	}
	sort.SliceStable(sameDay, func(i, j int) bool { return sameDay[i].Position < sameDay[j].Position })
	i := indexOf(sameDay, target)
	sameDay = append(sameDay[:i], append([]*Transaction{txn}, sameDay[i:]...)...)
	for pos, t := range sameDay {
		t.Position = pos
	}
	l.Sort()
	return nil
}

// MoveLast positions txn after every other transaction on its date.
func (l *TransactionList) MoveLast(txn *Transaction) error {
	if !l.Contains(txn) {
		return transactionNotFound(txn)
	}
	for _, t := range l.TransactionsAt(txn.Date) {
		if t != txn && t.Position >= txn.Position {
			txn.Position = t.Position + 1
		}
	}
	l.Sort()
	return nil
}

// ReassignAccount moves the splits of old to replacement and drops the
// transactions left without any account. The dropped transactions are
// returned.
func (l *TransactionList) ReassignAccount(old, replacement *Account) []*Transaction {
	var removed []*Transaction
	for _, t := range l.All() {
		if indexOf(t.AffectedAccounts(), old) < 0 {
			continue
		}
		t.ReassignAccount(old, replacement)
		if len(t.AffectedAccounts()) == 0 {
			_ = l.Remove(t)
			removed = append(removed, t)
		}
	}
	l.Invalidate()
	return removed
}

// FirstDate is zero for an empty list.
func (l *TransactionList) FirstDate() time.Time {
	if len(l.transactions) == 0 {
		return time.Time{}
	}
	return l.transactions[0].Date
}

func (l *TransactionList) LastDate() time.Time {
	if len(l.transactions) == 0 {
		return time.Time{}
	}
	return l.transactions[len(l.transactions)-1].Date
}

// Descriptions lists distinct descriptions, most recently edited first.
func (l *TransactionList) Descriptions() []string {
	return l.projections().descriptions
}

func (l *TransactionList) Payees() []string {
	return l.projections().payees
}

// AccountNames lists the distinct names of accounts used by splits.
func (l *TransactionList) AccountNames() []string {
	return l.projections().accountNames
}

func (l *TransactionList) projections() *completion {
	if l.completion != nil {
		return l.completion
	}
	byMTime := l.All()
	sort.SliceStable(byMTime, func(i, j int) bool { return byMTime[i].MTime.After(byMTime[j].MTime) })

	c := &completion{}
	seen := map[string]map[string]bool{"d": {}, "p": {}, "a": {}}
	add := func(kind string, dst *[]string, value string) {
		if value == "" || seen[kind][value] {
			return
		}
		seen[kind][value] = true
		*dst = append(*dst, value)
	}
	for _, t := range byMTime {
		add("d", &c.descriptions, t.Description)
		add("p", &c.payees, t.Payee)
		for _, a := range t.AffectedAccounts() {
			add("a", &c.accountNames, a.Name())
		}
	}
	l.completion = c
	return c
}
