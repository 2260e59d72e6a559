package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robinvdvleuten/kasboek/currency"
)

// AccountList owns accounts. Removed accounts move to a trash can so that
// undo history can bring them back.
type AccountList struct {
	DefaultCurrency *currency.Currency

	accounts []*Account
	trash    []*Account
	byName   map[string]*Account
	entries  map[*Account]*EntryList
	lastID   int
}

func NewAccountList(defaultCurrency *currency.Currency) *AccountList {
	return &AccountList{
		DefaultCurrency: defaultCurrency,
		byName:          make(map[string]*Account),
		entries:         make(map[*Account]*EntryList),
	}
}

// Create adds a new account. A nil currency uses the list default.
func (l *AccountList) Create(name string, cur *currency.Currency, typ AccountType) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("account name cannot be empty")
	}
	if existing, ok := l.byName[nameKey(name)]; ok {
		return nil, &DuplicateNameError{Name: name, Existing: existing}
	}
	if cur == nil {
		cur = l.DefaultCurrency
	}
	l.lastID++
	a := &Account{ID: l.lastID, Type: typ, Currency: cur, name: name}
	l.accounts = append(l.accounts, a)
	l.byName[nameKey(name)] = a
	return a, nil
}

// Find returns the account whose name matches, ignoring case and
// surrounding space, or whose account number prefixes name.
func (l *AccountList) Find(name string) *Account {
	if a, ok := l.byName[nameKey(name)]; ok {
		return a
	}
	name = strings.TrimSpace(name)
	for _, a := range l.accounts {
		if a.AccountNumber == "" {
			continue
		}
		if name == a.AccountNumber || strings.HasPrefix(name, a.AccountNumber+" ") {
			return a
		}
	}
	return nil
}

// FindOrCreate returns the account matching name, creating it with typ and
// marking it auto-created when none exists.
func (l *AccountList) FindOrCreate(name string, typ AccountType) (*Account, error) {
	if a := l.Find(name); a != nil {
		return a, nil
	}
	a, err := l.Create(name, nil, typ)
	if err != nil {
		return nil, err
	}
	a.AutoCreated = true
	return a, nil
}

// FindReference returns the active account holding ref.
func (l *AccountList) FindReference(ref string) *Account {
	if ref == "" {
		return nil
	}
	for _, a := range l.accounts {
		if a.reference == ref {
			return a
		}
	}
	return nil
}

func (l *AccountList) Rename(a *Account, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !l.Contains(a) {
		return accountNotFound(a)
	}
	key := nameKey(name)
	if existing, ok := l.byName[key]; ok && existing != a {
		return &DuplicateNameError{Name: name, Existing: existing}
	}
	delete(l.byName, nameKey(a.name))
	a.name = name
	l.byName[key] = a
	return nil
}

func (l *AccountList) SetReference(a *Account, ref string) error {
	if existing := l.FindReference(ref); existing != nil && existing != a {
		return &DuplicateReferenceError{Reference: ref, Existing: existing}
	}
	a.reference = ref
	return nil
}

// restore replaces the state of a with state, keeping the name index in
// sync.
func (l *AccountList) restore(a *Account, state Account) error {
	if !l.Contains(a) {
		return accountNotFound(a)
	}
	if existing, ok := l.byName[nameKey(state.name)]; ok && existing != a {
		return &DuplicateNameError{Name: state.name, Existing: existing}
	}
	delete(l.byName, nameKey(a.name))
	*a = state
	l.byName[nameKey(a.name)] = a
	return nil
}

func indexOf[T comparable](items []T, item T) int {
	for i, it := range items {
		if it == item {
			return i
		}
	}
	return -1
}

// Remove moves a to the trash can.
func (l *AccountList) Remove(a *Account) error {
	i := indexOf(l.accounts, a)
	if i < 0 {
		return accountNotFound(a)
	}
	l.accounts = append(l.accounts[:i], l.accounts[i+1:]...)
	delete(l.byName, nameKey(a.name))
	delete(l.entries, a)
	a.Deleted = true
	l.trash = append(l.trash, a)
	return nil
}

// Undelete moves a back from the trash can.
func (l *AccountList) Undelete(a *Account) error {
	i := indexOf(l.trash, a)
	if i < 0 {
		return accountNotFound(a)
	}
	if existing, ok := l.byName[nameKey(a.name)]; ok {
		return &DuplicateNameError{Name: a.name, Existing: existing}
	}
	l.trash = append(l.trash[:i], l.trash[i+1:]...)
	a.Deleted = false
	// Accounts stay in creation order.
	at := sort.Search(len(l.accounts), func(i int) bool { return l.accounts[i].ID > a.ID })
	l.accounts = append(l.accounts, nil)
	copy(l.accounts[at+1:], l.accounts[at:])
	l.accounts[at] = a
	l.byName[nameKey(a.name)] = a
	return nil
}

// Purge drops a from the trash can for good.
func (l *AccountList) Purge(a *Account) {
	if i := indexOf(l.trash, a); i >= 0 {
		l.trash = append(l.trash[:i], l.trash[i+1:]...)
	}
}

func (l *AccountList) Contains(a *Account) bool {
	return indexOf(l.accounts, a) >= 0
}

func (l *AccountList) InTrash(a *Account) bool {
	return indexOf(l.trash, a) >= 0
}

func (l *AccountList) Len() int {
	return len(l.accounts)
}

// All returns the active accounts in creation order.
func (l *AccountList) All() []*Account {
	return append([]*Account(nil), l.accounts...)
}

// Trash returns the logically deleted accounts.
func (l *AccountList) Trash() []*Account {
	return append([]*Account(nil), l.trash...)
}

func (l *AccountList) Filter(keep func(*Account) bool) []*Account {
	var result []*Account
	for _, a := range l.accounts {
		if keep(a) {
			result = append(result, a)
		}
	}
	return result
}

func (l *AccountList) OfType(typ AccountType) []*Account {
	return l.Filter(func(a *Account) bool { return a.Type == typ })
}

func (l *AccountList) InGroup(group string) []*Account {
	return l.Filter(func(a *Account) bool { return a.GroupName == group })
}

// Sorted returns the active accounts ordered by type, then by name
// ignoring case and accents.
func (l *AccountList) Sorted() []*Account {
	result := l.All()
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type < result[j].Type
		}
		return sortKey(result[i].name) < sortKey(result[j].name)
	})
	return result
}

// NewName returns base, or base followed by the first free number.
func (l *AccountList) NewName(base string) string {
	name := strings.TrimSpace(base)
	for i := 1; l.Find(name) != nil; i++ {
		name = fmt.Sprintf("%s %d", strings.TrimSpace(base), i)
	}
	return name
}

func (l *AccountList) HasMultipleCurrencies() bool {
	for _, a := range l.accounts {
		if a.Currency != l.DefaultCurrency {
			return true
		}
	}
	return false
}

// EntriesFor returns the cooked entries of a, creating an empty list on
// first use.
func (l *AccountList) EntriesFor(a *Account) *EntryList {
	el, ok := l.entries[a]
	if !ok {
		el = newEntryList(a)
		l.entries[a] = el
	}
	return el
}

// ClearEntries drops every entry dated on or after from. A zero date clears
// everything.
func (l *AccountList) ClearEntries(from time.Time) {
	for _, el := range l.entries {
		el.Clear(from)
	}
}

// reconcileEntries recomputes the reconciled balances of every entry list.
func (l *AccountList) reconcileEntries() error {
	for a, el := range l.entries {
		if err := el.reconcile(); err != nil {
			return fmt.Errorf("reconciling %q: %w", a.Name(), err)
		}
	}
	return nil
}

// CleanEmptyCategories trashes auto-created income and expense accounts
// that no transaction uses anymore, except the ones in keep.
func (l *AccountList) CleanEmptyCategories(txns *TransactionList, keep ...*Account) []*Account {
	used := make(map[*Account]bool)
	for _, t := range txns.transactions {
		for _, s := range t.splits {
			if s.account != nil {
				used[s.account] = true
			}
		}
	}
	var removed []*Account
	for _, a := range l.All() {
		if !a.AutoCreated || !a.Type.IsIncomeStatement() || used[a] || indexOf(keep, a) >= 0 {
			continue
		}
		if err := l.Remove(a); err == nil {
			removed = append(removed, a)
		}
	}
	return removed
}
