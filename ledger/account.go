// Package ledger holds accounts and transactions, keeps transactions
// balanced and cooks them into per-account running balances.
package ledger

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

// AccountType classifies an account.
type AccountType int

const (
	Asset AccountType = iota + 1
	Liability
	Income
	Expense
)

// AccountTypes lists every type in display order.
var AccountTypes = []AccountType{Asset, Liability, Income, Expense}

func (t AccountType) String() string {
	switch t {
	case Asset:
		return "asset"
	case Liability:
		return "liability"
	case Income:
		return "income"
	case Expense:
		return "expense"
	}
	return fmt.Sprintf("AccountType(%d)", int(t))
}

// ParseAccountType parses the name returned by String.
func ParseAccountType(s string) (AccountType, error) {
	for _, t := range AccountTypes {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown account type %q", s)
}

// IsCredit reports whether increases are credits (liabilities and income).
func (t AccountType) IsCredit() bool {
	switch t {
	case Liability, Income:
		return true
	case Asset, Expense:
		return false
	}
	panic(fmt.Sprintf("unknown account type %d", int(t)))
}

func (t AccountType) IsDebit() bool {
	return !t.IsCredit()
}

func (t AccountType) IsBalanceSheet() bool {
	switch t {
	case Asset, Liability:
		return true
	case Income, Expense:
		return false
	}
	panic(fmt.Sprintf("unknown account type %d", int(t)))
}

func (t AccountType) IsIncomeStatement() bool {
	return !t.IsBalanceSheet()
}

// Account is a place money moves in and out of. Name and reference are
// unique within an AccountList and change only through it.
type Account struct {
	ID            int
	Type          AccountType
	Currency      *currency.Currency
	AccountNumber string
	GroupName     string
	Notes         string
	Inactive      bool
	AutoCreated   bool
	Deleted       bool

	name      string
	reference string
}

func (a *Account) Name() string { return a.name }

// Reference is the key of the account in an external system, if any.
func (a *Account) Reference() string { return a.reference }

func (a *Account) String() string {
	if a == nil {
		return ""
	}
	return a.name
}

// NormalizeAmount flips the sign of amounts of credit accounts so that a
// positive value always means "more" of the account.
func (a *Account) NormalizeAmount(amt amount.Amount) amount.Amount {
	if a.Type.IsCredit() {
		return amt.Neg()
	}
	return amt
}

func nameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// sortKey ignores case and accents.
func sortKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return nameKey(stripped)
}
