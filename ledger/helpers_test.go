package ledger

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	rates *currency.Registry
	cad   *currency.Currency
	usd   *currency.Currency
	eur   *currency.Currency
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := currency.NewRegistry(nil)
	t.Cleanup(func() { _ = r.Close() })
	f := &fixture{rates: r}
	var err error
	f.cad, err = r.Lookup("CAD")
	assert.NoError(t, err)
	f.usd, err = r.Lookup("USD")
	assert.NoError(t, err)
	f.eur, err = r.Lookup("EUR")
	assert.NoError(t, err)
	return f
}

func (f *fixture) setRate(t *testing.T, date string, c *currency.Currency, rate string) {
	t.Helper()
	assert.NoError(t, f.rates.SetRate(day(date), c, decimal.RequireFromString(rate)))
}

func (f *fixture) accounts(t *testing.T, names ...string) (*AccountList, []*Account) {
	t.Helper()
	l := NewAccountList(f.usd)
	var result []*Account
	for _, name := range names {
		a, err := l.Create(name, nil, Asset)
		assert.NoError(t, err)
		result = append(result, a)
	}
	return l, result
}

func amt(val int64, cur *currency.Currency) amount.Amount {
	return amount.New(val, cur)
}

// vals returns the split values in order, for compact assertions.
func vals(t *Transaction) []int64 {
	var result []int64
	for _, s := range t.splits {
		result = append(result, s.amount.Val())
	}
	return result
}
