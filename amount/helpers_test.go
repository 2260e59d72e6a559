package amount

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/kasboek/currency"
)

func newRegistry(t *testing.T) *currency.Registry {
	t.Helper()
	r := currency.NewRegistry(nil)
	for _, def := range []currency.Currency{
		{Code: "BHD", Exponent: 3},
		{Code: "TND", Exponent: 3},
		{Code: "JPY", Exponent: 0},
		{Code: "ABC", Exponent: 5},
	} {
		_, err := r.Register(def)
		assert.NoError(t, err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func mustGet(t *testing.T, r *currency.Registry, code string) *currency.Currency {
	t.Helper()
	c, err := r.Lookup(code)
	assert.NoError(t, err)
	return c
}

func mustParseDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
