package amount

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/kasboek/currency"
)

// RateSource resolves the exchange rate between two currencies at a date.
// *currency.Registry satisfies it.
type RateSource interface {
	Rate(date time.Time, from, to *currency.Currency) (decimal.Decimal, error)
}

// Convert values a in target at date. It is the identity when the currency
// already matches, and zero converts to zero without a rate lookup.
func Convert(a Amount, target *currency.Currency, date time.Time, rates RateSource) (Amount, error) {
	if target == nil || a.cur == target {
		return a, nil
	}
	if a.val == 0 {
		return Amount{cur: target}, nil
	}
	if a.cur == nil {
		return Amount{val: a.val, cur: target}, nil
	}
	rate, err := rates.Rate(date, a.cur, target)
	if err != nil {
		return Amount{}, err
	}
	return FromDecimal(a.Decimal().Mul(rate), target), nil
}
