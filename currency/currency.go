// Package currency defines currencies and the history of their exchange rates.
//
// Rates are stored as the value of one unit of a currency expressed in a
// reference currency (CAD unless configured otherwise). A rate between two
// arbitrary currencies is the ratio of their reference values at a date.
package currency

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxCodeLength is the longest currency code accepted by a Registry.
	MaxCodeLength = 4
	// MaxExponent is the largest number of decimal digits a currency may have.
	MaxExponent = 10
)

// Currency is an immutable currency definition. Instances are owned by a
// Registry and compared by identity.
type Currency struct {
	Code     string
	Exponent int

	// StartDate is the first date for which rates are known. Lookups before
	// it answer StartRate.
	StartDate time.Time
	StartRate decimal.Decimal

	// StopDate, when set, is the last date for which rates are tracked.
	// Lookups after it answer LatestRate.
	StopDate   time.Time
	LatestRate decimal.Decimal
}

func (c *Currency) String() string {
	if c == nil {
		return ""
	}
	return c.Code
}

// Point is a single stored rate.
type Point struct {
	Date time.Time
	Rate decimal.Decimal
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.Format("20060102")
}

func parseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation("20060102", s, time.UTC)
}

func mustDate(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// builtins are registered by every Registry. Boundary rates are expressed in
// CAD and only apply when CAD is the reference currency.
func builtins(reference string) []Currency {
	usd := Currency{Code: "USD", Exponent: 2}
	eur := Currency{Code: "EUR", Exponent: 2}
	cad := Currency{Code: "CAD", Exponent: 2}
	if reference == "CAD" {
		usd.StartDate = mustDate("1998-01-02")
		usd.StartRate = decimal.RequireFromString("1.425")
		usd.LatestRate = decimal.RequireFromString("1.0128")
		eur.StartDate = mustDate("1999-01-04")
		eur.StartRate = decimal.RequireFromString("1.8123")
		eur.LatestRate = decimal.RequireFromString("1.3298")
	}
	return []Currency{usd, eur, cad}
}
