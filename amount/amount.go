// Package amount implements fixed-point money amounts tagged with a currency.
//
// An Amount stores a scaled integer: 1234 in a currency with exponent 2 is
// 12.34. The zero value (of any currency) is compatible with every other
// amount.
package amount

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/kasboek/currency"
)

// Amount is a value type. The currency is nil only for zero amounts
// produced without one.
type Amount struct {
	val int64
	cur *currency.Currency
}

// Zero is the any-currency zero amount.
var Zero = Amount{}

// New creates an amount from a scaled integer.
func New(val int64, cur *currency.Currency) Amount {
	return Amount{val: val, cur: cur}
}

// FromDecimal scales d to the exponent of cur, rounding half away from zero.
func FromDecimal(d decimal.Decimal, cur *currency.Currency) Amount {
	return Amount{val: d.Shift(int32(exponentOf(cur))).Round(0).IntPart(), cur: cur}
}

func exponentOf(cur *currency.Currency) int {
	if cur == nil {
		return 2
	}
	return cur.Exponent
}

// Val returns the scaled integer value.
func (a Amount) Val() int64 { return a.val }

// Currency returns the currency tag, which may be nil for a zero amount.
func (a Amount) Currency() *currency.Currency { return a.cur }

func (a Amount) IsZero() bool { return a.val == 0 }

// Decimal returns the unscaled value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.val, -int32(exponentOf(a.cur)))
}

func (a Amount) String() string {
	return NewFormatter().Format(a)
}

// Compatible reports whether a and b can be combined: either is zero or
// both share a currency.
func Compatible(a, b Amount) bool {
	return a.val == 0 || b.val == 0 || a.cur == b.cur
}

func check(a, b Amount) error {
	if Compatible(a, b) {
		return nil
	}
	return &CurrencyMismatchError{Left: a.cur, Right: b.cur}
}

func (a Amount) Add(b Amount) (Amount, error) {
	switch {
	case b.val == 0:
		return a, nil
	case a.val == 0:
		return b, nil
	}
	if err := check(a, b); err != nil {
		return Amount{}, err
	}
	sum := a.val + b.val
	if (b.val > 0 && sum < a.val) || (b.val < 0 && sum > a.val) {
		return Amount{}, fmt.Errorf("%s + %s: %w", a, b, ErrOverflow)
	}
	return Amount{val: sum, cur: a.cur}, nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	if b.val == math.MinInt64 {
		return Amount{}, fmt.Errorf("%s - %s: %w", a, b, ErrOverflow)
	}
	return a.Add(b.Neg())
}

func (a Amount) Neg() Amount {
	return Amount{val: -a.val, cur: a.cur}
}

func (a Amount) Abs() Amount {
	if a.val < 0 {
		return a.Neg()
	}
	return a
}

// Mul multiplies by a factor, rounding to the nearest unit.
func (a Amount) Mul(factor decimal.Decimal) Amount {
	return Amount{val: decimal.NewFromInt(a.val).Mul(factor).Round(0).IntPart(), cur: a.cur}
}

// Div divides by a factor, rounding to the nearest unit.
func (a Amount) Div(divisor decimal.Decimal) (Amount, error) {
	if divisor.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	return Amount{val: decimal.NewFromInt(a.val).DivRound(divisor, 0).IntPart(), cur: a.cur}, nil
}

// Ratio returns a / b for compatible amounts.
func (a Amount) Ratio(b Amount) (decimal.Decimal, error) {
	if err := check(a, b); err != nil {
		return decimal.Zero, err
	}
	if b.val == 0 {
		return decimal.Zero, ErrDivisionByZero
	}
	return decimal.NewFromInt(a.val).Div(decimal.NewFromInt(b.val)), nil
}

// Cmp compares two compatible amounts.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}
	switch {
	case a.val < b.val:
		return -1, nil
	case a.val > b.val:
		return 1, nil
	}
	return 0, nil
}

// Equal is false for incompatible amounts rather than an error.
func (a Amount) Equal(b Amount) bool {
	return Compatible(a, b) && a.val == b.val
}

// Sum adds amounts left to right.
func Sum(amounts ...Amount) (Amount, error) {
	total := Zero
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// Slide rescales val from one exponent to another. Shrinking rounds half
// away from zero.
func Slide(val int64, fromExp, toExp int) int64 {
	if fromExp == toExp {
		return val
	}
	return decimal.New(val, int32(toExp-fromExp)).Round(0).IntPart()
}

// WithCurrency retags the amount, rescaling its value to cur's exponent.
func (a Amount) WithCurrency(cur *currency.Currency) Amount {
	return Amount{val: Slide(a.val, exponentOf(a.cur), exponentOf(cur)), cur: cur}
}
