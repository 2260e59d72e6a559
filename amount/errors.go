package amount

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/kasboek/currency"
)

var (
	// ErrCurrencyMismatch matches any CurrencyMismatchError.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrUnparseable matches any ParseError.
	ErrUnparseable    = errors.New("unparseable amount")
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("amount out of range")
)

// CurrencyMismatchError is returned when two nonzero amounts of different
// currencies are combined.
type CurrencyMismatchError struct {
	Left  *currency.Currency
	Right *currency.Currency
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s and %s", e.Left, e.Right)
}

func (e *CurrencyMismatchError) Is(target error) bool {
	return target == ErrCurrencyMismatch
}

// ParseError is returned for text that cannot be read as an amount.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrUnparseable
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
