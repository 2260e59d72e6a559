package currency

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateUnavailable matches any RateUnavailableError.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	// ErrUnsupportedCurrency matches any UnsupportedCurrencyError.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// RateUnavailableError is returned when no rate can be resolved for a
// currency at a date.
type RateUnavailableError struct {
	Code string
	Date time.Time
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no exchange rate for %s on %s", e.Code, e.Date.Format("2006-01-02"))
}

func (e *RateUnavailableError) Is(target error) bool {
	return target == ErrRateUnavailable
}

// UnsupportedCurrencyError is returned for codes missing from the registry.
type UnsupportedCurrencyError struct {
	Code string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency %q", e.Code)
}

func (e *UnsupportedCurrencyError) Is(target error) bool {
	return target == ErrUnsupportedCurrency
}

// InvalidCurrencyError is returned when a currency definition is rejected.
type InvalidCurrencyError struct {
	Code   string
	Reason string
}

func (e *InvalidCurrencyError) Error() string {
	return fmt.Sprintf("invalid currency %q: %s", e.Code, e.Reason)
}

// InvalidRateError is returned when a non-positive rate is stored.
type InvalidRateError struct {
	Code string
	Date time.Time
	Rate string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("rate must be positive: %s %s on %s", e.Code, e.Rate, e.Date.Format("2006-01-02"))
}
