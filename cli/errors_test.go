package cli

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

func TestErrorRenderer(t *testing.T) {
	reg := currency.NewRegistry(nil)
	t.Cleanup(func() { _ = reg.Close() })
	renderer := NewErrorRenderer(reg)

	t.Run("ParseErrorShowsInput", func(t *testing.T) {
		_, err := amount.NewParser(reg).Parse("12 +* 3 CAD")
		assert.Error(t, err)
		out := renderer.Render(err)
		assert.Contains(t, out, errorSymbol)
		assert.Contains(t, out, "\n\n   12 +* 3")
	})

	t.Run("UnknownCurrencyListsCodes", func(t *testing.T) {
		_, err := amount.NewParser(reg, amount.WithStrictCurrency()).Parse("ZZZ 42")
		assert.Error(t, err)
		assert.Contains(t, renderer.Render(err), "known currencies: CAD, EUR, USD")
	})

	t.Run("MissingRateSuggestsCommand", func(t *testing.T) {
		err := fmt.Errorf("converting: %w", &currency.RateUnavailableError{
			Code: "GBP",
			Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.Contains(t, renderer.Render(err), "kasboek rate set GBP 2024-03-01 RATE")
	})

	t.Run("PlainError", func(t *testing.T) {
		assert.Equal(t, errorSymbol+" boom", renderer.Render(errors.New("boom")))
	})

	t.Run("WithoutRegistry", func(t *testing.T) {
		out := NewErrorRenderer(nil).Render(&currency.UnsupportedCurrencyError{Code: "QQQ"})
		assert.NotContains(t, out, "known currencies")
	})
}

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, 2, exitCodeOf(&amount.ParseError{Input: "x", Reason: "no digits"}))
	assert.Equal(t, 2, exitCodeOf(fmt.Errorf("x: %w", &currency.UnsupportedCurrencyError{Code: "QQQ"})))
	assert.Equal(t, 1, exitCodeOf(&currency.RateUnavailableError{Code: "GBP"}))
	assert.Equal(t, 1, exitCodeOf(errors.New("disk full")))
}
