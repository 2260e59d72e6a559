package ledger

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/kasboek/currency"
)

func TestBalanceAppendsUnassignedSplit(t *testing.T) {
	f := newFixture(t)
	_, accts := f.accounts(t, "checking")
	s := NewSplit(accts[0], amt(4200, f.usd))
	txn := NewTransaction(day("2024-01-01"), "", WithSplits(s))

	txn.Balance(s, false)

	assert.Equal(t, 2, txn.Len())
	added := txn.Splits()[1]
	assert.Zero(t, added.Account())
	assert.Equal(t, amt(-4200, f.usd), added.Amount())
}

func TestBalanceTwoSplitsFollow(t *testing.T) {
	f := newFixture(t)
	_, accts := f.accounts(t, "a1", "a2")

	t.Run("KeepTwoSplitsMirrors", func(t *testing.T) {
		s0 := NewSplit(accts[0], amt(4200, f.usd))
		s1 := NewSplit(accts[1], amt(-4200, f.usd))
		txn := NewTransaction(day("2024-01-01"), "", WithSplits(s0, s1))

		s0.SetAmount(amt(-2200, f.usd))
		txn.Balance(s0, true)

		assert.Equal(t, []int64{-2200, 2200}, vals(txn))
	})

	t.Run("SameSideFlipsWeak", func(t *testing.T) {
		txn := NewTransaction(day("2024-01-01"), "", WithSplits(
			NewSplit(accts[0], amt(42, f.usd)),
			NewSplit(accts[1], amt(22, f.usd)),
		))
		txn.Balance(txn.Splits()[0], false)

		assert.Equal(t, []int64{42, -22, -20}, vals(txn))
		assert.Zero(t, txn.Splits()[2].Account())
	})

	t.Run("OppositeSidesLeaveWeakAlone", func(t *testing.T) {
		s0 := NewSplit(accts[0], amt(100, f.usd))
		txn := NewTransaction(day("2024-01-01"), "", WithSplits(s0, NewSplit(accts[1], amt(-100, f.usd))))
		s0.SetAmount(amt(150, f.usd))
		txn.Balance(s0, false)

		assert.Equal(t, []int64{150, -100, -50}, vals(txn))
	})

	t.Run("StrongOnWeakSide", func(t *testing.T) {
		s0 := NewSplit(accts[0], amt(100, f.usd))
		s1 := NewSplit(accts[1], amt(-100, f.usd))
		txn := NewTransaction(day("2024-01-01"), "", WithSplits(s0, s1))
		s1.SetAmount(amt(30, f.usd))
		txn.Balance(s1, false)

		assert.Equal(t, []int64{-100, 30, 70}, vals(txn))
	})
}

func TestBalanceAdjustsExistingUnassigned(t *testing.T) {
	f := newFixture(t)
	_, accts := f.accounts(t, "a1", "a2")

	s0 := NewSplit(accts[0], amt(100, f.usd))
	s1 := NewSplit(accts[1], amt(-60, f.usd))
	txn := NewTransaction(day("2024-01-01"), "", WithSplits(s0, s1, NewSplit(nil, amt(-40, f.usd))))

	s0.SetAmount(amt(150, f.usd))
	txn.Balance(s0, false)
	assert.Equal(t, []int64{150, -60, -90}, vals(txn))

	// An unassigned split that reaches zero goes away.
	s1.SetAmount(amt(-150, f.usd))
	txn.Balance(s1, false)
	assert.Equal(t, []int64{150, -150}, vals(txn))
}

func TestBalanceNeverAdjustsStrong(t *testing.T) {
	f := newFixture(t)
	s := NewSplit(nil, amt(100, f.usd))
	txn := NewTransaction(day("2024-01-01"), "", WithSplits(s))

	txn.Balance(s, false)

	assert.Equal(t, []int64{100, -100}, vals(txn))
}

func TestBalanceBalancedIsNoop(t *testing.T) {
	f := newFixture(t)
	_, accts := f.accounts(t, "a1", "a2", "a3")
	txn := NewTransaction(day("2024-01-01"), "", WithSplits(
		NewSplit(accts[0], amt(100, f.usd)),
		NewSplit(accts[1], amt(-60, f.usd)),
		NewSplit(accts[2], amt(-40, f.usd)),
	))
	txn.Balance(nil, false)
	assert.Equal(t, []int64{100, -60, -40}, vals(txn))
}

func TestBalanceCurrencies(t *testing.T) {
	f := newFixture(t)
	_, accts := f.accounts(t, "a1", "a2")

	t.Run("LogicalImbalance", func(t *testing.T) {
		strong := NewSplit(accts[1], amt(22, f.cad))
		txn := NewTransaction(day("2024-01-01"), "", WithSplits(NewSplit(accts[0], amt(42, f.usd)), strong))

		txn.BalanceCurrencies(strong)

		assert.Equal(t, 4, txn.Len())
		assert.Equal(t, amt(-42, f.usd), txn.Splits()[2].Amount())
		assert.Equal(t, amt(-22, f.cad), txn.Splits()[3].Amount())
	})

	t.Run("OffsettingCurrencies", func(t *testing.T) {
		txn := NewTransaction(day("2024-01-01"), "", WithSplits(
			NewSplit(accts[0], amt(42, f.usd)),
			NewSplit(accts[1], amt(-30, f.cad)),
		))
		txn.Balance(nil, false)
		assert.Equal(t, []int64{42, -30}, vals(txn))
	})

	t.Run("ReusesUnassignedOfSameCurrency", func(t *testing.T) {
		txn := NewTransaction(day("2024-01-01"), "", WithSplits(
			NewSplit(accts[0], amt(42, f.usd)),
			NewSplit(accts[1], amt(22, f.cad)),
			NewSplit(nil, amt(-40, f.usd)),
		))
		txn.Balance(nil, false)

		assert.Equal(t, []int64{42, 22, -42, -22}, vals(txn))
		assert.Equal(t, f.cad, txn.Splits()[3].Amount().Currency())
	})

	t.Run("BalancedPerCurrency", func(t *testing.T) {
		txn := NewTransaction(day("2024-01-01"), "", WithSplits(
			NewSplit(accts[0], amt(42, f.usd)),
			NewSplit(accts[1], amt(-42, f.usd)),
			NewSplit(accts[0], amt(10, f.cad)),
			NewSplit(nil, amt(-10, f.cad)),
		))
		txn.Balance(nil, false)
		assert.Equal(t, 4, txn.Len())
	})
}

func TestMCTBalance(t *testing.T) {
	f := newFixture(t)
	_, accts := f.accounts(t, "a1", "a2")
	f.setRate(t, "2024-01-01", f.usd, "1.30")

	txn := NewTransaction(day("2024-01-01"), "", WithSplits(
		NewSplit(accts[0], amt(10000, f.usd)),
		NewSplit(accts[1], amt(-10000, f.cad)),
	))
	assert.NoError(t, txn.MCTBalance(f.cad, f.rates))
	assert.Equal(t, 3, txn.Len())
	assert.Equal(t, amt(-3000, f.cad), txn.Splits()[2].Amount())

	// Balanced in the target currency, nothing to add.
	assert.NoError(t, txn.MCTBalance(f.cad, f.rates))
	assert.Equal(t, 3, txn.Len())
}

func TestMCTBalanceReportsMissingRate(t *testing.T) {
	f := newFixture(t)
	gbp, err := f.rates.Register(currency.Currency{Code: "GBP", Exponent: 2})
	assert.NoError(t, err)
	_, accts := f.accounts(t, "a1", "a2")

	txn := NewTransaction(day("2024-01-01"), "", WithSplits(
		NewSplit(accts[0], amt(100, gbp)),
		NewSplit(accts[1], amt(-100, f.cad)),
	))
	err = txn.MCTBalance(f.cad, f.rates)
	assert.True(t, errors.Is(err, currency.ErrRateUnavailable))
	assert.Equal(t, 2, txn.Len())
}
