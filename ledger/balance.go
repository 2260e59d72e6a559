package ledger

import (
	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

// Balance restores the zero sum of the splits after an edit to strong,
// which may be nil and is never adjusted itself.
//
// With exactly two splits the weak leg follows the strong one: it mirrors
// the strong amount when keepTwoSplits is set, and otherwise flips sign when
// both legs ended up on the same side. Any remaining imbalance goes to the
// first unassigned split, or to a new one.
func (t *Transaction) Balance(strong *Split, keepTwoSplits bool) {
	if len(t.splits) == 2 && strong != nil {
		weak := t.splits[0]
		if weak == strong {
			weak = t.splits[1]
		}
		if weak != strong && indexOf(t.splits, strong) >= 0 {
			switch {
			case keepTwoSplits:
				weak.SetAmount(strong.amount.Neg())
			case sameSide(weak.amount, strong.amount):
				weak.SetAmount(weak.amount.Neg())
			}
		}
	}
	if t.IsMCT() {
		t.BalanceCurrencies(strong)
		return
	}

	imbalance := amount.Zero
	for _, s := range t.splits {
		// Single currency, Add cannot fail.
		imbalance, _ = imbalance.Add(s.amount)
	}
	if imbalance.IsZero() {
		return
	}
	for _, s := range t.splits {
		if s.account == nil && s != strong {
			adjusted, _ := s.amount.Sub(imbalance)
			if adjusted.IsZero() {
				_ = t.RemoveSplit(s)
				return
			}
			s.SetAmount(adjusted)
			return
		}
	}
	t.AddSplit(NewSplit(nil, imbalance.Neg()))
}

func sameSide(a, b amount.Amount) bool {
	return (a.Val() > 0 && b.Val() > 0) || (a.Val() < 0 && b.Val() < 0)
}

type currencyTotal struct {
	cur   *currency.Currency
	total int64
}

// BalanceCurrencies balances a multi-currency transaction without
// converting. Currencies are left alone when at least one sums positive and
// another negative; otherwise every unbalanced currency gets its own
// offsetting unassigned split.
func (t *Transaction) BalanceCurrencies(strong *Split) {
	var totals []currencyTotal
	for _, s := range t.splits {
		if s.amount.IsZero() {
			continue
		}
		i := 0
		for i < len(totals) && totals[i].cur != s.amount.Currency() {
			i++
		}
		if i == len(totals) {
			totals = append(totals, currencyTotal{cur: s.amount.Currency()})
		}
		totals[i].total += s.amount.Val()
	}

	var unbalanced []currencyTotal
	hasPositive, hasNegative := false, false
	for _, ct := range totals {
		switch {
		case ct.total > 0:
			hasPositive = true
		case ct.total < 0:
			hasNegative = true
		default:
			continue
		}
		unbalanced = append(unbalanced, ct)
	}
	if hasPositive && hasNegative {
		return
	}

	for _, ct := range unbalanced {
		var target *Split
		for _, s := range t.splits {
			if s.account == nil && s != strong && s.amount.Currency() == ct.cur {
				target = s
				break
			}
		}
		if target == nil {
			t.AddSplit(NewSplit(nil, amount.New(-ct.total, ct.cur)))
			continue
		}
		remaining := target.amount.Val() - ct.total
		if remaining == 0 {
			_ = t.RemoveSplit(target)
			continue
		}
		target.SetAmount(amount.New(remaining, ct.cur))
	}
}

// MCTBalance values every split in cur at the transaction date and appends
// an unassigned split in cur for the residual.
func (t *Transaction) MCTBalance(cur *currency.Currency, rates amount.RateSource) error {
	total := amount.Zero
	for _, s := range t.splits {
		converted, err := amount.Convert(s.amount, cur, t.Date, rates)
		if err != nil {
			return err
		}
		if total, err = total.Add(converted); err != nil {
			return err
		}
	}
	if !total.IsZero() {
		t.AddSplit(NewSplit(nil, total.Neg()))
	}
	return nil
}
