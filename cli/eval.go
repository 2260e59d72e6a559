package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/kasboek/amount"
)

type EvalCmd struct {
	Expr        string `arg:"" help:"Amount or expression, e.g. \"21 * 4 / (1 + 1) EUR\"."`
	Currency    string `help:"Currency of amounts that name none (defaults to KASBOEK_CURRENCY)." placeholder:"CODE"`
	AutoDecimal bool   `help:"Read numbers without a decimal separator as cents."`
	Strict      bool   `help:"Reject words that are not currency codes."`
	Debug       bool   `help:"Dump the parsed amount."`
}

// evalResult is what --debug dumps.
type evalResult struct {
	Input    string
	Val      int64
	Currency string
	Exponent int
	Decimal  string
}

func (cmd *EvalCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := openSession(ctx, globals, "eval")
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var opts []amount.ParseOption
	if cmd.Currency != "" {
		cur, err := resolveCurrency(s.registry, cmd.Currency)
		if err != nil {
			return fail(s, err)
		}
		opts = append(opts, amount.WithParseCurrency(cur))
	}
	if cmd.AutoDecimal {
		opts = append(opts, amount.WithAutoDecimalPlace())
	}
	if cmd.Strict {
		opts = append(opts, amount.WithStrictCurrency())
	}

	p, err := s.parser(opts...)
	if err != nil {
		return fail(s, err)
	}
	a, err := p.Parse(cmd.Expr)
	if err != nil {
		return fail(s, err)
	}

	if cmd.Debug {
		result := evalResult{Input: cmd.Expr, Val: a.Val(), Decimal: a.Decimal().String()}
		if cur := a.Currency(); cur != nil {
			result.Currency = cur.Code
			result.Exponent = cur.Exponent
		}
		repr.New(s.stdout).Println(result)
		return nil
	}

	f, err := s.formatter(amount.WithDefaultCurrency(nil))
	if err != nil {
		return fail(s, err)
	}
	_, _ = fmt.Fprintln(s.stdout, s.amount(f, a))
	return nil
}
