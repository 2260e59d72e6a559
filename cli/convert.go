package cli

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/kasboek/amount"
)

type ConvertCmd struct {
	Amount string    `arg:"" help:"Amount to convert, e.g. \"42.50 USD\" or \"12 * 3 EUR\"."`
	To     string    `arg:"" help:"Target currency code."`
	Date   time.Time `help:"Date of the rate, today when omitted." format:"2006-01-02"`
}

func (cmd *ConvertCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := openSession(ctx, globals, "convert")
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	p, err := s.parser()
	if err != nil {
		return fail(s, err)
	}
	a, err := p.Parse(cmd.Amount)
	if err != nil {
		return fail(s, err)
	}
	target, err := resolveCurrency(s.registry, cmd.To)
	if err != nil {
		return fail(s, err)
	}
	date := cmd.Date
	if date.IsZero() {
		date = time.Now()
	}

	converted, err := amount.Convert(a, target, date, s.registry)
	if err != nil {
		return fail(s, err)
	}

	f, err := s.formatter(amount.WithDefaultCurrency(nil))
	if err != nil {
		return fail(s, err)
	}
	_, _ = fmt.Fprintf(s.stdout, "%s = %s\n", s.amount(f, a), s.amount(f, converted))
	return nil
}
