package cli

import (
	"strconv"

	"github.com/alecthomas/kong"
)

type CurrenciesCmd struct{}

func (cmd *CurrenciesCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := openSession(ctx, globals, "currencies")
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	reference := s.registry.Reference()
	var rows [][]string
	for _, code := range s.registry.Codes() {
		cur, _ := s.registry.Get(code)
		first, last, found, err := s.registry.DateRange(cur)
		if err != nil {
			return fail(s, err)
		}

		rates := ""
		switch {
		case cur == reference:
			rates = "reference"
		case found:
			rates = first.Format(dateFormat) + " .. " + last.Format(dateFormat)
		}
		rows = append(rows, []string{code, strconv.Itoa(cur.Exponent), rates})
	}
	writeTable(s.stdout, []string{"CODE", "DIGITS", "RATES"}, rows, alignLeft, alignRight, alignLeft)
	return nil
}
