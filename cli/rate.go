package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/kasboek/currency"
)

const dateFormat = "2006-01-02"

// RateCmd groups the exchange rate commands.
type RateCmd struct {
	Set     RateSetCmd     `cmd:"" help:"Store the value of a currency in the reference currency."`
	Get     RateGetCmd     `cmd:"" help:"Show the value of a currency at a date."`
	History RateHistoryCmd `cmd:"" help:"List the stored rates of a currency."`
	Import  RateImportCmd  `cmd:"" help:"Import rates from a CSV file (date,currency,rate)."`
}

type RateSetCmd struct {
	Code string    `arg:"" help:"Currency code."`
	Date time.Time `arg:"" help:"Date of the rate (YYYY-MM-DD)." format:"2006-01-02"`
	Rate string    `arg:"" help:"Value of one unit in the reference currency."`
}

func (cmd *RateSetCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := openSession(ctx, globals, "rate set")
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cur, err := resolveCurrency(s.registry, cmd.Code)
	if err != nil {
		return fail(s, err)
	}
	if cur == s.registry.Reference() {
		return fail(s, fmt.Errorf("%s is the reference currency, its rate is always 1", cur.Code))
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(cmd.Rate))
	if err != nil {
		return fail(s, fmt.Errorf("invalid rate %q: %w", cmd.Rate, err))
	}

	existing, found, err := storedRate(s.registry, cur, cmd.Date)
	if err != nil {
		return fail(s, err)
	}
	if found && !existing.Equal(rate) {
		ok, err := confirm(fmt.Sprintf("Replace the %s rate %s of %s?", cur.Code, existing, cmd.Date.Format(dateFormat)), globals.Yes)
		if err != nil {
			return fail(s, err)
		}
		if !ok {
			printInfof(s.stdout, "Kept %s %s on %s", s.styles.Currency(cur.Code), existing, cmd.Date.Format(dateFormat))
			return nil
		}
	}

	if err := s.registry.SetRate(cmd.Date, cur, rate); err != nil {
		return fail(s, err)
	}
	printSuccess(s.stdout, fmt.Sprintf("1 %s = %s %s on %s",
		s.styles.Currency(cur.Code), s.styles.Rate(rate.String()), s.styles.Currency(s.registry.Reference().Code), cmd.Date.Format(dateFormat)))
	return nil
}

type RateGetCmd struct {
	Code string    `arg:"" help:"Currency code."`
	Date time.Time `arg:"" optional:"" help:"Date of the rate, today when omitted." format:"2006-01-02"`
	In   string    `help:"Express the rate in this currency instead of the reference currency." placeholder:"CODE"`
}

func (cmd *RateGetCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := openSession(ctx, globals, "rate get")
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cur, err := resolveCurrency(s.registry, cmd.Code)
	if err != nil {
		return fail(s, err)
	}
	target := s.registry.Reference()
	if cmd.In != "" {
		if target, err = resolveCurrency(s.registry, cmd.In); err != nil {
			return fail(s, err)
		}
	}
	date := cmd.Date
	if date.IsZero() {
		date = time.Now()
	}

	rate, err := s.registry.Rate(date, cur, target)
	if err != nil {
		return fail(s, err)
	}
	_, _ = fmt.Fprintf(s.stdout, "1 %s = %s %s on %s\n",
		s.styles.Currency(cur.Code), s.styles.Rate(rate.String()), s.styles.Currency(target.Code), date.Format(dateFormat))
	return nil
}

type RateHistoryCmd struct {
	Code string `arg:"" help:"Currency code."`
}

func (cmd *RateHistoryCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := openSession(ctx, globals, "rate history")
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cur, err := resolveCurrency(s.registry, cmd.Code)
	if err != nil {
		return fail(s, err)
	}
	points, err := s.registry.History(cur)
	if err != nil {
		return fail(s, err)
	}
	if len(points) == 0 {
		printInfof(s.stdout, "No rates stored for %s", s.styles.Currency(cur.Code))
		return nil
	}

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Date.Format(dateFormat), p.Rate.String()})
	}
	writeTable(s.stdout, []string{"DATE", "RATE (" + s.registry.Reference().Code + ")"}, rows, alignLeft, alignRight)
	return nil
}

type RateImportCmd struct {
	File  string `arg:"" help:"CSV file with date,currency,rate rows." type:"existingfile"`
	Watch bool   `help:"Keep running and import the file again whenever it changes." short:"w"`
}

func (cmd *RateImportCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := openSession(ctx, globals, "rate import")
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	n, err := importRates(s.ctx, s.registry, cmd.File)
	if err != nil {
		return fail(s, err)
	}
	printSuccess(s.stdout, fmt.Sprintf("Imported %d rate(s) from %s", n, pathStyle.Render(cmd.File)))
	if !cmd.Watch {
		return nil
	}

	runCtx, stop := signal.NotifyContext(s.ctx, os.Interrupt)
	defer stop()

	printInfof(s.stdout, "Watching %s for changes", pathStyle.Render(cmd.File))
	return watchFile(runCtx, cmd.File, func() {
		n, err := importRates(runCtx, s.registry, cmd.File)
		if err != nil {
			_, _ = fmt.Fprintln(s.stderr, NewErrorRenderer(s.registry).Render(err))
			return
		}
		printSuccess(s.stdout, fmt.Sprintf("Imported %d rate(s) from %s", n, pathStyle.Render(cmd.File)))
	})
}

// resolveCurrency returns the registered currency for code, registering
// ISO 4217 codes on first use.
func resolveCurrency(reg *currency.Registry, code string) (*currency.Currency, error) {
	if cur, ok := reg.Get(code); ok {
		return cur, nil
	}
	return reg.RegisterISO(code)
}

// storedRate returns the rate stored for cur at exactly date.
func storedRate(reg *currency.Registry, cur *currency.Currency, date time.Time) (decimal.Decimal, bool, error) {
	points, err := reg.History(cur)
	if err != nil {
		return decimal.Zero, false, err
	}
	key := date.Format(dateFormat)
	i := slices.IndexFunc(points, func(p currency.Point) bool {
		return p.Date.Format(dateFormat) == key
	})
	if i < 0 {
		return decimal.Zero, false, nil
	}
	return points[i].Rate, true, nil
}

type alignment int

const (
	alignLeft alignment = iota
	alignRight
)

// writeTable prints rows in columns padded to their display width.
func writeTable(w io.Writer, header []string, rows [][]string, aligns ...alignment) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string) string {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			if i < len(aligns) && aligns[i] == alignRight {
				padded[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				padded[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		return strings.TrimRight(strings.Join(padded, "  "), " ")
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(line(header)))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, line(row))
	}
}
