package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/config"
	"github.com/robinvdvleuten/kasboek/currency"
	"github.com/robinvdvleuten/kasboek/output"
	"github.com/robinvdvleuten/kasboek/telemetry"
)

// session is the environment shared by every command: configuration,
// logger, currency registry and telemetry, all reachable from ctx.
type session struct {
	ctx      context.Context
	cfg      *config.Config
	logger   zerolog.Logger
	registry *currency.Registry
	styles   *output.Styles
	stdout   io.Writer
	stderr   io.Writer

	collector telemetry.Collector
	timer     telemetry.Timer
}

func openSession(kctx *kong.Context, globals *Globals, name string) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if globals.DB != "" {
		cfg.RatesDB = globals.DB
	}

	logger := cfg.Logger(kctx.Stderr)
	ctx := cfg.WithContext(context.Background())
	ctx = logger.WithContext(ctx)

	s := &session{
		cfg:    cfg,
		logger: logger,
		styles: output.NewStyles(kctx.Stdout),
		stdout: kctx.Stdout,
		stderr: kctx.Stderr,
	}

	if globals.Telemetry {
		s.collector = telemetry.NewTimingCollector()
		ctx = telemetry.WithCollector(ctx, s.collector)
		s.timer = s.collector.Start(name)
		ctx = telemetry.WithRootTimer(ctx, s.timer)
	}
	s.ctx = ctx

	timer := telemetry.StartTimer(ctx, "registry.open")
	s.registry, err = cfg.OpenRegistry(logger)
	timer.End()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the registry and prints the telemetry report.
func (s *session) Close() error {
	if s.collector != nil {
		s.timer.End()
		_, _ = fmt.Fprintln(s.stderr)
		s.collector.Report(s.stderr, output.NewStyles(s.stderr))
	}
	return s.registry.Close()
}

func (s *session) parser(opts ...amount.ParseOption) (*amount.Parser, error) {
	base, err := s.cfg.ParserOptions(s.registry)
	if err != nil {
		return nil, err
	}
	return amount.NewParser(s.registry, append(base, opts...)...), nil
}

func (s *session) formatter(opts ...amount.FormatOption) (*amount.Formatter, error) {
	base, err := s.cfg.FormatterOptions(s.registry)
	if err != nil {
		return nil, err
	}
	return amount.NewFormatter(append(base, opts...)...), nil
}

// amount formats a with f, colored by sign.
func (s *session) amount(f *amount.Formatter, a amount.Amount) string {
	sign := 0
	switch {
	case a.Val() < 0:
		sign = -1
	case a.Val() > 0:
		sign = 1
	}
	return s.styles.Amount(f.Format(a), sign)
}
