// Package config loads kasboek settings from the environment and turns
// them into parser, formatter, logger and currency registry settings.
package config

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

// Config holds every setting. Zero values are not meaningful; use Load or
// Default.
type Config struct {
	// Amounts
	DefaultCurrency  string `env:"KASBOEK_CURRENCY"        envDefault:"CAD"`
	DecimalSep       string `env:"KASBOEK_DECIMAL_SEP"     envDefault:"."`
	GroupingSep      string `env:"KASBOEK_GROUPING_SEP"`
	BlankZero        bool   `env:"KASBOEK_BLANK_ZERO"      envDefault:"false"`
	AutoDecimalPlace bool   `env:"KASBOEK_AUTO_DECIMAL"    envDefault:"false"`
	StrictCurrency   bool   `env:"KASBOEK_STRICT_CURRENCY" envDefault:"false"`

	// Currencies
	ReferenceCurrency string `env:"KASBOEK_REFERENCE_CURRENCY" envDefault:"CAD"`
	RatesDB           string `env:"KASBOEK_RATES_DB"`
	CurrenciesFile    string `env:"KASBOEK_CURRENCIES"`

	// Logging
	LogLevel  string `env:"KASBOEK_LOG_LEVEL"  envDefault:"warn"`
	LogFormat string `env:"KASBOEK_LOG_FORMAT" envDefault:"console"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration of an empty environment.
func Default() *Config {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.DecimalSep) != 1 {
		return fmt.Errorf("decimal separator %q must be a single character", c.DecimalSep)
	}
	if utf8.RuneCountInString(c.GroupingSep) > 1 {
		return fmt.Errorf("grouping separator %q must be at most one character", c.GroupingSep)
	}
	if c.DecimalSep == c.GroupingSep {
		return fmt.Errorf("decimal and grouping separators are both %q", c.DecimalSep)
	}
	return nil
}

type contextKey struct{}

// WithContext returns a context carrying c.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the configuration of ctx, or Default.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return Default()
}

func (c *Config) defaultCurrency(currencies amount.CurrencyLookup) (*currency.Currency, error) {
	cur, ok := currencies.Get(c.DefaultCurrency)
	if !ok {
		return nil, fmt.Errorf("default currency: %w", &currency.UnsupportedCurrencyError{Code: c.DefaultCurrency})
	}
	return cur, nil
}

// ParserOptions translates the amount settings for amount.NewParser.
func (c *Config) ParserOptions(currencies amount.CurrencyLookup) ([]amount.ParseOption, error) {
	var opts []amount.ParseOption
	if c.DefaultCurrency != "" {
		cur, err := c.defaultCurrency(currencies)
		if err != nil {
			return nil, err
		}
		opts = append(opts, amount.WithParseCurrency(cur))
	}
	if c.AutoDecimalPlace {
		opts = append(opts, amount.WithAutoDecimalPlace())
	}
	if c.StrictCurrency {
		opts = append(opts, amount.WithStrictCurrency())
	}
	return opts, nil
}

// FormatterOptions translates the amount settings for amount.NewFormatter.
func (c *Config) FormatterOptions(currencies amount.CurrencyLookup) ([]amount.FormatOption, error) {
	opts := []amount.FormatOption{
		amount.WithDecimalSep(c.DecimalSep),
		amount.WithGroupingSep(c.GroupingSep),
	}
	if c.DefaultCurrency != "" {
		cur, err := c.defaultCurrency(currencies)
		if err != nil {
			return nil, err
		}
		opts = append(opts, amount.WithDefaultCurrency(cur))
	}
	if c.BlankZero {
		opts = append(opts, amount.WithBlankZero())
	}
	return opts, nil
}

// Logger builds the zerolog logger described by the log settings.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(parseLevel(c.LogLevel)).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// OpenRegistry opens the rate store (SQLite when RatesDB is set, memory
// otherwise) and registers the configured currencies.
func (c *Config) OpenRegistry(logger zerolog.Logger) (*currency.Registry, error) {
	var store currency.RateStore = currency.NewMemoryStore()
	if c.RatesDB != "" {
		sqlite, err := currency.OpenSQLite(c.RatesDB)
		if err != nil {
			return nil, fmt.Errorf("opening rate database: %w", err)
		}
		store = sqlite
	}
	reg := currency.NewRegistry(store,
		currency.WithReference(c.ReferenceCurrency),
		currency.WithLogger(logger),
	)
	if c.CurrenciesFile != "" {
		defs, err := LoadCurrencies(c.CurrenciesFile)
		if err == nil {
			err = RegisterCurrencies(reg, defs)
		}
		if err != nil {
			_ = reg.Close()
			return nil, err
		}
	}
	return reg, nil
}
