package config_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/config"
	"github.com/robinvdvleuten/kasboek/currency"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "CAD", cfg.DefaultCurrency)
	assert.Equal(t, "CAD", cfg.ReferenceCurrency)
	assert.Equal(t, ".", cfg.DecimalSep)
	assert.Equal(t, "", cfg.GroupingSep)
	assert.Equal(t, "", cfg.RatesDB)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.StrictCurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KASBOEK_CURRENCY", "EUR")
	t.Setenv("KASBOEK_DECIMAL_SEP", ",")
	t.Setenv("KASBOEK_GROUPING_SEP", ".")
	t.Setenv("KASBOEK_STRICT_CURRENCY", "true")
	t.Setenv("KASBOEK_AUTO_DECIMAL", "true")
	t.Setenv("KASBOEK_RATES_DB", "/tmp/rates.db")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.Equal(t, ",", cfg.DecimalSep)
	assert.Equal(t, ".", cfg.GroupingSep)
	assert.True(t, cfg.StrictCurrency)
	assert.True(t, cfg.AutoDecimalPlace)
	assert.Equal(t, "/tmp/rates.db", cfg.RatesDB)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"SameSeparators", map[string]string{"KASBOEK_DECIMAL_SEP": ",", "KASBOEK_GROUPING_SEP": ","}},
		{"LongDecimalSep", map[string]string{"KASBOEK_DECIMAL_SEP": ".."}},
		{"NotABool", map[string]string{"KASBOEK_BLANK_ZERO": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestContext(t *testing.T) {
	assert.Equal(t, config.Default(), config.FromContext(context.Background()))

	cfg := config.Default()
	cfg.DefaultCurrency = "USD"
	ctx := cfg.WithContext(context.Background())
	assert.Equal(t, cfg, config.FromContext(ctx))
}

func TestParserAndFormatterOptions(t *testing.T) {
	reg := currency.NewRegistry(nil)
	t.Cleanup(func() { _ = reg.Close() })
	cad, _ := reg.Get("CAD")

	cfg := config.Default()
	cfg.GroupingSep = " "
	cfg.StrictCurrency = true

	popts, err := cfg.ParserOptions(reg)
	assert.NoError(t, err)
	a, err := amount.NewParser(reg, popts...).Parse("1 234.56")
	assert.NoError(t, err)
	assert.Equal(t, amount.New(123456, cad), a)

	fopts, err := cfg.FormatterOptions(reg)
	assert.NoError(t, err)
	assert.Equal(t, "1 234.56", amount.NewFormatter(fopts...).Format(a))

	cfg.DefaultCurrency = "XYZ"
	_, err = cfg.ParserOptions(reg)
	assert.IsError(t, err, currency.ErrUnsupportedCurrency)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "info"
	logger := cfg.Logger(&buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("currency", "CAD").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"currency":"CAD"`)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestOpenRegistry(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RatesDB = filepath.Join(dir, "rates.db")
	cfg.CurrenciesFile = writeFile(t, dir, "currencies.toml", `
[[currency]]
code = "XBT"
exponent = 8
`)

	reg, err := cfg.OpenRegistry(zerolog.Nop())
	assert.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	xbt, ok := reg.Get("XBT")
	assert.True(t, ok)
	assert.Equal(t, 8, xbt.Exponent)
	assert.Equal(t, "CAD", reg.Reference().Code)
}
