package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/kasboek/currency"
)

// CurrencyDef is one [[currency]] table of a currencies file:
//
//	[[currency]]
//	code = "XBT"
//	exponent = 8
//
//	[[currency]]
//	code = "JPY"          # exponent from ISO 4217
//	start_date = "2001-01-01"
//	start_rate = 0.0125
type CurrencyDef struct {
	Code       string  `toml:"code"`
	Exponent   *int    `toml:"exponent"`
	StartDate  string  `toml:"start_date"`
	StartRate  float64 `toml:"start_rate"`
	StopDate   string  `toml:"stop_date"`
	LatestRate float64 `toml:"latest_rate"`
}

type currencyFile struct {
	Currencies []CurrencyDef `toml:"currency"`
}

// LoadCurrencies reads currency definitions from a TOML file.
func LoadCurrencies(path string) ([]CurrencyDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading currencies: %w", err)
	}
	defs, err := ParseCurrencies(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

func ParseCurrencies(data []byte) ([]CurrencyDef, error) {
	var f currencyFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Currencies, nil
}

// RegisterCurrencies adds defs to reg. Definitions without an exponent
// take it from ISO 4217.
func RegisterCurrencies(reg *currency.Registry, defs []CurrencyDef) error {
	for _, def := range defs {
		if def.Exponent == nil && def.StartDate == "" && def.StopDate == "" {
			if _, err := reg.RegisterISO(def.Code); err != nil {
				return err
			}
			continue
		}
		c, err := def.currency()
		if err != nil {
			return err
		}
		if def.Exponent == nil {
			exponent, ok := currency.ISOExponent(def.Code)
			if !ok {
				return &currency.UnsupportedCurrencyError{Code: def.Code}
			}
			c.Exponent = exponent
		}
		if _, err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (def CurrencyDef) currency() (currency.Currency, error) {
	c := currency.Currency{Code: def.Code}
	if def.Exponent != nil {
		c.Exponent = *def.Exponent
	}
	var err error
	if c.StartDate, err = parseDate(def.StartDate); err != nil {
		return c, fmt.Errorf("currency %s: start_date: %w", def.Code, err)
	}
	if c.StopDate, err = parseDate(def.StopDate); err != nil {
		return c, fmt.Errorf("currency %s: stop_date: %w", def.Code, err)
	}
	c.StartRate = decimal.NewFromFloat(def.StartRate)
	c.LatestRate = decimal.NewFromFloat(def.LatestRate)
	return c, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
