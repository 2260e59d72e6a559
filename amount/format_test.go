package amount

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFormat(t *testing.T) {
	r := newRegistry(t)
	usd := mustGet(t, r, "USD")
	cad := mustGet(t, r, "CAD")
	eur := mustGet(t, r, "EUR")
	jpy := mustGet(t, r, "JPY")
	bhd := mustGet(t, r, "BHD")

	tests := []struct {
		name   string
		amount Amount
		opts   []FormatOption
		want   string
	}{
		{"default currency hidden", New(1234, cad), []FormatOption{WithDefaultCurrency(cad)}, "12.34"},
		{"other currency shown", New(1234, cad), []FormatOption{WithDefaultCurrency(usd)}, "CAD 12.34"},
		{"no default", New(3300, usd), nil, "USD 33.00"},
		{"negative", New(-1234, usd), []FormatOption{WithDefaultCurrency(usd)}, "-12.34"},
		{"negative with code", New(-1234, usd), nil, "USD -12.34"},
		{"small", New(5, usd), []FormatOption{WithDefaultCurrency(usd)}, "0.05"},
		{"no decimals", New(1234, jpy), []FormatOption{WithGroupingSep(",")}, "JPY 1,234"},
		{"three decimals", New(1234567, bhd), []FormatOption{WithGroupingSep(" ")}, "BHD 1 234.567"},
		{"zero", Zero, nil, "0.00"},
		{"zero with currency", New(0, cad), []FormatOption{WithDefaultCurrency(usd)}, "0.00"},
		{"zero currency", Zero, []FormatOption{WithDefaultCurrency(cad), WithZeroCurrency(eur)}, "EUR 0.00"},
		{"zero currency is default", Zero, []FormatOption{WithDefaultCurrency(cad), WithZeroCurrency(cad)}, "0.00"},
		{"blank zero", Zero, []FormatOption{WithBlankZero()}, ""},
		{"grouping", New(123499, cad), []FormatOption{WithDefaultCurrency(cad), WithGroupingSep(" ")}, "1 234.99"},
		{"grouping large", New(123456789099, cad), []FormatOption{WithDefaultCurrency(cad), WithGroupingSep(" ")}, "1 234 567 890.99"},
		{"grouping five digits", New(2306044, cad), []FormatOption{WithDefaultCurrency(cad), WithGroupingSep(" ")}, "23 060.44"},
		{"grouping short", New(-12345, cad), []FormatOption{WithDefaultCurrency(cad), WithGroupingSep(" ")}, "-123.45"},
		{"european", New(123499, cad), []FormatOption{WithDefaultCurrency(cad), WithGroupingSep("."), WithDecimalSep(",")}, "1.234,99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFormatter(tt.opts...).Format(tt.amount))
		})
	}
}

func TestFormatNumberExtremes(t *testing.T) {
	f := NewFormatter(WithGroupingSep(","))
	assert.Equal(t, "-92,233,720,368,547,758.08", f.FormatNumber(-9223372036854775808, 2))
	assert.Equal(t, "0.000001", f.FormatNumber(1, 6))
}
