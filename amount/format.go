package amount

import (
	"strconv"
	"strings"

	"github.com/robinvdvleuten/kasboek/currency"
)

// Formatter renders amounts as "[CODE ][-]digits[sep]digits".
type Formatter struct {
	defaultCurrency *currency.Currency
	zeroCurrency    *currency.Currency
	blankZero       bool
	decimalSep      string
	groupingSep     string
}

// FormatOption configures a Formatter.
type FormatOption func(*Formatter)

// WithDefaultCurrency omits the code of amounts in cur.
func WithDefaultCurrency(cur *currency.Currency) FormatOption {
	return func(f *Formatter) {
		f.defaultCurrency = cur
	}
}

// WithZeroCurrency shows zero amounts with the code of cur when it differs
// from the default currency.
func WithZeroCurrency(cur *currency.Currency) FormatOption {
	return func(f *Formatter) {
		f.zeroCurrency = cur
	}
}

// WithBlankZero renders zero amounts as an empty string.
func WithBlankZero() FormatOption {
	return func(f *Formatter) {
		f.blankZero = true
	}
}

func WithDecimalSep(sep string) FormatOption {
	return func(f *Formatter) {
		f.decimalSep = sep
	}
}

// WithGroupingSep enables thousands grouping with sep.
func WithGroupingSep(sep string) FormatOption {
	return func(f *Formatter) {
		f.groupingSep = sep
	}
}

// NewFormatter creates a formatter using "." as decimal separator and no
// grouping unless configured otherwise.
func NewFormatter(opts ...FormatOption) *Formatter {
	f := &Formatter{decimalSep: "."}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Formatter) Format(a Amount) string {
	if a.val == 0 {
		if f.blankZero {
			return ""
		}
		cur := a.cur
		if f.zeroCurrency != nil {
			cur = f.zeroCurrency
		}
		digits := f.FormatNumber(0, exponentOf(cur))
		if f.zeroCurrency != nil && f.zeroCurrency != f.defaultCurrency {
			return f.zeroCurrency.Code + " " + digits
		}
		return digits
	}

	digits := f.FormatNumber(a.val, exponentOf(a.cur))
	if a.cur != nil && a.cur != f.defaultCurrency {
		return a.cur.Code + " " + digits
	}
	return digits
}

// FormatNumber renders a scaled integer without any currency code.
func (f *Formatter) FormatNumber(val int64, exponent int) string {
	negative := val < 0
	abs := uint64(val)
	if negative {
		abs = uint64(-(val + 1)) + 1
	}

	digits := strconv.FormatUint(abs, 10)
	if len(digits) <= exponent {
		digits = strings.Repeat("0", exponent-len(digits)+1) + digits
	}
	whole, frac := digits[:len(digits)-exponent], digits[len(digits)-exponent:]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(f.group(whole))
	if exponent > 0 {
		b.WriteString(f.decimalSep)
		b.WriteString(frac)
	}
	return b.String()
}

func (f *Formatter) group(whole string) string {
	if f.groupingSep == "" || len(whole) <= 3 {
		return whole
	}
	var b strings.Builder
	head := len(whole) % 3
	if head > 0 {
		b.WriteString(whole[:head])
	}
	for i := head; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteString(f.groupingSep)
		}
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}
