package amount

import (
	"strings"
	"unicode"

	"github.com/robinvdvleuten/kasboek/currency"
)

// CurrencyLookup resolves currency codes. *currency.Registry satisfies it.
type CurrencyLookup interface {
	Get(code string) (*currency.Currency, bool)
}

// Parser reads free-form amount text such as "CAD 3 000.00", "$(12.34)",
// "42.12 eur" or "21 * 4 / (1 + 1) EUR".
type Parser struct {
	currencies      CurrencyLookup
	defaultCurrency *currency.Currency
	autoDecimal     bool
	strict          bool
	expressions     bool
}

// ParseOption configures a Parser.
type ParseOption func(*Parser)

// WithParseCurrency sets the currency used when the text names none.
func WithParseCurrency(cur *currency.Currency) ParseOption {
	return func(p *Parser) {
		p.defaultCurrency = cur
	}
}

// WithAutoDecimalPlace reads numbers without a decimal separator as already
// scaled: "1234" is 12.34 in a currency with two decimals. Expressions are
// not affected.
func WithAutoDecimalPlace() ParseOption {
	return func(p *Parser) {
		p.autoDecimal = true
	}
}

// WithStrictCurrency rejects text containing words that are not a known
// currency code instead of ignoring them.
func WithStrictCurrency() ParseOption {
	return func(p *Parser) {
		p.strict = true
	}
}

// WithoutExpressions rejects arithmetic.
func WithoutExpressions() ParseOption {
	return func(p *Parser) {
		p.expressions = false
	}
}

func NewParser(currencies CurrencyLookup, opts ...ParseOption) *Parser {
	p := &Parser{currencies: currencies, expressions: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads s. Blank text and zero values give Zero. A nonzero value
// without any resolvable currency is rejected.
func (p *Parser) Parse(s string) (Amount, error) {
	if strings.TrimSpace(s) == "" {
		return Zero, nil
	}

	cur, rest, err := p.extractCurrency(s)
	if err != nil {
		return Amount{}, err
	}
	if cur == nil {
		cur = p.defaultCurrency
	}
	if digitsOf(rest) == "" {
		return Amount{}, &ParseError{Input: s, Reason: "no digits"}
	}

	exponent := exponentOf(cur)
	var val int64
	if isSingleNumber(rest) {
		val, err = ParseNumber(rest, exponent, p.autoDecimal)
	} else if p.expressions {
		val, err = Evaluate(rest, exponent)
	} else {
		err = &ParseError{Input: s, Reason: "expressions are not allowed"}
	}
	if err != nil {
		return Amount{}, err
	}

	if val == 0 {
		return Zero, nil
	}
	if cur == nil {
		return Amount{}, &ParseError{Input: s, Reason: "no currency"}
	}
	return New(val, cur), nil
}

// extractCurrency removes words and stray symbols from s. A word naming a
// registered currency becomes the amount's currency; other words are
// ignored unless the parser is strict.
func (p *Parser) extractCurrency(s string) (*currency.Currency, string, error) {
	var (
		cur  *currency.Currency
		rest strings.Builder
		word strings.Builder
	)

	flush := func() error {
		if word.Len() == 0 {
			return nil
		}
		w := word.String()
		word.Reset()

		var found *currency.Currency
		if p.currencies != nil && len(w) <= currency.MaxCodeLength {
			found, _ = p.currencies.Get(w)
		}
		switch {
		case found != nil && cur != nil && found != cur:
			return &ParseError{Input: s, Reason: "more than one currency"}
		case found != nil:
			cur = found
		case p.strict:
			return &ParseError{Input: s, Reason: "unknown currency", Err: &currency.UnsupportedCurrencyError{Code: strings.ToUpper(w)}}
		}
		return nil
	}

	for _, r := range s {
		if unicode.IsLetter(r) {
			word.WriteRune(r)
			continue
		}
		if err := flush(); err != nil {
			return nil, "", err
		}
		if isDigit(r) || isSeparator(r) || strings.ContainsRune("+-*/()", r) {
			rest.WriteRune(r)
		}
	}
	if err := flush(); err != nil {
		return nil, "", err
	}
	return cur, strings.TrimSpace(rest.String()), nil
}

// isSingleNumber reports whether s is a lone number, optionally negative or
// wrapped in parentheses, rather than an expression.
func isSingleNumber(s string) bool {
	s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	return !strings.ContainsAny(s, "+-*/()")
}
