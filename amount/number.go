package amount

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Separators are the grouping and decimal separators found in a number.
// A zero rune means the separator is absent.
type Separators struct {
	Grouping rune
	Decimal  rune
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSeparator(r rune) bool {
	switch r {
	case '.', ',', '\'', '\u2019', ' ', '\u00a0', '\u202f':
		return true
	}
	return false
}

func isDecimalCandidate(r rune) bool {
	return r == '.' || r == ','
}

// DetectSeparators finds the separators of a number made of digits and
// separator characters. Every separator but the last must be the same
// grouping character. The last one is reported as the decimal separator
// when it is a period or comma, otherwise it joins the grouping ones.
// Every group following a grouping separator has exactly three digits.
func DetectSeparators(s string) (Separators, error) {
	type sep struct {
		r   rune
		pos int
	}
	var seps []sep
	prevDigit := false
	for pos, r := range s {
		switch {
		case isDigit(r):
			prevDigit = true
		case isSeparator(r):
			if !prevDigit && len(seps) > 0 {
				return Separators{}, &ParseError{Input: s, Reason: "consecutive separators"}
			}
			seps = append(seps, sep{r: r, pos: pos})
			prevDigit = false
		default:
			return Separators{}, &ParseError{Input: s, Reason: "unexpected character " + strconv.QuoteRune(r)}
		}
	}
	if len(seps) == 0 {
		return Separators{}, nil
	}

	last := seps[len(seps)-1]
	var result Separators
	for i, sp := range seps[:len(seps)-1] {
		if sp.pos == 0 {
			return Separators{}, &ParseError{Input: s, Reason: "leading grouping separator"}
		}
		if result.Grouping != 0 && result.Grouping != sp.r {
			return Separators{}, &ParseError{Input: s, Reason: "mixed grouping separators"}
		}
		if n := seps[i+1].pos - sp.pos - utf8.RuneLen(sp.r); n != 3 {
			return Separators{}, groupError(s, n)
		}
		result.Grouping = sp.r
	}

	if isDecimalCandidate(last.r) {
		result.Decimal = last.r
		return result, nil
	}
	if last.pos == 0 || last.pos+utf8.RuneLen(last.r) == len(s) {
		return Separators{}, &ParseError{Input: s, Reason: "misplaced separator"}
	}
	if result.Grouping != 0 && result.Grouping != last.r {
		return Separators{}, &ParseError{Input: s, Reason: "mixed grouping separators"}
	}
	if n := len(s) - last.pos - utf8.RuneLen(last.r); n != 3 {
		return Separators{}, groupError(s, n)
	}
	result.Grouping = last.r
	return result, nil
}

func groupError(s string, digits int) error {
	return &ParseError{Input: s, Reason: "group of " + strconv.Itoa(digits) + " digits"}
}

func digitsOf(s string) string {
	return strings.Map(func(r rune) rune {
		if isDigit(r) {
			return r
		}
		return -1
	}, s)
}

// ParseNumber reads a single number scaled to exponent. It accepts a
// leading minus sign or surrounding parentheses for negative values. When
// autoDecimal is set and no decimal separator is present, the trailing
// exponent digits are taken as the fraction.
//
// Exactly three digits after a period or comma in a currency with fewer
// than three decimals are a thousands group: "1,000" is one thousand.
func ParseNumber(s string, exponent int, autoDecimal bool) (int64, error) {
	input := s
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if digitsOf(s) == "" {
		return 0, &ParseError{Input: input, Reason: "no digits"}
	}

	seps, err := DetectSeparators(s)
	if err != nil {
		return 0, &ParseError{Input: input, Reason: "invalid number", Err: err}
	}

	whole, frac := s, ""
	hasDecimal := false
	if seps.Decimal != 0 {
		idx := strings.LastIndexFunc(s, func(r rune) bool { return r == seps.Decimal })
		candidate := s[idx+utf8.RuneLen(seps.Decimal):]
		thousands := len(candidate) == 3 && exponent < 3 &&
			(seps.Grouping == 0 || seps.Grouping == seps.Decimal)
		if !thousands {
			whole, frac, hasDecimal = s[:idx], candidate, true
		}
	}
	whole = digitsOf(whole)
	if whole == "" {
		whole = "0"
	}

	var val int64
	switch {
	case !hasDecimal && autoDecimal:
		val, err = strconv.ParseInt(whole, 10, 64)
	case len(frac) > exponent:
		val, err = roundDigits(whole, frac, exponent)
	default:
		val, err = strconv.ParseInt(whole+frac+strings.Repeat("0", exponent-len(frac)), 10, 64)
	}
	if err != nil {
		return 0, &ParseError{Input: input, Reason: "number out of range", Err: err}
	}
	if negative {
		val = -val
	}
	return val, nil
}

func roundDigits(whole, frac string, exponent int) (int64, error) {
	d, err := decimal.NewFromString(whole + "." + frac)
	if err != nil {
		return 0, err
	}
	return toScaled(d, exponent)
}
