package amount

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	maxScaled = decimal.NewFromInt(math.MaxInt64)
	minScaled = decimal.NewFromInt(math.MinInt64)
)

func toScaled(d decimal.Decimal, exponent int) (int64, error) {
	scaled := d.Shift(int32(exponent)).Round(0)
	if scaled.GreaterThan(maxScaled) || scaled.LessThan(minScaled) {
		return 0, fmt.Errorf("%s does not fit in an amount", d)
	}
	return scaled.IntPart(), nil
}

// Evaluate computes an arithmetic expression over + - * / and parentheses
// and returns the result scaled to exponent. The first operand is read like
// a single amount and may carry thousands grouping; the others are plain
// decimals using a period or a comma. Intermediate results keep full
// precision and are rounded once at the end.
func Evaluate(expr string, exponent int) (int64, error) {
	p := &exprParser{input: expr, exponent: exponent, first: true}

	result, err := p.parseExpr(0)
	if err != nil {
		return 0, &ParseError{Input: expr, Reason: "invalid expression", Err: err}
	}
	if !p.isAtEnd() {
		return 0, &ParseError{Input: expr, Reason: fmt.Sprintf("unexpected %q at position %d", p.peek(), p.pos)}
	}

	val, err := toScaled(result, exponent)
	if err != nil {
		return 0, &ParseError{Input: expr, Reason: "number out of range", Err: err}
	}
	return val, nil
}

type exprParser struct {
	input    string
	pos      int
	exponent int
	first    bool
}

func (p *exprParser) skipWhitespace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) isAtEnd() bool {
	p.skipWhitespace()
	return p.pos >= len(p.input)
}

func (p *exprParser) peek() byte {
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) advance() byte {
	ch := p.peek()
	if ch != 0 {
		p.pos++
	}
	return ch
}

// parseOperand reads a run of digits and separators. The first operand
// also takes the grouping separators of ParseNumber, spaces included, when
// a digit follows them.
func (p *exprParser) parseOperand() (decimal.Decimal, error) {
	p.skipWhitespace()
	start := p.pos
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		switch {
		case isDigit(r) || r == '.' || r == ',' || r == '\'':
		case p.first && isSeparator(r) && p.pos+size < len(p.input) && isDigit(rune(p.input[p.pos+size])):
		default:
			return p.operand(start)
		}
		p.pos += size
	}
	return p.operand(start)
}

func (p *exprParser) operand(start int) (decimal.Decimal, error) {
	token := p.input[start:p.pos]
	if digitsOf(token) == "" {
		return decimal.Zero, fmt.Errorf("expected number at position %d", start)
	}

	if p.first {
		p.first = false
		val, err := ParseNumber(token, p.exponent, false)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.New(val, -int32(p.exponent)), nil
	}

	if strings.Count(token, ".")+strings.Count(token, ",") > 1 || strings.Contains(token, "'") {
		return decimal.Zero, fmt.Errorf("invalid number %q", token)
	}
	num, err := decimal.NewFromString(strings.Replace(token, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", token, err)
	}
	return num, nil
}

func (p *exprParser) parsePrimary() (decimal.Decimal, error) {
	switch p.peek() {
	case '(':
		p.advance()
		result, err := p.parseExpr(0)
		if err != nil {
			return decimal.Zero, err
		}
		if p.peek() != ')' {
			return decimal.Zero, fmt.Errorf("expected ')' at position %d", p.pos)
		}
		p.advance()
		return result, nil
	case '-':
		p.advance()
		operand, err := p.parsePrimary()
		if err != nil {
			return decimal.Zero, err
		}
		return operand.Neg(), nil
	}
	return p.parseOperand()
}

// parseExpr binds * and / tighter than + and -, evaluating equal
// precedence left to right.
func (p *exprParser) parseExpr(minPrec int) (decimal.Decimal, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		op := p.peek()
		prec := precedence(op)
		if prec == 0 || prec < minPrec {
			break
		}
		p.advance()

		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return decimal.Zero, err
		}
		if left, err = applyOp(left, op, right); err != nil {
			return decimal.Zero, err
		}
	}
	return left, nil
}

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	}
	return 0
}

func applyOp(left decimal.Decimal, op byte, right decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case '+':
		return left.Add(right), nil
	case '-':
		return left.Sub(right), nil
	case '*':
		return left.Mul(right), nil
	case '/':
		if right.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return left.Div(right), nil
	}
	return decimal.Zero, fmt.Errorf("unknown operator %q", op)
}
