// Package expr evaluates the symbolic gate parameters found in serial circuits.
//
// Parameters are written by symengine, which spells exponentiation as "**" and the
// circle constant as "pi". Both are rewritten before parsing so that the grammar only
// has to know about the "^" operator and the zero-argument function pi().
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fillay12321/qsim/quest/serial"
)

var (
	// ErrNoParams is returned when a command carries no parameter list at all.
	ErrNoParams = errors.New("operation has no parameters")

	// ErrParamIndex is returned when the requested parameter does not exist.
	ErrParamIndex = errors.New("parameter index out of range")
)

// ParseError describes a malformed parameter expression.
type ParseError struct {
	Expr string // expression after rewriting
	Pos  int    // byte offset of the offending token
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid expression %q at offset %d: %s", e.Expr, e.Pos, e.Msg)
}

// Rewrite applies the symengine notation fixes: "**" becomes "^" and "pi" becomes "pi()".
func Rewrite(s string) string {
	s = strings.ReplaceAll(s, "**", "^")
	return strings.ReplaceAll(s, "pi", "pi()")
}

// Eval rewrites and evaluates a single expression.
func Eval(s string) (float64, error) {
	p := &parser{src: Rewrite(s)}
	return p.parse()
}

// Evaluator evaluates command parameters. It keeps a small cache of already
// evaluated strings since chemistry circuits repeat the same angles many times.
type Evaluator struct {
	cache map[string]float64
}

// NewEvaluator creates an evaluator with an empty namespace.
func NewEvaluator() *Evaluator {
	return &Evaluator{cache: make(map[string]float64)}
}

// EvalParam evaluates parameter index of the command's operation.
func (e *Evaluator) EvalParam(cmd *serial.Command, index int) (float64, error) {
	params := cmd.Op.Params
	if params == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoParams, cmd.Op.Type)
	}
	if index < 0 || index >= len(params) {
		return 0, fmt.Errorf("%w: %s has %d, want index %d", ErrParamIndex, cmd.Op.Type, len(params), index)
	}
	param := params[index]
	if v, ok := e.cache[param]; ok {
		return v, nil
	}
	v, err := Eval(param)
	if err != nil {
		return 0, err
	}
	e.cache[param] = v
	return v, nil
}

// parser is a recursive-descent parser that evaluates while it parses.
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("+" | "-") unary | power
//	power  = atom [ "^" unary ]
//	atom   = number | "pi" "(" ")" | "(" expr ")"
type parser struct {
	src string
	pos int
}

func (p *parser) parse() (float64, error) {
	p.skipSpace()
	if p.pos == len(p.src) {
		return 0, p.errorf("empty expression")
	}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	return v, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Expr: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// peek returns the next non-space byte, or 0 at the end of input.
func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos == len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left = left + right
		case '-':
			p.pos++
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left = left - right
		default:
			return left, nil
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.unary()
			if err != nil {
				return 0, err
			}
			left = left * right
		case '/':
			p.pos++
			right, err := p.unary()
			if err != nil {
				return 0, err
			}
			left = left / right
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		return -v, err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (float64, error) {
	base, err := p.atom()
	if err != nil {
		return 0, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	// Right associative: a^b^c == a^(b^c), and the exponent may carry a sign.
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) atom() (float64, error) {
	c := p.peek()
	switch {
	case c == 0:
		return 0, p.errorf("unexpected end of expression")
	case c == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case isDigit(c) || c == '.':
		return p.number()
	case isLetter(c):
		return p.call()
	}
	return 0, p.errorf("unexpected %q", c)
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	// Optional exponent, only consumed if it is well formed.
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		i := p.pos + 1
		if i < len(p.src) && (p.src[i] == '+' || p.src[i] == '-') {
			i++
		}
		if i < len(p.src) && isDigit(p.src[i]) {
			for i < len(p.src) && isDigit(p.src[i]) {
				i++
			}
			p.pos = i
		}
	}
	lit := p.src[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.pos = start
		return 0, p.errorf("malformed number %q", lit)
	}
	return v, nil
}

func (p *parser) call() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && (isLetter(p.src[p.pos]) || isDigit(p.src[p.pos]) || p.src[p.pos] == '_') {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name != "pi" {
		p.pos = start
		return 0, p.errorf("unknown symbol %q", name)
	}
	if p.peek() != '(' {
		return 0, p.errorf("expected ( after %s", name)
	}
	p.pos++
	if p.peek() != ')' {
		return 0, p.errorf("%s takes no arguments", name)
	}
	p.pos++
	return math.Pi, nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
