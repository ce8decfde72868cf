package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/lacquerai/deriv/internal/algebra"
)

// unit is one significant character of the input, or a placeholder standing
// for a function call that has already been parsed. pos is always the offset
// in the original text, so errors raised inside function arguments point at
// the right character.
type unit struct {
	ch   byte
	pos  int
	expr *algebra.Expression
}

type units []unit

// String renders the units with placeholders as '@', keeping indexes aligned.
func (us units) String() string {
	var b strings.Builder
	b.Grow(len(us))
	for _, u := range us {
		if u.expr != nil {
			b.WriteByte('@')
			continue
		}
		b.WriteByte(u.ch)
	}
	return b.String()
}

type parser struct {
	source string
}

// Parse reads an infix expression in x. Whitespace is ignored, letters are
// single-character symbols, and name[a] or name[a,b] call a function.
// Failures are *ParseError values.
func Parse(text string) (*algebra.Expression, error) {
	p := &parser{source: text}

	us := p.strip()
	if len(us) == 0 {
		return nil, newParseError(text, "expression must not be empty", 0)
	}
	if err := p.validate(us); err != nil {
		return nil, err
	}
	return p.parse(us, len(text))
}

func (p *parser) strip() units {
	us := make(units, 0, len(p.source))
	for i := 0; i < len(p.source); i++ {
		switch c := p.source[i]; c {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			us = append(us, unit{ch: c, pos: i})
		}
	}
	return us
}

func (p *parser) fail(message string, pos int) *ParseError {
	return newParseError(p.source, message, pos)
}

// validate checks the character set, bracket nesting and decimal points
// before any structural parsing happens.
func (p *parser) validate(us units) error {
	for _, u := range us {
		if !isValid(u.ch) {
			r, _ := utf8.DecodeRuneInString(p.source[u.pos:])
			return p.fail(fmt.Sprintf("invalid character %q", r), u.pos)
		}
	}

	var open []unit
	for _, u := range us {
		switch u.ch {
		case '(', '[':
			open = append(open, u)
		case ')', ']':
			if len(open) == 0 {
				return p.fail("no matching left bracket", u.pos)
			}
			top := open[len(open)-1]
			if want := closing(top.ch); want != u.ch {
				return p.fail(fmt.Sprintf("unexpected %c (%q expected)", u.ch, string(want)), u.pos)
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return p.fail("no matching right bracket", open[len(open)-1].pos)
	}

	text := us.String()
	for i := 0; i < len(us); {
		c := us[i].ch
		if !isDigit(c) && c != '.' {
			i++
			continue
		}
		if c == '.' && i > 0 && isLetter(us[i-1].ch) {
			return p.fail("unexpected decimal point", us[i].pos)
		}
		n := algebra.MatchNumber(text[i:])
		if n == 0 {
			return p.fail("unexpected decimal point", us[i].pos)
		}
		i += n
		if i < len(us) && us[i].ch == '.' {
			return p.fail("unexpected decimal point", us[i].pos)
		}
	}
	return nil
}

// parse turns a run of units into an expression. end is the offset reported
// when the run ends too early.
func (p *parser) parse(us units, end int) (*algebra.Expression, error) {
	if len(us) == 0 {
		return nil, p.fail("unexpected end of expression (expected expression)", end)
	}

	us, err := p.substitute(us)
	if err != nil {
		return nil, err
	}

	s := &stacks{p: p}
	text := us.String()
	operand := false

	for i := 0; i < len(us); {
		u := us[i]
		switch {
		case u.expr != nil:
			if operand {
				if err := s.pushOperator("*.", u.pos); err != nil {
					return nil, err
				}
			}
			s.operands = append(s.operands, u.expr)
			operand = true
			i++

		case isDigit(u.ch) || u.ch == '.':
			n := algebra.MatchNumber(text[i:])
			literal := text[i : i+n]
			if operand {
				return nil, s.fail(fmt.Sprintf("unexpected number %s", literal), u.pos)
			}
			v, err := strconv.ParseFloat(literal, 64)
			if err != nil {
				return nil, s.fail(fmt.Sprintf("number %s is out of range", literal), u.pos)
			}
			s.operands = append(s.operands, algebra.Number(v))
			operand = true
			i += n

		case isLetter(u.ch):
			if operand {
				if err := s.pushOperator("*.", u.pos); err != nil {
					return nil, err
				}
			}
			s.operands = append(s.operands, algebra.Letter(string(u.ch)))
			operand = true
			i++

		case u.ch == '(':
			if operand {
				if err := s.pushOperator("*.", u.pos); err != nil {
					return nil, err
				}
			}
			s.operators = append(s.operators, StackOperator{Op: "(", Offset: u.pos})
			operand = false
			i++

		case u.ch == ')':
			if !operand {
				return nil, s.fail("unexpected ) (expected expression)", u.pos)
			}
			if err := s.closeGroup(u.pos); err != nil {
				return nil, err
			}
			i++

		case u.ch == '+' || u.ch == '-':
			op := string(u.ch)
			if !operand {
				if !s.signAllowed() {
					return nil, s.fail(fmt.Sprintf("unexpected operator %c", u.ch), u.pos)
				}
				s.operands = append(s.operands, algebra.Zero())
				op += "."
			}
			if err := s.pushOperator(op, u.pos); err != nil {
				return nil, err
			}
			operand = false
			i++

		case u.ch == '*' || u.ch == '/' || u.ch == '^':
			if !operand {
				return nil, s.fail(fmt.Sprintf("unexpected operator %c", u.ch), u.pos)
			}
			if err := s.pushOperator(string(u.ch), u.pos); err != nil {
				return nil, err
			}
			operand = false
			i++

		case u.ch == ',':
			return nil, s.fail("unexpected , (not in an argument list)", u.pos)

		default:
			return nil, s.fail(fmt.Sprintf("unexpected %c", u.ch), u.pos)
		}
	}

	if !operand {
		return nil, s.fail("unexpected end of expression (expected expression)", end)
	}
	for len(s.operators) > 0 {
		if err := s.apply(); err != nil {
			return nil, err
		}
	}
	if len(s.operands) != 1 {
		return nil, s.fail(fmt.Sprintf("%d operands left after parsing", len(s.operands)), end)
	}
	return s.operands[0], nil
}

// substitute replaces every outermost name[...] span with a placeholder that
// carries the parsed call.
func (p *parser) substitute(us units) (units, error) {
	out := make(units, 0, len(us))
	for i := 0; i < len(us); i++ {
		u := us[i]
		if u.ch != '[' || u.expr != nil {
			out = append(out, u)
			continue
		}

		start := len(out)
		for start > 0 && out[start-1].expr == nil && isAlnum(out[start-1].ch) {
			start--
		}
		for start < len(out) && !isLetter(out[start].ch) {
			start++
		}
		if start == len(out) {
			return nil, p.fail("missing function name before [", u.pos)
		}
		name := out[start:].String()

		closeAt := matchingBracket(us, i)
		args, err := p.arguments(name, us[i+1:closeAt], us[closeAt].pos)
		if err != nil {
			return nil, err
		}
		call, err := algebra.Apply(name, args...)
		if err != nil {
			return nil, p.fail(err.Error(), u.pos)
		}

		log.Debug().Str("function", name).Int("args", len(args)).Int("offset", out[start].pos).Msg("parsed function call")

		out = append(out[:start], unit{pos: out[start].pos, expr: call})
		i = closeAt
	}
	return out, nil
}

// arguments splits a function body on top-level commas and parses each part.
func (p *parser) arguments(name string, body units, closePos int) ([]*algebra.Expression, error) {
	if len(body) == 0 {
		return nil, p.fail(fmt.Sprintf("function %s called without arguments", name), closePos)
	}

	var parts []units
	var commas []int
	depth, last := 0, 0
	for j, u := range body {
		switch u.ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 && u.expr == nil {
				parts = append(parts, body[last:j])
				commas = append(commas, u.pos)
				last = j + 1
			}
		}
	}
	parts = append(parts, body[last:])
	if len(parts) > 2 {
		return nil, p.fail(fmt.Sprintf("function %s takes at most 2 arguments", name), commas[1])
	}

	args := make([]*algebra.Expression, 0, len(parts))
	for k, part := range parts {
		end := closePos
		if k < len(commas) {
			end = commas[k]
		}
		arg, err := p.parse(part, end)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func matchingBracket(us units, open int) int {
	depth := 0
	for i := open; i < len(us); i++ {
		switch us[i].ch {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(us) - 1
}

func closing(open byte) byte {
	if open == '(' {
		return ')'
	}
	return ']'
}

func isValid(c byte) bool {
	return isAlnum(c) || strings.IndexByte(".,+-*/^()[]", c) >= 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isAlnum(c byte) bool { return isLetter(c) || isDigit(c) }
