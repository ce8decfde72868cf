package algebra

import (
	"regexp"
)

const (
	prioritySum      = 2
	priorityProduct  = 3
	priorityImplicit = 4
	priorityPower    = 5
	priorityNone     = 100
)

var numberPattern = regexp.MustCompile(`^(\.\d+|\d+(\.\d*)?)([eE][+\-]?\d+)?`)

// MatchNumber returns the length of the number literal at the start of s, or
// 0 when s does not start with one.
func MatchNumber(s string) int {
	loc := numberPattern.FindStringIndex(s)
	if loc == nil {
		return 0
	}
	return loc[1]
}

// IsOperator reports whether op is one of the infix operators.
func IsOperator(op string) bool {
	switch op {
	case "+", "-", "*", "/", "^":
		return true
	}
	return false
}

func operatorPriority(op string) int {
	switch op {
	case "+", "-":
		return prioritySum
	case "*", "/":
		return priorityProduct
	case "^":
		return priorityPower
	}
	return priorityNone
}

// String renders e as infix text with the fewest parentheses that parse back
// to the same tree.
func (e *Expression) String() string {
	if s := e.text.Load(); s != nil {
		return *s
	}
	s := e.render()
	e.text.Store(&s)
	return s
}

func (e *Expression) render() string {
	switch e.kind {
	case KindTerm:
		return e.renderTerm()
	case KindCall:
		return e.op + "[" + e.left.String() + "]"
	}

	a, b := e.left.String(), e.right.String()
	if !IsOperator(e.op) {
		return e.op + "[" + a + "," + b + "]"
	}

	if e.op == "*" && a == "-1" {
		if b[0] == '-' || b[0] == '+' {
			return "-(" + b + ")"
		}
		if lowest, caret := scanTopLevel(b); lowest <= prioritySum || caret {
			return "-(" + b + ")"
		}
		return "-" + b
	}

	if needBrackets(a, e.op, false) {
		a = "(" + a + ")"
	}
	if needBrackets(b, e.op, true) {
		b = "(" + b + ")"
	}

	if b[0] == '-' {
		switch e.op {
		case "+":
			return a + b
		case "-":
			return a + "+" + b[1:]
		}
	}
	return a + e.op + b
}

func (e *Expression) renderTerm() string {
	c := e.coef.String()
	switch {
	case e.degree == 0:
		return c
	case e.degree < 0:
		s := c + "/" + VariableName
		if e.degree != -1 {
			s += "^" + formatNumber(-e.degree)
		}
		return s
	}

	switch c {
	case "1":
		c = ""
	case "-1":
		if e.degree == 1 {
			c = "-"
		}
	}
	s := c + VariableName
	if e.degree != 1 {
		s += "^" + formatNumber(e.degree)
	}
	return s
}

// needBrackets decides whether an operand rendered as s must be grouped when
// placed on one side of op.
func needBrackets(s, op string, right bool) bool {
	if op == "^" && !right && s[0] == '-' {
		return true
	}

	lowest, _ := scanTopLevel(s)
	parent := operatorPriority(op)
	switch {
	case lowest < parent:
		return true
	case lowest > parent:
		return false
	}

	switch op {
	case "^":
		return true
	case "-", "/":
		return right
	}
	return false
}

// scanTopLevel returns the lowest priority among the binary operators of s
// outside any brackets, counting juxtaposed operands as implicit
// multiplication, and whether a ^ occurs at that level. Signs in operand
// position are unary and ignored.
func scanTopLevel(s string) (lowest int, caret bool) {
	lowest = priorityNone
	depth := 0
	operand := false

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '(' || c == '[':
			if depth == 0 && operand && c == '(' {
				lowest = min(lowest, priorityImplicit)
			}
			depth++
			operand = false
			i++
			continue
		case c == ')' || c == ']':
			depth--
			operand = true
			i++
			continue
		case depth > 0:
			i++
			continue
		}

		switch {
		case isDigit(c) || c == '.':
			if operand {
				lowest = min(lowest, priorityImplicit)
			}
			i += max(MatchNumber(s[i:]), 1)
			operand = true
		case isLetter(c):
			if operand {
				lowest = min(lowest, priorityImplicit)
			}
			j := i + 1
			for j < len(s) && (isLetter(s[j]) || isDigit(s[j])) {
				j++
			}
			if j < len(s) && s[j] == '[' {
				i = j
				operand = false
				continue
			}
			i++
			operand = true
		case c == '+' || c == '-':
			if operand {
				lowest = min(lowest, prioritySum)
			}
			operand = false
			i++
		case c == '*' || c == '/':
			lowest = min(lowest, priorityProduct)
			operand = false
			i++
		case c == '^':
			lowest = min(lowest, priorityPower)
			caret = true
			operand = false
			i++
		default:
			operand = false
			i++
		}
	}
	return lowest, caret
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
