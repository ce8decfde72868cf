package parser

import (
	"fmt"

	"github.com/lacquerai/deriv/internal/algebra"
)

// operatorSpec holds the binding strength of an operator on the operator
// stack. "*." is implicit multiplication, "+." and "-." are unary signs.
type operatorSpec struct {
	priority   int
	rightAssoc bool
	combine    func(a, b *algebra.Expression) *algebra.Expression
}

var operatorSpecs = map[string]operatorSpec{
	"(":  {priority: 1},
	"+":  {priority: 2, combine: algebra.Plus},
	"-":  {priority: 2, combine: algebra.Minus},
	"*":  {priority: 3, combine: algebra.Multiply},
	"/":  {priority: 3, combine: algebra.Divide},
	"*.": {priority: 4, combine: algebra.Multiply},
	"^":  {priority: 5, rightAssoc: true, combine: algebra.Pow},
	"+.": {priority: 9, combine: algebra.Plus},
	"-.": {priority: 9, combine: algebra.Minus},
}

// stacks is the operand/operator state of one precedence pass.
type stacks struct {
	p         *parser
	operands  []*algebra.Expression
	operators []StackOperator
}

func (s *stacks) top() (StackOperator, bool) {
	if len(s.operators) == 0 {
		return StackOperator{}, false
	}
	return s.operators[len(s.operators)-1], true
}

// pushOperator applies every pending operator that binds at least as tightly
// (strictly tighter for right-associative ones) and then pushes op.
func (s *stacks) pushOperator(op string, pos int) error {
	incoming := operatorSpecs[op]
	for {
		top, ok := s.top()
		if !ok || top.Op == "(" {
			break
		}
		pending := operatorSpecs[top.Op]
		if pending.rightAssoc && pending.priority <= incoming.priority {
			break
		}
		if !pending.rightAssoc && pending.priority < incoming.priority {
			break
		}
		if err := s.apply(); err != nil {
			return err
		}
	}
	s.operators = append(s.operators, StackOperator{Op: op, Offset: pos})
	return nil
}

// signAllowed reports whether a unary sign may start an operand here: at the
// start of the input, after '(' or after '*', '/' and '^'.
func (s *stacks) signAllowed() bool {
	top, ok := s.top()
	if !ok {
		return len(s.operands) == 0
	}
	switch top.Op {
	case "(", "*", "/", "^":
		return true
	}
	return false
}

func (s *stacks) closeGroup(pos int) error {
	for {
		top, ok := s.top()
		if !ok {
			return s.fail("no matching left bracket", pos)
		}
		if top.Op == "(" {
			s.operators = s.operators[:len(s.operators)-1]
			return nil
		}
		if err := s.apply(); err != nil {
			return err
		}
	}
}

func (s *stacks) apply() error {
	op := s.operators[len(s.operators)-1]
	s.operators = s.operators[:len(s.operators)-1]

	if len(s.operands) < 2 {
		return s.fail(fmt.Sprintf("missing operand for %s", op.Op[:1]), op.Offset)
	}
	n := len(s.operands)
	a, b := s.operands[n-2], s.operands[n-1]
	s.operands = append(s.operands[:n-2], operatorSpecs[op.Op].combine(a, b))
	return nil
}

// fail builds a ParseError carrying a snapshot of both stacks.
func (s *stacks) fail(message string, pos int) *ParseError {
	err := s.p.fail(message, pos)
	for _, operand := range s.operands {
		err.Operands = append(err.Operands, operand.String())
	}
	err.Operators = append(err.Operators, s.operators...)
	return err
}
