package algebra

import (
	"sync/atomic"
)

// VariableName is the differentiation variable. Every other letter is an
// opaque symbolic parameter.
const VariableName = "x"

// Kind identifies which variant an Expression holds.
type Kind int

const (
	KindTerm Kind = iota
	KindBinary
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindTerm:
		return "term"
	case KindBinary:
		return "binary"
	case KindCall:
		return "call"
	default:
		return "unknown"
	}
}

// Expression is an immutable node of an expression tree. A Term is
// coefficient*x^degree, a binary node applies an operator (or a named binary
// function such as log) to two operands, and a call applies a named unary
// function to one argument.
//
// Trees are always in normal form: they are built only by the leaf
// constructors and the combinators in this package.
type Expression struct {
	kind Kind

	coef   Coefficient
	degree float64

	// op is the operator of a binary node or the function name of a call;
	// left doubles as the argument of a call.
	op          string
	left, right *Expression

	text          atomic.Pointer[string]
	derivative    memo
	argDerivative memo
}

// memo is a write-once cell. Concurrent first reads may both compute; the
// first stored result wins and the other is discarded.
type memo struct {
	cell atomic.Pointer[memoResult]
}

type memoResult struct {
	expr *Expression
	err  error
}

func (m *memo) load(compute func() (*Expression, error)) (*Expression, error) {
	if r := m.cell.Load(); r != nil {
		return r.expr, r.err
	}

	expr, err := compute()
	m.cell.CompareAndSwap(nil, &memoResult{expr: expr, err: err})
	r := m.cell.Load()
	return r.expr, r.err
}

// NewTerm returns coefficient*x^degree. The degree of a zero Term is 0.
func NewTerm(c Coefficient, degree float64) *Expression {
	if c.IsZero() {
		degree = 0
	}
	return &Expression{kind: KindTerm, coef: c, degree: degree}
}

// Number returns the constant Term v.
func Number(v float64) *Expression {
	return NewTerm(Scalar(v), 0)
}

// Letter returns the Term for a single letter: x for the differentiation
// variable, a parameter otherwise.
func Letter(name string) *Expression {
	if name == VariableName {
		return NewTerm(Scalar(1), 1)
	}
	return NewTerm(Parameter(name), 0)
}

func Zero() *Expression { return Number(0) }

func One() *Expression { return Number(1) }

func newBinary(op string, left, right *Expression) *Expression {
	return &Expression{kind: KindBinary, op: op, left: left, right: right}
}

func newCall(name string, arg *Expression) *Expression {
	return &Expression{kind: KindCall, op: name, left: arg}
}

func (e *Expression) Kind() Kind { return e.kind }

// Coefficient returns the coefficient of a Term.
func (e *Expression) Coefficient() Coefficient { return e.coef }

// Degree returns the power of x of a Term.
func (e *Expression) Degree() float64 { return e.degree }

// Op returns the operator of a binary node or the function name of a call.
func (e *Expression) Op() string { return e.op }

// Operands returns the children of a node: two for binary nodes, the
// argument for calls, none for Terms.
func (e *Expression) Operands() []*Expression {
	switch e.kind {
	case KindBinary:
		return []*Expression{e.left, e.right}
	case KindCall:
		return []*Expression{e.left}
	}
	return nil
}

// IsDatum reports whether e does not depend on x.
func (e *Expression) IsDatum() bool {
	switch e.kind {
	case KindTerm:
		return e.degree == 0
	case KindBinary:
		return e.left.IsDatum() && e.right.IsDatum()
	}
	return e.left.IsDatum()
}

// IsConstant reports whether e depends neither on x nor on any parameter.
func (e *Expression) IsConstant() bool {
	switch e.kind {
	case KindTerm:
		return e.degree == 0 && e.coef.IsConstant()
	case KindBinary:
		return e.left.IsConstant() && e.right.IsConstant()
	}
	return e.left.IsConstant()
}

func (e *Expression) isZero() bool {
	return e.kind == KindTerm && e.coef.IsZero()
}

func (e *Expression) isOne() bool {
	return e.kind == KindTerm && e.degree == 0 && e.coef.IsOne()
}

// scalar returns the value of a constant Term.
func (e *Expression) scalar() (float64, bool) {
	if e.kind != KindTerm || e.degree != 0 || !e.coef.IsConstant() {
		return 0, false
	}
	return e.coef.num, true
}

// similar reports whether two Terms fold into one under addition.
func (e *Expression) similar(other *Expression) bool {
	return e.kind == KindTerm && other.kind == KindTerm &&
		e.degree == other.degree && e.coef.sameSignature(other.coef)
}

// Equal reports whether two trees have the same shape and values.
func (e *Expression) Equal(other *Expression) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil || e.kind != other.kind || e.op != other.op {
		return false
	}

	switch e.kind {
	case KindTerm:
		return e.degree == other.degree && e.coef.num == other.coef.num && e.coef.sameSignature(other.coef)
	case KindBinary:
		return e.left.Equal(other.left) && e.right.Equal(other.right)
	}
	return e.left.Equal(other.left)
}
