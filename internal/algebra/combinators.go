package algebra

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Plus returns the normalized sum a+b. Sums are kept as one flat chain:
// similar Terms are folded wherever they occur in either operand, zero Terms
// vanish, and the addends are ordered canonically (Terms by descending degree,
// then the remaining addends by their rendering).
func Plus(a, b *Expression) *Expression {
	switch {
	case a.isZero():
		return b
	case b.isZero():
		return a
	case a.similar(b):
		if folded := fold(a, b); folded.coef.finite() {
			return folded
		}
	}

	return sum(addends(b, addends(a, nil)))
}

// Minus returns a-b.
func Minus(a, b *Expression) *Expression {
	return Plus(a, Invert(b))
}

// Invert returns -a.
func Invert(a *Expression) *Expression {
	return Multiply(a, Number(-1))
}

func addends(e *Expression, out []*Expression) []*Expression {
	if e.kind == KindBinary && e.op == "+" {
		return addends(e.right, addends(e.left, out))
	}
	return append(out, e)
}

func sum(items []*Expression) *Expression {
	var terms, others []*Expression
	for _, item := range items {
		if item.kind != KindTerm {
			others = append(others, item)
			continue
		}
		if item.isZero() {
			continue
		}

		i := slices.IndexFunc(terms, item.similar)
		if i < 0 {
			terms = append(terms, item)
			continue
		}
		folded := fold(terms[i], item)
		switch {
		case !folded.coef.finite():
			terms = append(terms, item)
		case folded.isZero():
			terms = slices.Delete(terms, i, i+1)
		default:
			terms[i] = folded
		}
	}

	slices.SortStableFunc(terms, compareTerms)
	sortByText(others)
	return chain("+", append(terms, others...))
}

// fold sums two similar Terms.
func fold(a, b *Expression) *Expression {
	return NewTerm(NewCoefficient(a.coef.num+b.coef.num, a.coef.datum), a.degree)
}

// compareTerms orders addends by descending degree, then parameterized before
// pure constants, then by parameter signature.
func compareTerms(a, b *Expression) int {
	switch {
	case a.degree != b.degree:
		if a.degree > b.degree {
			return -1
		}
		return 1
	case a.coef.IsConstant() != b.coef.IsConstant():
		if b.coef.IsConstant() {
			return -1
		}
		return 1
	}
	return strings.Compare(a.coef.signature(), b.coef.signature())
}

func sortByText(items []*Expression) {
	if len(items) < 2 {
		return
	}
	keys := make(map[*Expression]string, len(items))
	for _, item := range items {
		keys[item] = item.String()
	}
	slices.SortStableFunc(items, func(a, b *Expression) int {
		return strings.Compare(keys[a], keys[b])
	})
}

// chain nests items left to right under op. An empty chain is zero.
func chain(op string, items []*Expression) *Expression {
	if len(items) == 0 {
		return Zero()
	}
	acc := items[0]
	for _, item := range items[1:] {
		acc = newBinary(op, acc, item)
	}
	return acc
}

// Multiply returns the normalized product a*b.
func Multiply(a, b *Expression) *Expression {
	return product([]factor{{expr: a}, {expr: b}})
}

// Divide returns the normalized quotient a/b.
func Divide(a, b *Expression) *Expression {
	return product([]factor{{expr: a}, {expr: b, denominator: true}})
}

type factor struct {
	expr        *Expression
	denominator bool
}

// product flattens a chain of * and / into numerator and denominator factors.
// Every Term factor is folded into a single leading Term (Term denominators are
// inverted into it). A Term whose fold would overflow stays a separate factor,
// and a zero Term denominator replaces the whole denominator. The other factors
// are chained in canonical order.
func product(factors []factor) *Expression {
	var nums, dens []*Expression
	var terms []factor
	var zero *Expression

	var walk func(e *Expression, den bool)
	walk = func(e *Expression, den bool) {
		switch {
		case e.kind == KindBinary && e.op == "*":
			walk(e.left, den)
			walk(e.right, den)
		case e.kind == KindBinary && e.op == "/":
			walk(e.left, den)
			walk(e.right, !den)
		case e.kind == KindTerm && den && e.isZero():
			zero = e
		case e.kind == KindTerm:
			terms = append(terms, factor{expr: e, denominator: den})
		case den:
			dens = append(dens, e)
		default:
			nums = append(nums, e)
		}
	}
	for _, f := range factors {
		walk(f.expr, f.denominator)
	}

	lead, rest := foldTerms(terms)
	for _, f := range rest {
		if f.denominator {
			dens = append(dens, f.expr)
		} else {
			nums = append(nums, f.expr)
		}
	}

	if lead.isZero() {
		return Zero()
	}
	if zero != nil {
		dens = []*Expression{zero}
	}

	sortByText(nums)
	sortByText(dens)

	numerator := lead
	if len(nums) > 0 {
		numerator = chain("*", nums)
		if !lead.isOne() {
			numerator = newBinary("*", lead, numerator)
		}
	}
	if len(dens) == 0 {
		return numerator
	}
	return newBinary("/", numerator, chain("*", dens))
}

// foldTerms multiplies Term factors into one Term. Factors that would make the
// scalar overflow are retried after the others and returned if they still do.
func foldTerms(terms []factor) (*Expression, []factor) {
	lead := One()
	for len(terms) > 0 {
		var rest []factor
		for _, f := range terms {
			c, degree := lead.coef.Multiply(f.expr.coef), lead.degree+f.expr.degree
			if f.denominator {
				c, degree = lead.coef.Divide(f.expr.coef), lead.degree-f.expr.degree
			}
			if !c.finite() {
				rest = append(rest, f)
				continue
			}
			lead = NewTerm(c, degree)
		}
		if len(rest) == len(terms) {
			return lead, rest
		}
		terms = rest
	}
	return lead, nil
}

// Pow returns the normalized power a^b.
func Pow(a, b *Expression) *Expression {
	k, constant := b.scalar()
	switch {
	case constant && k == 0:
		return One()
	case a.isZero():
		return Zero()
	case a.isOne():
		return One()
	case constant && k == 1:
		return a
	case constant && a.kind == KindTerm:
		c := a.coef.Pow(k)
		// (-2)^0.5 and overflow stay symbolic
		if !math.IsNaN(c.num) && !math.IsInf(c.num, 0) {
			return NewTerm(c, a.degree*k)
		}
	}
	return newBinary("^", a, b)
}

// Log returns the logarithm of a to base b.
func Log(a, b *Expression) *Expression {
	return newBinary("log", a, b)
}

// Ln returns the natural logarithm of a. It is never reduced, even for
// constant arguments.
func Ln(a *Expression) *Expression {
	return newCall("ln", a)
}

// Apply builds a named function application: name[arg] with one argument,
// name[a,b] with two. The names log and pow map to their combinators.
func Apply(name string, args ...*Expression) (*Expression, error) {
	switch len(args) {
	case 1:
		if name == "ln" {
			return Ln(args[0]), nil
		}
		return newCall(name, args[0]), nil
	case 2:
		switch name {
		case "log":
			return Log(args[0], args[1]), nil
		case "pow":
			return Pow(args[0], args[1]), nil
		}
		return newBinary(name, args[0], args[1]), nil
	}
	return nil, fmt.Errorf("function %s takes one or two arguments, got %d", name, len(args))
}

func (e *Expression) Plus(b *Expression) *Expression { return Plus(e, b) }

func (e *Expression) Minus(b *Expression) *Expression { return Minus(e, b) }

func (e *Expression) Multiply(b *Expression) *Expression { return Multiply(e, b) }

func (e *Expression) Divide(b *Expression) *Expression { return Divide(e, b) }

func (e *Expression) Pow(b *Expression) *Expression { return Pow(e, b) }

func (e *Expression) Invert() *Expression { return Invert(e) }
