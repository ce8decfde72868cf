package algebra

// Derivative returns d/dx of e. The result is computed once per node and
// reused by later calls.
func (e *Expression) Derivative() (*Expression, error) {
	return e.derivative.load(e.differentiate)
}

// NthDerivative returns the first n derivatives of e in order. It returns
// nothing for n < 1.
func (e *Expression) NthDerivative(n int) ([]*Expression, error) {
	if n < 1 {
		return nil, nil
	}
	out := make([]*Expression, 0, n)
	current := e
	for range n {
		next, err := current.Derivative()
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		current = next
	}
	return out, nil
}

func (e *Expression) differentiate() (*Expression, error) {
	switch e.kind {
	case KindTerm:
		if e.IsDatum() {
			return Zero(), nil
		}
		return Multiply(Number(e.degree), NewTerm(e.coef, e.degree-1)), nil
	case KindCall:
		du, err := e.left.Derivative()
		if err != nil {
			return nil, err
		}
		outer, err := e.argDerivative.load(e.outerDerivative)
		if err != nil {
			return nil, err
		}
		return Multiply(du, outer), nil
	}

	u, v := e.left, e.right
	switch e.op {
	case "^":
		return e.powerDerivative()
	case "log":
		return Divide(Ln(u), Ln(v)).Derivative()
	case "+", "-", "*", "/":
	default:
		return nil, calcErrorf("derivative of operation %q is not defined", e.op)
	}

	du, err := u.Derivative()
	if err != nil {
		return nil, err
	}
	dv, err := v.Derivative()
	if err != nil {
		return nil, err
	}

	switch e.op {
	case "+":
		return Plus(du, dv), nil
	case "-":
		return Minus(du, dv), nil
	case "*":
		return Plus(Multiply(v, du), Multiply(u, dv)), nil
	}
	return Divide(Minus(Multiply(v, du), Multiply(u, dv)), Pow(v, Number(2))), nil
}

// powerDerivative differentiates u^v, picking the power rule when only the
// base depends on x and the exponential rule otherwise.
func (e *Expression) powerDerivative() (*Expression, error) {
	u, v := e.left, e.right
	baseDatum, expDatum := u.IsDatum(), v.IsDatum()

	if baseDatum && expDatum {
		return Zero(), nil
	}
	if expDatum {
		du, err := u.Derivative()
		if err != nil {
			return nil, err
		}
		return Multiply(Multiply(v, du), Pow(u, Minus(v, One()))), nil
	}

	dv, err := v.Derivative()
	if err != nil {
		return nil, err
	}
	if baseDatum {
		return Multiply(Multiply(e, dv), Ln(u)), nil
	}

	du, err := u.Derivative()
	if err != nil {
		return nil, err
	}
	return Multiply(e, Plus(Multiply(dv, Ln(u)), Divide(Multiply(v, du), u))), nil
}

// outerDerivative is f'(arg) for a call f[arg].
func (e *Expression) outerDerivative() (*Expression, error) {
	fn, err := builtins.Lookup(e.op)
	if err != nil {
		return nil, err
	}
	if fn.Derivative == nil {
		return nil, calcErrorf("derivative of function %q is not defined", e.op)
	}
	return fn.Derivative(e.left), nil
}
