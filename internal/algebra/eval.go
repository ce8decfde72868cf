package algebra

import "math"

// Bindings assigns numeric values to symbolic parameters.
type Bindings map[string]float64

// Evaluate computes the value of e at x with the given parameter values.
func Evaluate(e *Expression, x float64, params Bindings) (float64, error) {
	switch e.kind {
	case KindTerm:
		v := e.coef.num
		for name, exp := range e.coef.datum {
			p, ok := params[name]
			if !ok {
				return 0, calcErrorf("parameter %q has no value", name)
			}
			v *= math.Pow(p, exp)
		}
		if e.degree != 0 {
			v *= math.Pow(x, e.degree)
		}
		return v, nil
	case KindCall:
		fn, err := builtins.Lookup(e.op)
		if err != nil {
			return 0, err
		}
		if fn.Evaluate == nil {
			return 0, calcErrorf("function %q cannot be evaluated", e.op)
		}
		arg, err := Evaluate(e.left, x, params)
		if err != nil {
			return 0, err
		}
		return fn.Evaluate(arg), nil
	}

	a, err := Evaluate(e.left, x, params)
	if err != nil {
		return 0, err
	}
	b, err := Evaluate(e.right, x, params)
	if err != nil {
		return 0, err
	}

	switch e.op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		return a / b, nil
	case "^":
		return math.Pow(a, b), nil
	case "log":
		return math.Log(a) / math.Log(b), nil
	}
	return 0, calcErrorf("operation %q cannot be evaluated", e.op)
}

// Evaluate is shorthand for the package-level Evaluate.
func (e *Expression) Evaluate(x float64, params Bindings) (float64, error) {
	return Evaluate(e, x, params)
}
