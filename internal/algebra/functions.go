package algebra

import (
	"math"
	"slices"
	"strings"
)

// Function is a named unary function known to the calculator.
type Function struct {
	Name        string
	Description string

	// Evaluate computes the numeric value; nil when the function has no
	// numeric form.
	Evaluate func(v float64) float64

	// Derivative builds f'(arg) for the undifferentiated argument; nil when no
	// rule is known.
	Derivative func(arg *Expression) *Expression
}

// FunctionRegistry maps function names to their definitions. It is built once
// and only read afterwards.
type FunctionRegistry struct {
	functions map[string]*Function
}

var builtins = newBuiltinRegistry()

// Builtins returns the registry used for differentiation and evaluation.
func Builtins() *FunctionRegistry {
	return builtins
}

func newBuiltinRegistry() *FunctionRegistry {
	fr := &FunctionRegistry{functions: make(map[string]*Function)}

	fr.register(&Function{
		Name:        "sin",
		Description: "Sine of the argument in radians.",
		Evaluate:    math.Sin,
		Derivative: func(arg *Expression) *Expression {
			return newCall("cos", arg)
		},
	})
	fr.register(&Function{
		Name:        "cos",
		Description: "Cosine of the argument in radians.",
		Evaluate:    math.Cos,
		Derivative: func(arg *Expression) *Expression {
			return Invert(newCall("sin", arg))
		},
	})
	fr.register(&Function{
		Name:        "tan",
		Description: "Tangent of the argument in radians.",
		Evaluate:    math.Tan,
		Derivative: func(arg *Expression) *Expression {
			return Divide(One(), Pow(newCall("cos", arg), Number(2)))
		},
	})
	fr.register(&Function{
		Name:        "ln",
		Description: "Natural logarithm.",
		Evaluate:    math.Log,
		Derivative: func(arg *Expression) *Expression {
			return Divide(One(), arg)
		},
	})
	fr.register(&Function{
		Name:        "exp",
		Description: "Natural exponential e^arg.",
		Evaluate:    math.Exp,
		Derivative: func(arg *Expression) *Expression {
			return newCall("exp", arg)
		},
	})
	fr.register(&Function{
		Name:        "sqrt",
		Description: "Principal square root.",
		Evaluate:    math.Sqrt,
		Derivative: func(arg *Expression) *Expression {
			return Divide(Number(0.5), newCall("sqrt", arg))
		},
	})
	// evaluate only
	fr.register(&Function{
		Name:        "floor",
		Description: "Largest integer not greater than the argument.",
		Evaluate:    math.Floor,
	})

	return fr
}

func (fr *FunctionRegistry) register(fn *Function) {
	fr.functions[fn.Name] = fn
}

// Lookup returns the definition of name or a CalcError when it is unknown.
func (fr *FunctionRegistry) Lookup(name string) (*Function, error) {
	fn, exists := fr.functions[name]
	if !exists {
		return nil, calcErrorf("function %q is not defined", name)
	}
	return fn, nil
}

// List returns every registered function ordered by name.
func (fr *FunctionRegistry) List() []*Function {
	out := make([]*Function, 0, len(fr.functions))
	for _, fn := range fr.functions {
		out = append(out, fn)
	}
	slices.SortFunc(out, func(a, b *Function) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// DerivativeText renders f'(x), or "" when the function has no rule.
func (fn *Function) DerivativeText() string {
	if fn.Derivative == nil {
		return ""
	}
	return fn.Derivative(Letter(VariableName)).String()
}
