package algebra_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacquerai/deriv/internal/algebra"
	"github.com/lacquerai/deriv/internal/parser"
)

func mustParse(t *testing.T, text string) *algebra.Expression {
	t.Helper()
	e, err := parser.Parse(text)
	require.NoError(t, err, text)
	return e
}

func TestDerivative(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x^3", "3x^2"},
		{"sin[x]", "cos[x]"},
		{"x*sin[x]", "sin[x]+x*cos[x]"},
		{"1/x", "-1/x^2"},
		{"x^x", "(1+ln[x])*x^x"},
		{"cos[x]", "-sin[x]"},
		{"tan[x]", "1/cos[x]^2"},
		{"ln[x]", "1/x"},
		{"x^2+3x", "2x+3"},
		{"a*x^2", "2ax"},
		{"x^a", "a*x^(a-1)"},
		{"2^x", "2^x*ln[2]"},
		{"exp[2x]", "2*exp[2x]"},
		{"sqrt[x]", "0.5/sqrt[x]"},
		{"a", "0"},
		{"sin[a]^2", "0"},
		{"7", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := mustParse(t, tt.in).Derivative()
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDerivativeErrors(t *testing.T) {
	tests := []struct {
		in      string
		message string
	}{
		{"abs[x]", `function "abs" is not defined`},
		{"floor[x]", `derivative of function "floor" is not defined`},
		{"max[x,2]", `derivative of operation "max" is not defined`},
		{"x+sin[abs[x]]", `function "abs" is not defined`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := mustParse(t, tt.in).Derivative()
			require.Error(t, err)

			var calcErr *algebra.CalcError
			require.ErrorAs(t, err, &calcErr)
			assert.Equal(t, tt.message, calcErr.Message)
		})
	}

	t.Run("log is rewritten, never rejected", func(t *testing.T) {
		d, err := mustParse(t, "log[x,2]").Derivative()
		require.NoError(t, err)
		assert.NotEmpty(t, d.String())
	})
}

func TestDerivativeMemo(t *testing.T) {
	e := mustParse(t, "x*sin[x]^2")

	first, err := e.Derivative()
	require.NoError(t, err)
	second, err := e.Derivative()
	require.NoError(t, err)
	assert.Same(t, first, second)

	t.Run("concurrent readers agree", func(t *testing.T) {
		e := mustParse(t, "tan[x^2]*ln[x]")
		results := make([]string, 16)

		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				d, err := e.Derivative()
				if err == nil {
					results[i] = d.String()
				}
			}(i)
		}
		wg.Wait()

		for _, r := range results {
			assert.Equal(t, results[0], r)
		}
		assert.NotEmpty(t, results[0])
	})
}

func TestNthDerivative(t *testing.T) {
	ds, err := mustParse(t, "x^4").NthDerivative(5)
	require.NoError(t, err)

	var got []string
	for _, d := range ds {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"4x^3", "12x^2", "24x", "24", "0"}, got)

	_, err = mustParse(t, "x*abs[x]").NthDerivative(2)
	assert.Error(t, err)

	for _, n := range []int{0, -1} {
		ds, err := mustParse(t, "x^4").NthDerivative(n)
		require.NoError(t, err)
		assert.Empty(t, ds)
	}
}

func TestDerivativeOverflow(t *testing.T) {
	d, err := algebra.NewTerm(algebra.Scalar(1e308), 2).Derivative()
	require.NoError(t, err)
	assert.Equal(t, "2*1e+308x", d.String())
}

// TestDerivativeNumerically compares every symbolic derivative with a central
// finite difference.
func TestDerivativeNumerically(t *testing.T) {
	params := algebra.Bindings{"a": 1.5, "b": -2}
	const x0, h = 1.3, 1e-5

	inputs := []string{
		"x^3",
		"x*sin[x]",
		"1/x",
		"x^x",
		"sin[x]*cos[x]",
		"tan[x]/x",
		"ln[x^2+1]",
		"log[x,2]",
		"log[2,x]",
		"exp[sin[x]]",
		"sqrt[x^2+1]",
		"(x+1)^3/(x-2)",
		"a*x^2+b*x",
		"2^x",
		"x^a",
		"-x^2",
		"(x+a)^(x-b)",
		"sin[cos[tan[x]]]",
		"x/(a*b)",
		"3/(x*sin[x])",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			e := mustParse(t, in)
			d, err := e.Derivative()
			require.NoError(t, err)

			got, err := d.Evaluate(x0, params)
			require.NoError(t, err)

			up, err := e.Evaluate(x0+h, params)
			require.NoError(t, err)
			down, err := e.Evaluate(x0-h, params)
			require.NoError(t, err)
			want := (up - down) / (2 * h)

			assert.InDelta(t, want, got, 1e-4*math.Max(1, math.Abs(want)), "d/dx %s = %s", in, d)
		})
	}
}
