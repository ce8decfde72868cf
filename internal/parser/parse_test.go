package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacquerai/deriv/internal/algebra"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"sum of terms", "2x+3", "2x+3"},
		{"power of call", "sin[x]^2", "sin[x]^2"},
		{"implicit product folds", "2(3+4)", "14"},
		{"whitespace ignored", " 2 x +\t3 ", "2x+3"},
		{"leading sign", "-x", "-x"},
		{"sign after operator", "2*-3", "-6"},
		{"negative exponent", "2^-1", "0.5"},
		{"right associative power", "2^3^2", "512"},
		{"coefficient before call", "3sin[x]", "3*sin[x]"},
		{"parameters", "a x^2 b", "abx^2"},
		{"unary binds tightest", "-x^2", "x^2"},
		{"nested calls", "sin[cos[x]]", "sin[cos[x]]"},
		{"two argument call", "log[x, 2]", "log[x,2]"},
		{"pow rewrites", "pow[x,3]", "x^3"},
		{"unknown binary stays named", "max[x,2]", "max[x,2]"},
		{"decimal forms", ".5x+1.", "0.5x+1"},
		{"exponent literal", "1e3x", "1000x"},
		{"division folds into the coefficient", "x/(a b)", "a^-1b^-1x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}

	t.Run("structure", func(t *testing.T) {
		e, err := Parse("2x+3")
		require.NoError(t, err)
		assert.Equal(t, algebra.KindBinary, e.Kind())
		assert.Equal(t, "+", e.Op())

		e, err = Parse("sin[x]^2")
		require.NoError(t, err)
		require.Equal(t, "^", e.Op())
		operands := e.Operands()
		require.Len(t, operands, 2)
		assert.Equal(t, algebra.KindCall, operands[0].Kind())
		assert.Equal(t, "sin", operands[0].Op())
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		message string
		offset  int
	}{
		{"empty", "", "expression must not be empty", 0},
		{"blank", "   ", "expression must not be empty", 0},
		{"double sign", "2++3", "unexpected operator +", 2},
		{"offset counts whitespace", "2 ++3", "unexpected operator +", 3},
		{"unclosed call", "sin[x", "no matching right bracket", 3},
		{"stray closer", "(x+1))", "no matching left bracket", 5},
		{"mismatched closer", "(x]", `unexpected ] (")" expected)`, 2},
		{"double decimal point", "1..2", "unexpected decimal point", 2},
		{"decimal after letter", "x.5", "unexpected decimal point", 1},
		{"invalid character", "x+$", `invalid character '$'`, 2},
		{"invalid rune", "x+π", `invalid character 'π'`, 2},
		{"number after operand", "x2", "unexpected number 2", 1},
		{"no arguments", "sin[]", "function sin called without arguments", 4},
		{"too many arguments", "log[x,2,3]", "function log takes at most 2 arguments", 7},
		{"missing name", "[x]", "missing function name before [", 0},
		{"top level comma", "x,2", "unexpected , (not in an argument list)", 1},
		{"empty group", "()", "unexpected ) (expected expression)", 1},
		{"operator after caret", "x^*2", "unexpected operator *", 2},
		{"dangling operator", "x+", "unexpected end of expression (expected expression)", 2},
		{"error inside argument", "sin[x+]", "unexpected end of expression (expected expression)", 6},
		{"empty first argument", "log[,x]", "unexpected end of expression (expected expression)", 4},
		{"empty second argument", "log[x,]", "unexpected end of expression (expected expression)", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.message, parseErr.Message)
			assert.Equal(t, tt.offset, parseErr.Offset)
			assert.Equal(t, tt.offset+1, parseErr.Position.Column)
			assert.Equal(t, tt.in, parseErr.Source)
		})
	}

	t.Run("second line", func(t *testing.T) {
		_, err := Parse("x+1\n+*2")
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "unexpected operator *", parseErr.Message)
		assert.Equal(t, Position{Line: 2, Column: 2, Offset: 5}, parseErr.Position)
		assert.Contains(t, parseErr.Error(), "Parse error at 2:2:")
	})
}

// TestRoundTrip checks that rendered text parses back to the same tree and
// renders identically.
func TestRoundTrip(t *testing.T) {
	corpus := []string{
		"2x+3",
		"x^2+3x-7",
		"sin[x]^2",
		"-sin[x]^2",
		"-(x+1)",
		"x/(a*b)",
		"e^2x",
		"2e-3x",
		"(x+1)(x-1)",
		"x^x",
		"2^x*ln[2]",
		"1/x^2",
		"-x/3",
		"a^2b",
		"log[x+1,2]^3",
		"tan[x]/x",
		"(x+a)^(x-b)",
		"x^-2",
		"2^(1/x)",
		"x-sin[x]-cos[x]",
		"x/y/z",
		"exp[sin[x]]*cos[x]",
		"max[x,2]+1",
		"0.5/sqrt[x]",
		"3/(x*sin[x])",
		"1e200*1e200",
		"1e200*1e200*x",
		"1e200/1e-200",
	}

	check := func(t *testing.T, e *algebra.Expression) {
		t.Helper()
		text := e.String()
		again, err := Parse(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, again.String())
		assert.True(t, e.Equal(again), "%s reparsed as %s", text, again)
	}

	for _, in := range corpus {
		t.Run(in, func(t *testing.T) {
			e, err := Parse(in)
			require.NoError(t, err)
			check(t, e)

			d, err := e.Derivative()
			if err != nil {
				return
			}
			check(t, d)
		})
	}
}
