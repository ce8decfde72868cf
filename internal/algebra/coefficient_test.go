package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoefficient(t *testing.T) {
	t.Run("zero exponents are dropped", func(t *testing.T) {
		c := NewCoefficient(2, map[string]float64{"a": 0, "b": 1})
		assert.Equal(t, []string{"b"}, c.Names())
		assert.Equal(t, float64(0), c.Exponent("a"))
	})

	t.Run("zero has no parameters", func(t *testing.T) {
		c := NewCoefficient(0, map[string]float64{"a": 3})
		assert.True(t, c.IsZero())
		assert.True(t, c.IsConstant())
		assert.Empty(t, c.Names())
	})

	t.Run("multiply and divide merge exponents", func(t *testing.T) {
		a := NewCoefficient(3, map[string]float64{"a": 2, "b": 1})
		b := NewCoefficient(2, map[string]float64{"a": -2, "c": 1})

		product := a.Multiply(b)
		assert.Equal(t, float64(6), product.Num())
		assert.Equal(t, []string{"b", "c"}, product.Names())

		quotient := a.Divide(b)
		assert.Equal(t, 1.5, quotient.Num())
		assert.Equal(t, float64(4), quotient.Exponent("a"))
		assert.Equal(t, float64(-1), quotient.Exponent("c"))
	})

	t.Run("pow scales exponents", func(t *testing.T) {
		c := NewCoefficient(-2, map[string]float64{"a": 1.5}).Pow(2)
		assert.Equal(t, float64(4), c.Num())
		assert.Equal(t, float64(3), c.Exponent("a"))

		assert.True(t, Scalar(0).Pow(-1).IsZero())
		assert.True(t, Scalar(1).Pow(7).IsOne())
	})

	t.Run("similarity", func(t *testing.T) {
		a := NewCoefficient(2, map[string]float64{"a": 1})
		assert.True(t, a.IsSimilar(NewCoefficient(-5, map[string]float64{"a": 1})))
		assert.False(t, a.IsSimilar(NewCoefficient(2, map[string]float64{"a": 2})))
		assert.False(t, a.IsSimilar(Scalar(2)))
		assert.True(t, a.IsSimilar(Scalar(0)))
	})
}

func TestCoefficientString(t *testing.T) {
	tests := []struct {
		name string
		c    Coefficient
		want string
	}{
		{"integer", Scalar(3), "3"},
		{"negative zero", Scalar(-0.0), "0"},
		{"fraction", Scalar(0.25), "0.25"},
		{"tiny", Scalar(1e-7), "1e-07"},
		{"huge", Scalar(1e21), "1e+21"},
		{"unit parameter", Parameter("a"), "a"},
		{"negated parameter", NewCoefficient(-1, map[string]float64{"a": 1}), "-a"},
		{"negated power keeps the one", NewCoefficient(-1, map[string]float64{"a": 2}), "-1a^2"},
		{"sorted parameters", NewCoefficient(1, map[string]float64{"b": 1, "a": 2}), "a^2b"},
		{"negative exponent", NewCoefficient(0.5, map[string]float64{"a": -1}), "0.5a^-1"},
		{"e after a digit", NewCoefficient(2, map[string]float64{"e": 1}), "2*e"},
		{"e after an exponent", NewCoefficient(1, map[string]float64{"a": 2, "e": 1}), "a^2*e"},
		{"e first", NewCoefficient(1, map[string]float64{"e": 1, "f": 1}), "ef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.String())
		})
	}
}
