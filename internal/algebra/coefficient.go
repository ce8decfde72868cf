package algebra

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Coefficient is a monomial over symbolic parameters: num * Π name^exponent.
// The zero coefficient never carries parameters. Values are immutable.
type Coefficient struct {
	num   float64
	datum map[string]float64
}

// NewCoefficient builds a coefficient, dropping parameters with a zero exponent.
func NewCoefficient(num float64, datum map[string]float64) Coefficient {
	if num == 0 {
		return Coefficient{}
	}

	c := Coefficient{num: num}
	for name, exp := range datum {
		if exp == 0 {
			continue
		}
		if c.datum == nil {
			c.datum = make(map[string]float64, len(datum))
		}
		c.datum[name] = exp
	}
	return c
}

// Scalar returns a coefficient without parameters.
func Scalar(num float64) Coefficient {
	return NewCoefficient(num, nil)
}

// Parameter returns the coefficient 1*name.
func Parameter(name string) Coefficient {
	return NewCoefficient(1, map[string]float64{name: 1})
}

func (c Coefficient) Num() float64 { return c.num }

// Exponent returns the exponent of name, zero when absent.
func (c Coefficient) Exponent(name string) float64 { return c.datum[name] }

// Names returns the parameter names in sorted order.
func (c Coefficient) Names() []string {
	names := make([]string, 0, len(c.datum))
	for name := range c.datum {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c Coefficient) IsZero() bool { return c.num == 0 }

func (c Coefficient) IsOne() bool { return c.num == 1 && len(c.datum) == 0 }

func (c Coefficient) IsConstant() bool { return len(c.datum) == 0 }

// finite reports whether the scalar survived folding without overflow.
func (c Coefficient) finite() bool { return !math.IsInf(c.num, 0) && !math.IsNaN(c.num) }

// IsSimilar reports whether c and other can be summed into one coefficient.
// Zero is similar to everything.
func (c Coefficient) IsSimilar(other Coefficient) bool {
	if c.IsZero() || other.IsZero() {
		return true
	}
	return c.sameSignature(other)
}

func (c Coefficient) sameSignature(other Coefficient) bool {
	if len(c.datum) != len(other.datum) {
		return false
	}
	for name, exp := range c.datum {
		if other.datum[name] != exp {
			return false
		}
	}
	return true
}

// signature renders the parameter part only; used as an ordering key.
func (c Coefficient) signature() string {
	var b strings.Builder
	for _, name := range c.Names() {
		b.WriteString(name)
		b.WriteByte('^')
		b.WriteString(formatNumber(c.datum[name]))
	}
	return b.String()
}

func (c Coefficient) Multiply(other Coefficient) Coefficient {
	return NewCoefficient(c.num*other.num, mergeExponents(c.datum, other.datum, 1))
}

// Divide follows IEEE semantics for a zero divisor.
func (c Coefficient) Divide(other Coefficient) Coefficient {
	return NewCoefficient(c.num/other.num, mergeExponents(c.datum, other.datum, -1))
}

// Pow raises the scalar to k and scales every exponent by k.
func (c Coefficient) Pow(k float64) Coefficient {
	if c.IsZero() || c.IsOne() {
		return c
	}

	datum := make(map[string]float64, len(c.datum))
	for name, exp := range c.datum {
		datum[name] = exp * k
	}
	return NewCoefficient(math.Pow(c.num, k), datum)
}

func mergeExponents(a, b map[string]float64, sign float64) map[string]float64 {
	out := make(map[string]float64, len(a)+len(b))
	for name, exp := range a {
		out[name] = exp
	}
	for name, exp := range b {
		out[name] += sign * exp
	}
	return out
}

func (c Coefficient) String() string {
	s := formatNumber(c.num)
	if c.IsConstant() {
		return s
	}

	switch c.num {
	case 1:
		s = ""
	case -1:
		s = "-"
	}
	for _, name := range c.Names() {
		exp := c.datum[name]
		// -a^2 reads back as (-a)^2
		if s == "-" && exp != 1 {
			s = "-1"
		}
		// 2e-3 would read back as a number literal
		if (name == "e" || name == "E") && endsWithDigit(s) {
			s += "*"
		}
		s += name
		if exp != 1 {
			s += "^" + formatNumber(exp)
		}
	}
	return s
}

func endsWithDigit(s string) bool {
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	return last == '.' || (last >= '0' && last <= '9')
}

// formatNumber renders v the way the expression grammar reads it back: plain
// decimals for ordinary magnitudes, exponent notation for tiny and huge ones.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	if a := math.Abs(v); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
