package phyxcalc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/phyxcalc"
)

func TestDescribe(t *testing.T) {
	doc := newDoc(t, "x = 4 m", "const k = 2", "f(a, b) = a + b", "unit furlong = 220 yd", "x = 5 s")
	cases := []struct {
		name string
		line int
		want string
	}{
		{"x", 5, "Variable x (line 5)\nValue: 5 s\nDimension: T"},
		{"x", 4, "Variable x (line 1)\nValue: 4 m\nDimension: L"},
		{"k", 5, "Constant k (line 2)\nValue: 2\nDimension: 1"},
		{"f", 5, "Function f(a, b) (line 3)\nExpression: a + b"},
		{"furlong", 5, "Unit furlong (line 4)\nDimension: L\nScale: 201.168"},
		{"sin", 0, "Function sin (builtin)"},
		{"pi", 0, "Constant pi (builtin)\nValue: 3.14159265358979\nDimension: 1"},
		{"c", 0, "Constant c (builtin)\nValue: 299792458 m/s\nDimension: L T^-1"},
		{"km", 0, "Unit km (builtin)\nDimension: L\nScale: 1000"},
		{"°C", 0, "Unit °C (builtin)\nDimension: Θ\nScale: 1\nOffset: 273.15"},
	}
	for _, c := range cases {
		d, err := doc.DescribeAt(c.name, c.line)
		if !assert.NoError(t, err, "%s at line %d", c.name, c.line) {
			continue
		}
		assert.Equal(t, c.want, d.String(), "%s at line %d", c.name, c.line)
	}

	d, err := doc.Describe("f")
	require.NoError(t, err)
	assert.Equal(t, phyxcalc.SymFunction, d.Kind)
	assert.Equal(t, []string{"a", "b"}, d.Params)
	assert.Equal(t, 2, d.Line)
	assert.False(t, d.Builtin)

	d, err = doc.Describe("furlong")
	require.NoError(t, err)
	assert.Equal(t, "1 furlong", d.Value.String())

	_, err = doc.Describe("nope")
	assert.ErrorIs(t, err, phyxcalc.ErrUnknownSymbol)
	_, err = doc.Describe("kmin")
	assert.ErrorIs(t, err, phyxcalc.ErrPrefixMismatch)
	_, err = doc.DescribeAt("k", 1)
	assert.ErrorIs(t, err, phyxcalc.ErrUnknownSymbol)
}

func TestContextDescribe(t *testing.T) {
	ctx := phyxcalc.NewContext()
	d, err := ctx.Describe("pi")
	require.NoError(t, err)
	assert.True(t, d.Builtin)
	assert.Equal(t, phyxcalc.BuiltinLine, d.Line)
	assert.InDelta(t, 3.14159, d.Value.Num.Float64(), 1e-5)
}
