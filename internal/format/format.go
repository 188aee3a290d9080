// Package format renders calculator values as text for display.
package format

import (
	"math/big"
	"strings"

	"github.com/zephyrtronium/phyxcalc"
)

// Options controls how values are rendered.
type Options struct {
	// Format is a strconv float format: 'g', 'f', or 'e'.
	Format byte
	// Digits is the precision passed with Format. -1 means the fewest digits
	// that represent the value.
	Digits int
	// Imaginary is the symbol for the imaginary unit, usually "i" or "j".
	Imaginary string
	// Fractions shows exact fractions as n/d rather than as decimals.
	Fractions bool
	// Hex shows integers in hexadecimal.
	Hex bool
	// Prefixes picks an engineering prefix for prefixable units, so 12000 m
	// is shown as 12 km. It requires Registry.
	Prefixes bool
	// Registry supplies the prefixes.
	Registry *phyxcalc.Registry
}

// Default returns the default options.
func Default() Options {
	return Options{Format: 'g', Digits: 15, Imaginary: "i", Fractions: true}
}

// Value renders a value and its unit.
func Value(v phyxcalc.Value, o Options) string {
	if o.Prefixes && o.Registry != nil {
		v = withPrefix(v, o.Registry)
	}
	s := Number(v.Num, o)
	if v.Unit.IsIdentity() {
		return s
	}
	return s + " " + v.Unit.String()
}

// Result renders a line result: the value, the error, or nothing for lines
// that have no value.
func Result(r phyxcalc.Result, o Options) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	switch r.Kind {
	case phyxcalc.StmtEmpty, phyxcalc.StmtOutput, phyxcalc.StmtFunc:
		return ""
	}
	return Value(r.Value, o)
}

// Number renders a number.
func Number(x phyxcalc.Number, o Options) string {
	if o.Format == 0 {
		o.Format = 'g'
	}
	if o.Imaginary == "" {
		o.Imaginary = "i"
	}
	switch x.Kind() {
	case phyxcalc.KindComplex:
		return phyxcalc.FormatComplex(x.Complex(), o.Format, o.Digits, o.Imaginary)
	case phyxcalc.KindFraction:
		q, _ := x.Rat()
		if q.IsInt() {
			return integer(q.Num(), o)
		}
		if o.Fractions {
			return q.RatString()
		}
		f := new(big.Float).SetPrec(128).SetRat(q)
		return f.Text(o.Format, o.Digits)
	}
	if o.Hex {
		if i, ok := x.Int(); ok {
			return integer(i, o)
		}
	}
	return x.Float(128).Text(o.Format, o.Digits)
}

func integer(i *big.Int, o Options) string {
	if !o.Hex {
		return i.String()
	}
	if i.Sign() < 0 {
		return "-0x" + strings.ToUpper(new(big.Int).Neg(i).Text(16))
	}
	return "0x" + strings.ToUpper(i.Text(16))
}

// withPrefix rescales a value to the engineering prefix that puts its
// magnitude in [1, 1000).
func withPrefix(v phyxcalc.Value, reg *phyxcalc.Registry) phyxcalc.Value {
	u := v.Unit
	if !u.Prefixable() || u.Prefixed() || !v.Num.IsReal() || v.Num.IsZero() || v.Num.IsInf() {
		return v
	}
	a := new(big.Float).Abs(v.Num.Float(128))
	if a.Cmp(big.NewFloat(1)) >= 0 && a.Cmp(big.NewFloat(1000)) < 0 {
		return v
	}
	for _, p := range reg.Prefixes() {
		// u is the ASCII spelling of µ.
		if !engineering(p.Factor) || p.Name == "u" {
			continue
		}
		f := new(big.Float).SetPrec(128).SetRat(p.Factor)
		if a.Cmp(f) < 0 {
			continue
		}
		pu, err := phyxcalc.ApplyPrefix(p, u)
		if err != nil {
			return v
		}
		r, err := phyxcalc.Convert(v, pu, 128)
		if err != nil {
			return v
		}
		return r
	}
	return v
}

// engineering reports whether a factor is a power of 1000, excluding 1 and
// duplicate spellings like u for µ.
func engineering(q *big.Rat) bool {
	n, d := q.Num(), q.Denom()
	x := n
	if n.Cmp(big.NewInt(1)) == 0 {
		x = d
	}
	if x.Cmp(big.NewInt(1)) == 0 {
		return false
	}
	thousand := big.NewInt(1000)
	m := new(big.Int)
	for x.Cmp(big.NewInt(1)) > 0 {
		var r big.Int
		m.QuoRem(x, thousand, &r)
		if r.Sign() != 0 {
			return false
		}
		x = new(big.Int).Set(m)
	}
	return true
}
