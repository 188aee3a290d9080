package phyxcalc

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Rational is a small exact fraction, used for the exponents of dimensions.
// The zero value is 0. Rationals are always in lowest terms, so they can be
// compared with ==.
type Rational struct {
	n int32
	// d is the denominator minus one, so that the zero value is 0/1.
	d int32
}

// R creates a normalized rational n/d. Panics if d is zero or the result
// does not fit in 32 bits.
func R(n, d int) Rational {
	if d == 0 {
		panic("phyxcalc: zero denominator")
	}
	r, ok := ratio(int64(n), int64(d))
	if !ok {
		panic("phyxcalc: rational " + strconv.Itoa(n) + "/" + strconv.Itoa(d) + " out of range")
	}
	return r
}

// ratio creates a normalized rational n/d, reporting false if d is zero or
// the result does not fit.
func ratio(n, d int64) (Rational, bool) {
	if d == 0 {
		return Rational{}, false
	}
	if d < 0 {
		n, d = -n, -d
	}
	g := gcd(abs(n), d)
	n /= g
	d /= g
	if n < -math.MaxInt32 || n > math.MaxInt32 || d > math.MaxInt32 {
		return Rational{}, false
	}
	return Rational{n: int32(n), d: int32(d - 1)}, true
}

// Int is a shortcut for R(n, 1).
func Int(n int) Rational {
	return R(n, 1)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// Num returns the numerator.
func (r Rational) Num() int { return int(r.n) }

// Den returns the denominator, which is always positive.
func (r Rational) Den() int { return int(r.d) + 1 }

// Add returns r+s. Like R, it panics if the result is out of range.
func (r Rational) Add(s Rational) Rational {
	return must(r.add(s))
}

func (r Rational) Sub(s Rational) Rational {
	return r.Add(s.Neg())
}

// Mul returns r*s. Like R, it panics if the result is out of range.
func (r Rational) Mul(s Rational) Rational {
	return must(r.mul(s))
}

func (r Rational) add(s Rational) (Rational, bool) {
	rd, sd := int64(r.Den()), int64(s.Den())
	return ratio(int64(r.n)*sd+int64(s.n)*rd, rd*sd)
}

func (r Rational) mul(s Rational) (Rational, bool) {
	return ratio(int64(r.n)*int64(s.n), int64(r.Den())*int64(s.Den()))
}

func must(r Rational, ok bool) Rational {
	if !ok {
		panic("phyxcalc: rational out of range")
	}
	return r
}

func (r Rational) Neg() Rational {
	return Rational{n: -r.n, d: r.d}
}

func (r Rational) IsZero() bool { return r.n == 0 }

// IsInt returns whether r is an integer.
func (r Rational) IsInt() bool { return r.d == 0 }

func (r Rational) Float64() float64 {
	return float64(r.n) / float64(r.Den())
}

func (r Rational) String() string {
	if r.IsInt() {
		return strconv.Itoa(r.Num())
	}
	return strconv.Itoa(r.Num()) + "/" + strconv.Itoa(r.Den())
}

// Base dimension indices.
const (
	DimLength = iota
	DimMass
	DimTime
	DimCurrent
	DimTemperature
	DimAmount
	DimLuminous
	DimAngle

	numDims
)

var dimLetters = [numDims]string{"L", "M", "T", "I", "Θ", "N", "J", "A"}

// Dimension is the vector of base dimension exponents identifying the physical
// kind of a unit. Two units are convertible exactly when their dimensions are
// equal.
type Dimension [numDims]Rational

// Dim creates a dimension with integer exponents for the first len(exps)
// base dimensions.
func Dim(exps ...int) Dimension {
	var d Dimension
	for i, e := range exps {
		d[i] = Int(e)
	}
	return d
}

func (d Dimension) Mul(e Dimension) Dimension {
	r, ok := d.mul(e)
	if !ok {
		panic("phyxcalc: dimension exponent out of range")
	}
	return r
}

func (d Dimension) Div(e Dimension) Dimension {
	var n Dimension
	for i := range e {
		n[i] = e[i].Neg()
	}
	return d.Mul(n)
}

func (d Dimension) Pow(r Rational) Dimension {
	p, ok := d.pow(r)
	if !ok {
		panic("phyxcalc: dimension exponent out of range")
	}
	return p
}

// mul is Mul reporting whether every exponent stayed in range.
func (d Dimension) mul(e Dimension) (Dimension, bool) {
	for i := range d {
		var ok bool
		if d[i], ok = d[i].add(e[i]); !ok {
			return Dimension{}, false
		}
	}
	return d, true
}

// pow is Pow reporting whether every exponent stayed in range.
func (d Dimension) pow(r Rational) (Dimension, bool) {
	for i := range d {
		var ok bool
		if d[i], ok = d[i].mul(r); !ok {
			return Dimension{}, false
		}
	}
	return d, true
}

// IsZero returns whether the dimension is dimensionless. Angles count as a
// dimension.
func (d Dimension) IsZero() bool {
	return d == Dimension{}
}

// IsAngle returns whether the dimension is exactly a plane angle.
func (d Dimension) IsAngle() bool {
	var a Dimension
	a[DimAngle] = Int(1)
	return d == a
}

// String formats the dimension like "L M T^-2". A dimensionless dimension is
// "1".
func (d Dimension) String() string {
	var b strings.Builder
	for i, e := range d {
		if e.IsZero() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(dimLetters[i])
		if e != Int(1) {
			b.WriteByte('^')
			if e.IsInt() {
				b.WriteString(e.String())
			} else {
				b.WriteString("(" + e.String() + ")")
			}
		}
	}
	if b.Len() == 0 {
		return "1"
	}
	return b.String()
}

// unitPart is a named factor of a unit's symbol.
type unitPart struct {
	name string
	exp  Rational
}

// Unit is a physical unit: a dimension, a scale relating it to the coherent
// SI unit of that dimension, and an offset for affine units like °C. The zero
// value is the identity unit of dimensionless values. Units are immutable.
type Unit struct {
	dim Dimension
	// scale is the scale factor. Zero means 1.
	scale float64
	// exact is the scale as an exact fraction, or nil if it is 1 or has no
	// exact representation.
	exact *big.Rat
	// offset is added after scaling to reach the base unit.
	offset float64
	// exoff is the exact offset, or nil if it is 0 or inexact.
	exoff *big.Rat

	prefixable bool
	prefixed   bool

	parts []unitPart
}

// NewUnit creates a named unit of the given dimension and exact scale. A nil
// scale means 1.
func NewUnit(name string, dim Dimension, scale *big.Rat) Unit {
	u := Unit{dim: dim, parts: []unitPart{{name, Int(1)}}}
	if scale != nil && !isOne(scale) {
		u.exact = new(big.Rat).Set(scale)
		u.scale, _ = scale.Float64()
	}
	return u
}

// NewUnitFloat creates a named unit with an inexact scale.
func NewUnitFloat(name string, dim Dimension, scale float64) Unit {
	u := Unit{dim: dim, parts: []unitPart{{name, Int(1)}}}
	if scale != 1 {
		u.scale = scale
	}
	return u
}

// WithOffset returns a copy of u with the given exact offset.
func (u Unit) WithOffset(offset *big.Rat) Unit {
	u.exoff = nil
	u.offset = 0
	if offset.Sign() != 0 {
		u.exoff = new(big.Rat).Set(offset)
		u.offset, _ = offset.Float64()
	}
	return u
}

// WithPrefixable returns a copy of u that does or does not accept prefixes.
func (u Unit) WithPrefixable(prefixable bool) Unit {
	u.prefixable = prefixable
	return u
}

// Rename returns a copy of u displayed with a single name.
func (u Unit) Rename(name string) Unit {
	u.parts = []unitPart{{name, Int(1)}}
	return u
}

func isOne(r *big.Rat) bool {
	return r.IsInt() && r.Num().IsInt64() && r.Num().Int64() == 1
}

// Dim returns the unit's dimension.
func (u Unit) Dim() Dimension { return u.dim }

// Scale returns the factor converting one of u to the coherent unit of its
// dimension.
func (u Unit) Scale() float64 {
	if u.scale == 0 {
		return 1
	}
	return u.scale
}

// Offset returns the amount added after scaling when converting to the
// coherent unit.
func (u Unit) Offset() float64 { return u.offset }

// ExactScale returns the scale as a new exact fraction, if it has one.
func (u Unit) ExactScale() (*big.Rat, bool) {
	switch {
	case u.scale == 0:
		return big.NewRat(1, 1), true
	case u.exact != nil:
		return new(big.Rat).Set(u.exact), true
	default:
		return nil, false
	}
}

// ExactOffset returns the offset as a new exact fraction, if it has one.
func (u Unit) ExactOffset() (*big.Rat, bool) {
	switch {
	case u.offset == 0:
		return new(big.Rat), true
	case u.exoff != nil:
		return new(big.Rat).Set(u.exoff), true
	default:
		return nil, false
	}
}

// Prefixable returns whether a prefix may be applied to u.
func (u Unit) Prefixable() bool { return u.prefixable }

// Prefixed returns whether u already carries a prefix.
func (u Unit) Prefixed() bool { return u.prefixed }

// IsAffine returns whether u has an offset.
func (u Unit) IsAffine() bool { return u.offset != 0 }

// linear returns u without its offset.
func (u Unit) linear() Unit {
	u.offset = 0
	u.exoff = nil
	return u
}

// IsIdentity returns whether u is the unit of plain dimensionless numbers.
func (u Unit) IsIdentity() bool {
	return len(u.parts) == 0 && u.dim.IsZero() && u.Scale() == 1 && u.offset == 0
}

// Equal returns whether two units have the same symbol, dimension, scale, and
// offset.
func (u Unit) Equal(v Unit) bool {
	return u.dim == v.dim && u.Scale() == v.Scale() && u.offset == v.offset && u.String() == v.String()
}

// String returns the unit's symbol, like "kg*m/s^2". The identity unit is the
// empty string.
func (u Unit) String() string {
	var num, den strings.Builder
	for _, p := range u.parts {
		if p.exp.n > 0 {
			if num.Len() > 0 {
				num.WriteByte('*')
			}
			writePart(&num, p.name, p.exp)
		} else {
			den.WriteByte('/')
			writePart(&den, p.name, p.exp.Neg())
		}
	}
	if num.Len() == 0 && den.Len() > 0 {
		num.WriteByte('1')
	}
	return num.String() + den.String()
}

func writePart(b *strings.Builder, name string, exp Rational) {
	b.WriteString(name)
	switch {
	case exp == Int(1):
	case exp.IsInt():
		b.WriteByte('^')
		b.WriteString(exp.String())
	default:
		b.WriteString("^(" + exp.String() + ")")
	}
}

// mergeParts combines symbol parts, summing exponents of equal names and
// dropping those that cancel. The result is false if an exponent overflows.
func mergeParts(a, b []unitPart) ([]unitPart, bool) {
	r := make([]unitPart, 0, len(a)+len(b))
	r = append(r, a...)
outer:
	for _, p := range b {
		for i := range r {
			if r[i].name == p.name {
				var ok bool
				if r[i].exp, ok = r[i].exp.add(p.exp); !ok {
					return nil, false
				}
				continue outer
			}
		}
		r = append(r, p)
	}
	k := 0
	for _, p := range r {
		if !p.exp.IsZero() {
			r[k] = p
			k++
		}
	}
	return r[:k], true
}

// Multiply returns the product of two units. Multiplying an affine unit by
// anything other than the identity is a calculation error.
func Multiply(a, b Unit) (Unit, error) {
	if b.IsIdentity() {
		return a, nil
	}
	if a.IsIdentity() {
		return b, nil
	}
	if a.IsAffine() || b.IsAffine() {
		return Unit{}, ErrCalculation
	}
	dim, ok := a.dim.mul(b.dim)
	if !ok {
		return Unit{}, ErrCalculation
	}
	parts, ok := mergeParts(a.parts, b.parts)
	if !ok {
		return Unit{}, ErrCalculation
	}
	r := Unit{dim: dim, parts: parts}
	if len(r.parts) == 0 {
		// Everything cancelled, e.g. m/m.
		return Unit{dim: r.dim}, nil
	}
	s := a.Scale() * b.Scale()
	if !usableScale(s) {
		return Unit{}, ErrCalculation
	}
	if s != 1 {
		r.scale = s
	}
	as, aok := a.ExactScale()
	bs, bok := b.ExactScale()
	if aok && bok {
		as.Mul(as, bs)
		if isOne(as) {
			r.scale = 0
		} else {
			r.exact = as
			r.scale, _ = as.Float64()
		}
	}
	return r, nil
}

// Divide returns the quotient of two units.
func Divide(a, b Unit) (Unit, error) {
	if b.IsIdentity() {
		return a, nil
	}
	inv, err := Power(b, Int(-1))
	if err != nil {
		return Unit{}, err
	}
	return Multiply(a, inv)
}

// Power raises a unit to a rational power. Raising an affine unit to any
// power other than 1 is a calculation error.
func Power(u Unit, r Rational) (Unit, error) {
	if r == Int(1) || u.IsIdentity() {
		return u, nil
	}
	if u.IsAffine() {
		return Unit{}, ErrCalculation
	}
	if r.IsZero() {
		return Unit{}, nil
	}
	dim, ok := u.dim.pow(r)
	if !ok {
		return Unit{}, ErrCalculation
	}
	v := Unit{dim: dim, parts: make([]unitPart, len(u.parts))}
	for i, p := range u.parts {
		e, ok := p.exp.mul(r)
		if !ok {
			return Unit{}, ErrCalculation
		}
		v.parts[i] = unitPart{p.name, e}
	}
	s := math.Pow(u.Scale(), r.Float64())
	if !usableScale(s) {
		return Unit{}, ErrCalculation
	}
	if s != 1 {
		v.scale = s
	}
	if q, ok := u.ExactScale(); ok && r.IsInt() && !isOne(q) && abs(int64(r.Num())) <= maxExactPow {
		v.exact = ratPow(q, r.Num())
		v.scale, _ = v.exact.Float64()
	}
	return v, nil
}

// usableScale returns whether s can be the scale of a unit.
func usableScale(s float64) bool {
	return s != 0 && !math.IsInf(s, 0) && !math.IsNaN(s)
}

// ratPow raises q to an integer power. q must be nonzero.
func ratPow(q *big.Rat, n int) *big.Rat {
	if n < 0 {
		q = new(big.Rat).Inv(q)
		n = -n
	}
	num := new(big.Int).Exp(q.Num(), big.NewInt(int64(n)), nil)
	den := new(big.Int).Exp(q.Denom(), big.NewInt(int64(n)), nil)
	return new(big.Rat).SetFrac(num, den)
}

// DeriveUnit creates a new named unit equal to a value, as in a unit
// declaration "unit mph = 1 mi/h". The value must be a positive real and its
// unit must not be affine.
func DeriveUnit(name string, v Value, prefixable bool) (Unit, error) {
	if v.Unit.IsAffine() {
		return Unit{}, ErrCalculation
	}
	var u Unit
	switch v.Num.Kind() {
	case KindComplex:
		return Unit{}, ErrComplex
	case KindFraction:
		q, _ := v.Num.Rat()
		switch q.Sign() {
		case -1:
			return Unit{}, ErrNegative
		case 0:
			return Unit{}, ErrCalculation
		}
		if s, ok := v.Unit.ExactScale(); ok {
			u = NewUnit(name, v.Unit.dim, q.Mul(q, s))
			break
		}
		f, _ := q.Float64()
		u = NewUnitFloat(name, v.Unit.dim, f*v.Unit.Scale())
	default:
		f := v.Num.Float64()
		switch {
		case f < 0:
			return Unit{}, ErrNegative
		case f == 0, math.IsInf(f, 0), math.IsNaN(f):
			return Unit{}, ErrCalculation
		}
		u = NewUnitFloat(name, v.Unit.dim, f*v.Unit.Scale())
	}
	u.prefixable = prefixable
	return u, nil
}

// Convert expresses a value in another unit of the same dimension. Exact
// fractions stay exact when both units have exact scales and offsets.
func Convert(v Value, to Unit, prec uint) (Value, error) {
	from := v.Unit
	if from.dim != to.dim {
		return Value{}, ErrUnitsNotConvertible
	}
	if from.Scale() == to.Scale() && from.offset == to.offset {
		return Value{Num: v.Num, Unit: to}, nil
	}
	switch v.Num.Kind() {
	case KindFraction:
		fs, ok1 := from.ExactScale()
		fo, ok2 := from.ExactOffset()
		ts, ok3 := to.ExactScale()
		tof, ok4 := to.ExactOffset()
		if ok1 && ok2 && ok3 && ok4 {
			q, _ := v.Num.Rat()
			q.Mul(q, fs)
			q.Add(q, fo)
			q.Sub(q, tof)
			q.Quo(q, ts)
			return Value{Num: NewFraction(q), Unit: to}, nil
		}
		fallthrough
	case KindReal:
		x := v.Num.Float(prec)
		x.Mul(x, big.NewFloat(from.Scale()).SetPrec(prec))
		x.Add(x, big.NewFloat(from.offset).SetPrec(prec))
		x.Sub(x, big.NewFloat(to.offset).SetPrec(prec))
		x.Quo(x, big.NewFloat(to.Scale()).SetPrec(prec))
		return Value{Num: NewReal(x), Unit: to}, nil
	default:
		z := v.Num.Complex()
		z = z*complex(from.Scale(), 0) + complex(from.offset, 0)
		z = (z - complex(to.offset, 0)) / complex(to.Scale(), 0)
		return Value{Num: NewComplex(z), Unit: to}, nil
	}
}
