package phyxcalc

import (
	"math"
	"math/big"
	"math/cmplx"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Kind is the representation of a Number.
type Kind uint8

const (
	// KindReal is an arbitrary-precision binary floating-point number.
	KindReal Kind = iota
	// KindComplex is a complex number of two float64 parts.
	KindComplex
	// KindFraction is an exact ratio of integers in lowest terms.
	KindFraction
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "Real"
	case KindComplex:
		return "Complex"
	case KindFraction:
		return "Fraction"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Number is a real, complex, or fraction value. The zero value is real zero.
// Numbers are immutable; every operation allocates its result.
type Number struct {
	kind Kind
	// r is the real value. nil means 0.
	r *big.Float
	z complex128
	q *big.Rat
}

// NewReal creates a real number holding a copy of x.
func NewReal(x *big.Float) Number {
	return Number{kind: KindReal, r: new(big.Float).Copy(x)}
}

// NewFloat creates a real number from a float64 at the given precision.
// Panics with big.ErrNaN if f is NaN.
func NewFloat(f float64, prec uint) Number {
	if math.IsNaN(f) {
		panic(big.ErrNaN{})
	}
	return Number{kind: KindReal, r: new(big.Float).SetPrec(prec).SetFloat64(f)}
}

// NewComplex creates a complex number. If the imaginary part is zero, then
// the result is real instead.
func NewComplex(z complex128) Number {
	if imag(z) == 0 && !math.IsNaN(real(z)) {
		return Number{kind: KindReal, r: new(big.Float).SetFloat64(real(z))}
	}
	return Number{kind: KindComplex, z: z}
}

// NewFraction creates an exact fraction holding a copy of q.
func NewFraction(q *big.Rat) Number {
	return Number{kind: KindFraction, q: new(big.Rat).Set(q)}
}

// NewInt creates an exact integer.
func NewInt(n int64) Number {
	return Number{kind: KindFraction, q: new(big.Rat).SetInt64(n)}
}

func ownReal(x *big.Float) Number { return Number{kind: KindReal, r: x} }
func ownFrac(q *big.Rat) Number   { return Number{kind: KindFraction, q: q} }

// Kind returns the representation of x.
func (x Number) Kind() Kind { return x.kind }

// IsReal returns whether x has no imaginary part.
func (x Number) IsReal() bool { return x.kind != KindComplex }

// Float returns x as a new big.Float at the given precision. For complex x,
// the result is the real part.
func (x Number) Float(prec uint) *big.Float {
	r := new(big.Float).SetPrec(prec)
	switch x.kind {
	case KindFraction:
		r.SetRat(x.q)
	case KindComplex:
		r.SetFloat64(real(x.z))
	default:
		if x.r != nil {
			r.Set(x.r)
		}
	}
	return r
}

// Float64 returns the nearest float64 to x, or to its real part.
func (x Number) Float64() float64 {
	switch x.kind {
	case KindFraction:
		f, _ := x.q.Float64()
		return f
	case KindComplex:
		return real(x.z)
	default:
		if x.r == nil {
			return 0
		}
		f, _ := x.r.Float64()
		return f
	}
}

// Complex returns x as a complex128.
func (x Number) Complex() complex128 {
	if x.kind == KindComplex {
		return x.z
	}
	return complex(x.Float64(), 0)
}

// Rat returns a copy of x as an exact fraction. The result is false if x is
// not a fraction.
func (x Number) Rat() (*big.Rat, bool) {
	if x.kind != KindFraction {
		return nil, false
	}
	return new(big.Rat).Set(x.q), true
}

// Int returns x as an integer if it is a real or fraction with no fractional
// part.
func (x Number) Int() (*big.Int, bool) {
	switch x.kind {
	case KindFraction:
		if !x.q.IsInt() {
			return nil, false
		}
		return new(big.Int).Set(x.q.Num()), true
	case KindReal:
		if x.r == nil {
			return new(big.Int), true
		}
		if x.r.IsInf() || !x.r.IsInt() {
			return nil, false
		}
		i, _ := x.r.Int(nil)
		return i, true
	default:
		return nil, false
	}
}

// Sign returns -1, 0, or 1 for the sign of x or of its real part.
func (x Number) Sign() int {
	switch x.kind {
	case KindFraction:
		return x.q.Sign()
	case KindComplex:
		switch {
		case real(x.z) < 0:
			return -1
		case real(x.z) > 0:
			return 1
		}
		return 0
	default:
		if x.r == nil {
			return 0
		}
		return x.r.Sign()
	}
}

// IsZero returns whether x is zero.
func (x Number) IsZero() bool {
	if x.kind == KindComplex {
		return x.z == 0
	}
	return x.Sign() == 0
}

// IsInf returns whether x is infinite.
func (x Number) IsInf() bool {
	switch x.kind {
	case KindReal:
		return x.r != nil && x.r.IsInf()
	case KindComplex:
		return cmplx.IsInf(x.z)
	default:
		return false
	}
}

// String formats x with up to 15 significant digits.
func (x Number) String() string {
	return x.Text('g', 15)
}

// Text formats x using a strconv float format and number of digits. Fractions
// are always formatted exactly.
func (x Number) Text(format byte, digits int) string {
	switch x.kind {
	case KindFraction:
		return x.q.RatString()
	case KindComplex:
		return FormatComplex(x.z, format, digits, "i")
	default:
		if x.r == nil {
			return "0"
		}
		return x.r.Text(format, digits)
	}
}

// FormatComplex formats a complex number like "1+2i", using sym for the
// imaginary unit.
func FormatComplex(z complex128, format byte, digits int, sym string) string {
	re, im := real(z), imag(z)
	s := ""
	if re != 0 {
		s = strconv.FormatFloat(re, format, digits, 64)
		if im >= 0 || math.IsNaN(im) {
			s += "+"
		}
	}
	return s + strconv.FormatFloat(im, format, digits, 64) + sym
}

// Value is a number paired with a unit. Dimensionless values carry the
// identity unit, which is the zero Unit.
type Value struct {
	Num  Number
	Unit Unit
}

// String formats the value like "5 m/s".
func (v Value) String() string {
	if v.Unit.IsIdentity() {
		return v.Num.String()
	}
	return v.Num.String() + " " + v.Unit.String()
}

// guard converts a big.ErrNaN panic into ErrCalculation.
func guard(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(big.ErrNaN); ok {
		*err = ErrCalculation
		return
	}
	panic(r)
}

// realResult converts a float64 result to a Number, reporting NaN as a
// calculation error.
func realResult(f float64, prec uint) (Number, error) {
	if math.IsNaN(f) {
		return Number{}, ErrCalculation
	}
	return NewFloat(f, prec), nil
}

func complexResult(z complex128) (Number, error) {
	if cmplx.IsNaN(z) {
		return Number{}, ErrCalculation
	}
	return NewComplex(z), nil
}

func bothFrac(x, y Number) bool {
	return x.kind == KindFraction && y.kind == KindFraction
}

func anyComplex(x, y Number) bool {
	return x.kind == KindComplex || y.kind == KindComplex
}

func add(x, y Number, prec uint) (r Number, err error) {
	defer guard(&err)
	switch {
	case anyComplex(x, y):
		return complexResult(x.Complex() + y.Complex())
	case bothFrac(x, y):
		return ownFrac(new(big.Rat).Add(x.q, y.q)), nil
	default:
		return ownReal(new(big.Float).SetPrec(prec).Add(x.Float(prec), y.Float(prec))), nil
	}
}

func sub(x, y Number, prec uint) (r Number, err error) {
	defer guard(&err)
	switch {
	case anyComplex(x, y):
		return complexResult(x.Complex() - y.Complex())
	case bothFrac(x, y):
		return ownFrac(new(big.Rat).Sub(x.q, y.q)), nil
	default:
		return ownReal(new(big.Float).SetPrec(prec).Sub(x.Float(prec), y.Float(prec))), nil
	}
}

func mul(x, y Number, prec uint) (r Number, err error) {
	defer guard(&err)
	switch {
	case anyComplex(x, y):
		return complexResult(x.Complex() * y.Complex())
	case bothFrac(x, y):
		return ownFrac(new(big.Rat).Mul(x.q, y.q)), nil
	default:
		return ownReal(new(big.Float).SetPrec(prec).Mul(x.Float(prec), y.Float(prec))), nil
	}
}

// quo divides x by y. Division by zero is a calculation error.
func quo(x, y Number, prec uint) (r Number, err error) {
	defer guard(&err)
	if y.IsZero() {
		return Number{}, ErrCalculation
	}
	switch {
	case anyComplex(x, y):
		return complexResult(x.Complex() / y.Complex())
	case bothFrac(x, y):
		return ownFrac(new(big.Rat).Quo(x.q, y.q)), nil
	default:
		return ownReal(new(big.Float).SetPrec(prec).Quo(x.Float(prec), y.Float(prec))), nil
	}
}

func neg(x Number) Number {
	switch x.kind {
	case KindComplex:
		return NewComplex(-x.z)
	case KindFraction:
		return ownFrac(new(big.Rat).Neg(x.q))
	default:
		if x.r == nil {
			return x
		}
		return ownReal(new(big.Float).Neg(x.r))
	}
}

// maxExactPow is the largest exponent for which fractions are raised to
// integer powers exactly.
const maxExactPow = 1 << 12

// pow raises x to the power y. A negative base with a non-integer exponent
// gives a complex result.
func pow(x, y Number, prec uint) (r Number, err error) {
	defer guard(&err)
	if anyComplex(x, y) {
		if x.IsZero() {
			return powZero(y)
		}
		return complexResult(cmplx.Pow(x.Complex(), y.Complex()))
	}
	if bothFrac(x, y) && y.q.IsInt() && y.q.Num().IsInt64() {
		n := y.q.Num().Int64()
		if -maxExactPow <= n && n <= maxExactPow {
			if x.q.Sign() == 0 {
				return powZero(y)
			}
			return ownFrac(ratPow(x.q, int(n))), nil
		}
	}
	xf, yf := x.Float(prec), y.Float(prec)
	switch {
	case xf.Sign() == 0:
		return powZero(y)
	case xf.IsInf() || yf.IsInf():
		a, _ := xf.Float64()
		b, _ := yf.Float64()
		return NewFloat(math.Pow(a, b), prec), nil
	case xf.Signbit():
		if !yf.IsInt() {
			a, _ := xf.Float64()
			b, _ := yf.Float64()
			return complexResult(cmplx.Pow(complex(a, 0), complex(b, 0)))
		}
		ax := new(big.Float).Abs(xf)
		r := bigfloat.Pow(new(big.Float).SetPrec(prec), ax, yf)
		if i, _ := yf.Int(nil); i.Bit(0) == 1 {
			r.Neg(r)
		}
		return ownReal(r), nil
	default:
		return ownReal(bigfloat.Pow(new(big.Float).SetPrec(prec), xf, yf)), nil
	}
}

// powZero gives 0^y.
func powZero(y Number) (Number, error) {
	switch {
	case y.IsZero():
		return NewInt(1), nil
	case y.Sign() > 0:
		return NewInt(0), nil
	default:
		return Number{}, ErrCalculation
	}
}
