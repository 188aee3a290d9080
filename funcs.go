package phyxcalc

import (
	"math"
	"math/big"
	"math/cmplx"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a builtin function of values.
type Func interface {
	// Call evaluates the function. args has a length for which CanCall
	// returned true. Call may look up names through ctx but must not modify
	// the context. Errors should be ErrorKind values or *Error.
	Call(ctx *Context, args []Value) (Value, error)

	// CanCall returns whether the function can be called with n arguments.
	// A function for which CanCall(0) is true can also be used as a bare
	// name, like pi.
	CanCall(n int) bool
}

type monadic struct {
	f func(ctx *Context, x Value) (Value, error)
}

func (m monadic) Call(ctx *Context, args []Value) (r Value, err error) {
	defer guard(&err)
	return m.f(ctx, args[0])
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one value into a Func. If f panics with
// big.ErrNaN, the call fails with ErrCalculation.
func Monadic(f func(ctx *Context, x Value) (Value, error)) Func {
	return monadic{f}
}

type dyadic struct {
	f func(ctx *Context, x, y Value) (Value, error)
}

func (d dyadic) Call(ctx *Context, args []Value) (r Value, err error) {
	defer guard(&err)
	return d.f(ctx, args[0], args[1])
}

func (d dyadic) CanCall(n int) bool {
	return n == 2
}

// Dyadic wraps a function of two values into a Func.
func Dyadic(f func(ctx *Context, x, y Value) (Value, error)) Func {
	return dyadic{f}
}

type variadic struct {
	min, max int
	f        func(ctx *Context, args []Value) (Value, error)
}

func (v variadic) Call(ctx *Context, args []Value) (r Value, err error) {
	defer guard(&err)
	return v.f(ctx, args)
}

func (v variadic) CanCall(n int) bool {
	return n >= v.min && (v.max < 0 || n <= v.max)
}

// Variadic wraps a function of at least min and at most max values into a
// Func. If max is negative, there is no maximum.
func Variadic(min, max int, f func(ctx *Context, args []Value) (Value, error)) Func {
	return variadic{min, max, f}
}

type niladic struct {
	f func(ctx *Context) (Value, error)
}

func (n niladic) Call(ctx *Context, args []Value) (Value, error) {
	return n.f(ctx)
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero values, generally a function which
// computes a constant, into a Func.
func Niladic(f func(ctx *Context) (Value, error)) Func {
	return niladic{f}
}

// physical is a constant with a unit made of registry units.
type physical struct {
	value string
	units []unitPart
}

func (p physical) Call(ctx *Context, args []Value) (Value, error) {
	x, err := ctx.num(p.value)
	if err != nil {
		return Value{}, err
	}
	var u Unit
	for _, f := range p.units {
		b, ok := ctx.reg.Unit(f.name)
		if !ok {
			return Value{}, ErrUnknownSymbol
		}
		if b, err = Power(b, f.exp); err != nil {
			return Value{}, err
		}
		if u, err = Multiply(u, b); err != nil {
			return Value{}, err
		}
	}
	return Value{Num: x, Unit: u}, nil
}

func (physical) CanCall(n int) bool {
	return n == 0
}

func units(pairs ...any) []unitPart {
	v := make([]unitPart, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		v = append(v, unitPart{pairs[i].(string), Int(pairs[i+1].(int))})
	}
	return v
}

var globalconsts = map[string]Func{
	"pi": Niladic(func(ctx *Context) (Value, error) {
		return Value{Num: ownReal(bigfloat.Pi(new(big.Float).SetPrec(ctx.prec)))}, nil
	}),
	"e": Niladic(func(ctx *Context) (Value, error) {
		one := new(big.Float).SetPrec(ctx.prec).SetInt64(1)
		return Value{Num: ownReal(bigfloat.Exp(new(big.Float).SetPrec(ctx.prec), one))}, nil
	}),
	"i": Niladic(func(ctx *Context) (Value, error) {
		return Value{Num: NewComplex(1i)}, nil
	}),

	"c":   physical{"299792458", units("m", 1, "s", -1)},
	"G":   physical{"6.67430e-11", units("m", 3, "kg", -1, "s", -2)},
	"g_n": physical{"9.80665", units("m", 1, "s", -2)},
	"N_A": physical{"6.02214076e23", units("mol", -1)},
	"k_B": physical{"1.380649e-23", units("J", 1, "K", -1)},
	"h_P": physical{"6.62607015e-34", units("J", 1, "s", 1)},
	"e_0": physical{"1.602176634e-19", units("C", 1)},
}

var globalfuncs = map[string]Func{
	"sin":   trig(math.Sin, cmplx.Sin),
	"cos":   trig(math.Cos, cmplx.Cos),
	"tan":   trig(math.Tan, cmplx.Tan),
	"asin":  scalar(math.Asin, cmplx.Asin, within(-1, 1), nil),
	"acos":  scalar(math.Acos, cmplx.Acos, within(-1, 1), nil),
	"atan":  scalar(math.Atan, cmplx.Atan, nil, nil),
	"sinh":  scalar(math.Sinh, cmplx.Sinh, nil, nil),
	"cosh":  scalar(math.Cosh, cmplx.Cosh, nil, nil),
	"tanh":  scalar(math.Tanh, cmplx.Tanh, nil, nil),
	"asinh": scalar(math.Asinh, cmplx.Asinh, nil, nil),
	"acosh": scalar(math.Acosh, cmplx.Acosh, within(1, math.Inf(1)), nil),
	"atanh": scalar(math.Atanh, cmplx.Atanh, within(-1, 1), at(-1, 1)),

	"exp":   Monadic(exp),
	"ln":    Monadic(ln),
	"log":   Variadic(1, 2, logv),
	"log10": Monadic(func(ctx *Context, x Value) (Value, error) { return logb(ctx, x, 10) }),
	"log2":  Monadic(func(ctx *Context, x Value) (Value, error) { return logb(ctx, x, 2) }),
	"logn": Dyadic(func(ctx *Context, x, b Value) (Value, error) {
		return logv(ctx, []Value{x, b})
	}),
	"sqrt": Monadic(sqrt),
	"root": Dyadic(root),

	"abs":  Monadic(absv),
	"norm": Monadic(norm),
	"arg":  Monadic(argv),
	"conj": Monadic(conj),
	"re":   Monadic(re),
	"im":   Monadic(im),

	"max": Variadic(1, -1, func(ctx *Context, args []Value) (Value, error) { return extreme(ctx, args, 1) }),
	"min": Variadic(1, -1, func(ctx *Context, args []Value) (Value, error) { return extreme(ctx, args, -1) }),
	"avg": Variadic(1, -1, avg),

	"int":   rounding(truncRat),
	"trunc": rounding(truncRat),
	"floor": rounding(floorRat),
	"ceil":  rounding(ceilRat),
	"round": rounding(roundRat),

	"sign":      Monadic(sign),
	"heaviside": Monadic(heaviside),

	"fact": Monadic(fact),
	"ncr":  Dyadic(func(ctx *Context, n, k Value) (Value, error) { return combin(ctx, n, k, true) }),
	"npr":  Dyadic(func(ctx *Context, n, k Value) (Value, error) { return combin(ctx, n, k, false) }),
}

// seedBuiltins defines the builtin functions and constants in an environment.
func seedBuiltins(e *Env) {
	for name, f := range globalfuncs {
		e.Define(name, Symbol{Kind: SymFunction, Func: f}, BuiltinLine)
	}
	for name, f := range globalconsts {
		e.Define(name, Symbol{Kind: SymConstant, Func: f}, BuiltinLine)
	}
}

// within returns a real domain check for lo <= x <= hi.
func within(lo, hi float64) func(float64) bool {
	return func(x float64) bool { return lo <= x && x <= hi }
}

// at returns a check for poles of a function.
func at(poles ...float64) func(float64) bool {
	return func(x float64) bool {
		for _, p := range poles {
			if x == p {
				return true
			}
		}
		return false
	}
}

// scalar creates a function of a dimensionless number computed with float64
// arithmetic. Real arguments outside domain, and complex arguments, use the
// complex version instead. Arguments at a pole are calculation errors.
func scalar(f func(float64) float64, cf func(complex128) complex128, domain, pole func(float64) bool) Func {
	return Monadic(func(ctx *Context, x Value) (Value, error) {
		x, err := ctx.dimensionless(x, false)
		if err != nil {
			return Value{}, err
		}
		return scalarOf(ctx, x.Num, f, cf, domain, pole)
	})
}

// trig is like scalar but also accepts angles.
func trig(f func(float64) float64, cf func(complex128) complex128) Func {
	return Monadic(func(ctx *Context, x Value) (Value, error) {
		x, err := ctx.dimensionless(x, true)
		if err != nil {
			return Value{}, err
		}
		return scalarOf(ctx, x.Num, f, cf, nil, nil)
	})
}

func scalarOf(ctx *Context, x Number, f func(float64) float64, cf func(complex128) complex128, domain, pole func(float64) bool) (Value, error) {
	if x.IsReal() {
		a := x.Float64()
		if pole != nil && pole(a) {
			return Value{}, ErrCalculation
		}
		if domain == nil || domain(a) {
			r, err := realResult(f(a), ctx.prec)
			return Value{Num: r}, err
		}
	}
	r, err := complexResult(cf(x.Complex()))
	return Value{Num: r}, err
}

func exp(ctx *Context, x Value) (Value, error) {
	x, err := ctx.dimensionless(x, false)
	if err != nil {
		return Value{}, err
	}
	if !x.Num.IsReal() {
		r, err := complexResult(cmplx.Exp(x.Num.Complex()))
		return Value{Num: r}, err
	}
	a := x.Num.Float(ctx.prec)
	if a.IsInf() {
		if a.Signbit() {
			return Value{Num: NewInt(0)}, nil
		}
		return Value{Num: ownReal(a)}, nil
	}
	return Value{Num: ownReal(bigfloat.Exp(new(big.Float).SetPrec(ctx.prec), a))}, nil
}

// lnNum is the natural logarithm of a number, complex for negative reals.
func lnNum(ctx *Context, x Number) (Number, error) {
	if x.IsZero() {
		return Number{}, ErrCalculation
	}
	if !x.IsReal() || x.Sign() < 0 {
		return complexResult(cmplx.Log(x.Complex()))
	}
	a := x.Float(ctx.prec)
	if a.IsInf() {
		return ownReal(a), nil
	}
	return ownReal(bigfloat.Log(new(big.Float).SetPrec(ctx.prec), a)), nil
}

func ln(ctx *Context, x Value) (Value, error) {
	x, err := ctx.dimensionless(x, false)
	if err != nil {
		return Value{}, err
	}
	r, err := lnNum(ctx, x.Num)
	return Value{Num: r}, err
}

func logb(ctx *Context, x Value, base int64) (Value, error) {
	return logv(ctx, []Value{x, {Num: NewInt(base)}})
}

// logv is log(x), the common logarithm, or log(x, b).
func logv(ctx *Context, args []Value) (Value, error) {
	x, err := ctx.dimensionless(args[0], false)
	if err != nil {
		return Value{}, err
	}
	b := Value{Num: NewInt(10)}
	if len(args) > 1 {
		if b, err = ctx.dimensionless(args[1], false); err != nil {
			return Value{}, err
		}
	}
	lx, err := lnNum(ctx, x.Num)
	if err != nil {
		return Value{}, err
	}
	lb, err := lnNum(ctx, b.Num)
	if err != nil {
		return Value{}, err
	}
	r, err := quo(lx, lb, ctx.prec)
	return Value{Num: r}, err
}

// isqrt returns the exact square root of a nonnegative integer, if it has
// one.
func isqrt(n *big.Int) (*big.Int, bool) {
	r := new(big.Int).Sqrt(n)
	return r, new(big.Int).Mul(r, r).Cmp(n) == 0
}

func sqrt(ctx *Context, x Value) (Value, error) {
	u, err := Power(x.Unit, R(1, 2))
	if err != nil {
		return Value{}, err
	}
	if x.Unit.dim.IsZero() {
		if x, err = ctx.dimensionless(x, false); err != nil {
			return Value{}, err
		}
		u = Unit{}
	}
	n := x.Num
	switch {
	case !n.IsReal() || n.Sign() < 0:
		r, err := complexResult(cmplx.Sqrt(n.Complex()))
		return Value{Num: r, Unit: u}, err
	case n.Kind() == KindFraction:
		if a, ok := isqrt(n.q.Num()); ok {
			if b, ok := isqrt(n.q.Denom()); ok {
				return Value{Num: ownFrac(new(big.Rat).SetFrac(a, b)), Unit: u}, nil
			}
		}
	}
	a := n.Float(ctx.prec)
	if a.IsInf() {
		return Value{Num: ownReal(a), Unit: u}, nil
	}
	return Value{Num: ownReal(new(big.Float).SetPrec(ctx.prec).Sqrt(a)), Unit: u}, nil
}

// integer extracts a dimensionless integer argument.
func integer(ctx *Context, x Value) (*big.Int, error) {
	x, err := ctx.dimensionless(x, false)
	if err != nil {
		return nil, err
	}
	if !x.Num.IsReal() {
		return nil, ErrComplex
	}
	i, ok := x.Num.Int()
	if !ok {
		return nil, ErrNonInteger
	}
	return i, nil
}

// root is the nth root.
func root(ctx *Context, x, nv Value) (Value, error) {
	n, err := integer(ctx, nv)
	if err != nil {
		return Value{}, err
	}
	switch n.Sign() {
	case 0:
		return Value{}, ErrCalculation
	case -1:
		return Value{}, ErrNegative
	}
	if !n.IsInt64() || n.Int64() > math.MaxInt32 {
		return Value{}, ErrCalculation
	}
	k := int(n.Int64())
	u, err := Power(x.Unit, R(1, k))
	if err != nil {
		return Value{}, err
	}
	if x.Unit.dim.IsZero() {
		if x, err = ctx.dimensionless(x, false); err != nil {
			return Value{}, err
		}
		u = Unit{}
	}
	inv := ownFrac(big.NewRat(1, int64(k)))
	switch {
	case !x.Num.IsReal():
		r, err := complexResult(cmplx.Pow(x.Num.Complex(), complex(1/float64(k), 0)))
		return Value{Num: r, Unit: u}, err
	case x.Num.Sign() < 0 && k%2 == 0:
		r, err := complexResult(cmplx.Pow(x.Num.Complex(), complex(1/float64(k), 0)))
		return Value{Num: r, Unit: u}, err
	case x.Num.Sign() < 0:
		r, err := pow(neg(x.Num), inv, ctx.prec)
		return Value{Num: neg(r), Unit: u}, err
	default:
		r, err := pow(x.Num, inv, ctx.prec)
		return Value{Num: r, Unit: u}, err
	}
}

func absv(ctx *Context, x Value) (Value, error) {
	n := x.Num
	switch n.Kind() {
	case KindComplex:
		return Value{Num: NewFloat(cmplx.Abs(n.z), ctx.prec), Unit: x.Unit}, nil
	case KindFraction:
		return Value{Num: ownFrac(new(big.Rat).Abs(n.q)), Unit: x.Unit}, nil
	default:
		return Value{Num: ownReal(new(big.Float).Abs(n.Float(ctx.prec))), Unit: x.Unit}, nil
	}
}

// norm is the squared magnitude.
func norm(ctx *Context, x Value) (Value, error) {
	u, err := Power(x.Unit, Int(2))
	if err != nil {
		return Value{}, err
	}
	if !x.Num.IsReal() {
		z := x.Num.Complex()
		r := real(z)*real(z) + imag(z)*imag(z)
		n, err := realResult(r, ctx.prec)
		return Value{Num: n, Unit: u}, err
	}
	r, err := mul(x.Num, x.Num, ctx.prec)
	return Value{Num: r, Unit: u}, err
}

func argv(ctx *Context, x Value) (Value, error) {
	if x.Num.IsReal() {
		if x.Num.Sign() < 0 {
			return Value{Num: ownReal(bigfloat.Pi(new(big.Float).SetPrec(ctx.prec)))}, nil
		}
		return Value{Num: NewInt(0)}, nil
	}
	return Value{Num: NewFloat(cmplx.Phase(x.Num.z), ctx.prec)}, nil
}

func conj(ctx *Context, x Value) (Value, error) {
	if x.Num.IsReal() {
		return x, nil
	}
	return Value{Num: NewComplex(cmplx.Conj(x.Num.z)), Unit: x.Unit}, nil
}

func re(ctx *Context, x Value) (Value, error) {
	if x.Num.IsReal() {
		return x, nil
	}
	return Value{Num: NewFloat(real(x.Num.z), ctx.prec), Unit: x.Unit}, nil
}

func im(ctx *Context, x Value) (Value, error) {
	if x.Num.IsReal() {
		return Value{Num: NewInt(0), Unit: x.Unit}, nil
	}
	return Value{Num: NewFloat(imag(x.Num.z), ctx.prec), Unit: x.Unit}, nil
}

// cmpNum compares two real numbers.
func cmpNum(x, y Number, prec uint) int {
	if bothFrac(x, y) {
		return x.q.Cmp(y.q)
	}
	return x.Float(prec).Cmp(y.Float(prec))
}

// sameUnit converts every argument to the unit of the first. All arguments
// must be real.
func sameUnit(ctx *Context, args []Value) ([]Value, error) {
	r := make([]Value, len(args))
	for i, a := range args {
		if !a.Num.IsReal() {
			return nil, ErrComplex
		}
		v, err := Convert(a, args[0].Unit, ctx.prec)
		if err != nil {
			return nil, err
		}
		r[i] = v
	}
	return r, nil
}

// extreme is max for dir 1 and min for dir -1.
func extreme(ctx *Context, args []Value, dir int) (Value, error) {
	vals, err := sameUnit(ctx, args)
	if err != nil {
		return Value{}, err
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if cmpNum(v.Num, best.Num, ctx.prec) == dir {
			best = v
		}
	}
	return best, nil
}

func avg(ctx *Context, args []Value) (Value, error) {
	vals, err := sameUnit(ctx, args)
	if err != nil {
		return Value{}, err
	}
	sum := vals[0].Num
	for _, v := range vals[1:] {
		if sum, err = add(sum, v.Num, ctx.prec); err != nil {
			return Value{}, err
		}
	}
	r, err := quo(sum, NewInt(int64(len(vals))), ctx.prec)
	return Value{Num: r, Unit: vals[0].Unit}, err
}

func truncRat(q *big.Rat) *big.Int {
	return new(big.Int).Quo(q.Num(), q.Denom())
}

func floorRat(q *big.Rat) *big.Int {
	// Denominators are positive, so Euclidean division floors.
	return new(big.Int).Div(q.Num(), q.Denom())
}

func ceilRat(q *big.Rat) *big.Int {
	r := floorRat(new(big.Rat).Neg(q))
	return r.Neg(r)
}

// roundRat rounds half away from zero.
func roundRat(q *big.Rat) *big.Int {
	a := new(big.Rat).Abs(q)
	r := floorRat(a.Add(a, big.NewRat(1, 2)))
	if q.Sign() < 0 {
		r.Neg(r)
	}
	return r
}

// rounding creates a function rounding a real value to an integer in its own
// unit.
func rounding(f func(*big.Rat) *big.Int) Func {
	return Monadic(func(ctx *Context, x Value) (Value, error) {
		n := x.Num
		switch n.Kind() {
		case KindComplex:
			return Value{}, ErrComplex
		case KindFraction:
			return Value{Num: ownFrac(new(big.Rat).SetInt(f(n.q))), Unit: x.Unit}, nil
		}
		a := n.Float(ctx.prec)
		if a.IsInf() {
			return x, nil
		}
		q, _ := a.Rat(nil)
		return Value{Num: ownReal(new(big.Float).SetPrec(ctx.prec).SetInt(f(q))), Unit: x.Unit}, nil
	})
}

func sign(ctx *Context, x Value) (Value, error) {
	if !x.Num.IsReal() {
		return Value{}, ErrComplex
	}
	return Value{Num: NewInt(int64(x.Num.Sign()))}, nil
}

func heaviside(ctx *Context, x Value) (Value, error) {
	if !x.Num.IsReal() {
		return Value{}, ErrComplex
	}
	if x.Num.Sign() < 0 {
		return Value{Num: NewInt(0)}, nil
	}
	return Value{Num: NewInt(1)}, nil
}

// maxFact is the largest argument to fact.
const maxFact = 10000

// intResult converts an integer to a number in the context's mode.
func (ctx *Context) intResult(i *big.Int) Number {
	if ctx.frac {
		return ownFrac(new(big.Rat).SetInt(i))
	}
	return ownReal(new(big.Float).SetPrec(ctx.prec).SetInt(i))
}

// natural extracts a nonnegative dimensionless integer no larger than maxFact.
func natural(ctx *Context, x Value) (int64, error) {
	i, err := integer(ctx, x)
	if err != nil {
		return 0, err
	}
	if i.Sign() < 0 {
		return 0, ErrNegative
	}
	if !i.IsInt64() || i.Int64() > maxFact {
		return 0, ErrCalculation
	}
	return i.Int64(), nil
}

func fact(ctx *Context, x Value) (Value, error) {
	n, err := natural(ctx, x)
	if err != nil {
		return Value{}, err
	}
	return Value{Num: ctx.intResult(new(big.Int).MulRange(1, n))}, nil
}

// combin computes n choose k, or the number of k-permutations of n.
func combin(ctx *Context, nv, kv Value, choose bool) (Value, error) {
	n, err := natural(ctx, nv)
	if err != nil {
		return Value{}, err
	}
	k, err := natural(ctx, kv)
	if err != nil {
		return Value{}, err
	}
	if k > n {
		return Value{Num: ctx.intResult(new(big.Int))}, nil
	}
	if choose {
		return Value{Num: ctx.intResult(new(big.Int).Binomial(n, k))}, nil
	}
	return Value{Num: ctx.intResult(new(big.Int).MulRange(n-k+1, n))}, nil
}
