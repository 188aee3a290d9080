package phyxcalc

import (
	"errors"
	"math"
	"math/big"
	"sort"
	"strings"
)

// maxCallDepth limits recursion through user functions.
const maxCallDepth = 64

// Context is a context for evaluating expressions at one line of a document.
// Names resolve against the context's environment as seen from that line. It
// is not safe to use a Context concurrently.
type Context struct {
	env *Env
	reg *Registry
	// line is the line being evaluated. Only definitions at earlier lines are
	// visible.
	line int
	// scope holds function parameters and variables set directly on the
	// context. They shadow the environment.
	scope map[string]Value
	prec  uint
	frac  bool
	// deps records every name looked up since the last Eval or Exec.
	deps  map[string]bool
	depth int
	nums  map[string]Number
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Value
	}
	precopt uint
	fracopt bool
	regopt  struct{ r *Registry }
	envopt  struct{ e *Env }
	lineopt int
)

func (varopt) ctxOption()  {}
func (precopt) ctxOption() {}
func (fracopt) ctxOption() {}
func (regopt) ctxOption()  {}
func (envopt) ctxOption()  {}
func (lineopt) ctxOption() {}

// SetVar sets the value of a variable in the context. It shadows any
// definition in the environment.
func SetVar(name string, val Value) ContextOption {
	return varopt{name, val}
}

// Prec sets the precision of real calculations in bits.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// Fractions sets whether numeric literals are exact fractions rather than
// reals.
func Fractions(on bool) ContextOption {
	return fracopt(on)
}

// WithRegistry sets the unit registry.
func WithRegistry(r *Registry) ContextOption {
	return regopt{r}
}

// WithEnv sets the symbol environment. The context mutates it when executing
// declarations.
func WithEnv(e *Env) ContextOption {
	return envopt{e}
}

// AtLine sets the line being evaluated.
func AtLine(line int) ContextOption {
	return lineopt(line)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64. If no environment is given, the context gets a new one
// holding the builtin functions and constants, and likewise a new registry
// if none is given. The default line is after every other line.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: 64, line: math.MaxInt}
	n := ctx.Clone(opts...)
	if n.reg == nil {
		n.reg = NewRegistry()
	}
	if n.env == nil {
		n.env = NewEmptyEnv()
		seedBuiltins(n.env)
	}
	return n
}

// NewEnv creates an environment holding the builtin functions and constants.
func NewEnv() *Env {
	e := NewEmptyEnv()
	seedBuiltins(e)
	return e
}

// Clone creates a copy of a context and applies options to it. The copy
// shares the environment and registry unless options replace them.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		env:   ctx.env,
		reg:   ctx.reg,
		line:  ctx.line,
		scope: make(map[string]Value, len(ctx.scope)),
		prec:  ctx.prec,
		frac:  ctx.frac,
		deps:  make(map[string]bool),
	}
	for k, v := range ctx.scope {
		n.scope[k] = v
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.scope[opt.name] = opt.val
		case precopt:
			n.prec = uint(opt)
		case fracopt:
			n.frac = bool(opt)
		case regopt:
			n.reg = opt.r
		case envopt:
			n.env = opt.e
		case lineopt:
			n.line = int(opt)
		default:
			panic("phyxcalc: unknown option type")
		}
	}
	// Cached literals are only valid in the same numeric mode.
	n.nums = make(map[string]Number, len(ctx.nums))
	if n.prec == ctx.prec && n.frac == ctx.frac {
		for k, v := range ctx.nums {
			n.nums[k] = v
		}
	}
	return &n
}

// Set sets the value of a variable in the context's scope. Returns ctx for
// chaining.
func (ctx *Context) Set(name string, value Value) *Context {
	ctx.scope[name] = value
	return ctx
}

// Lookup returns the value of a variable or constant visible to the context.
func (ctx *Context) Lookup(name string) (Value, bool) {
	if v, ok := ctx.scope[name]; ok {
		return v, true
	}
	sym, ok := ctx.env.Resolve(name, ctx.line)
	if !ok {
		return Value{}, false
	}
	switch sym.Kind {
	case SymVariable, SymConstant:
		if sym.Func != nil {
			v, err := sym.Func.Call(ctx, nil)
			return v, err == nil
		}
		return sym.Value, true
	default:
		return Value{}, false
	}
}

// Prec returns the precision to which real values are computed.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Fractions returns whether literals are exact fractions.
func (ctx *Context) Fractions() bool {
	return ctx.frac
}

// Line returns the line the context evaluates.
func (ctx *Context) Line() int {
	return ctx.line
}

// Env returns the context's environment.
func (ctx *Context) Env() *Env {
	return ctx.env
}

// Registry returns the context's unit registry.
func (ctx *Context) Registry() *Registry {
	return ctx.reg
}

// Deps returns the sorted names looked up by the last Eval or Exec, whether or
// not the lookups succeeded.
func (ctx *Context) Deps() []string {
	r := make([]string, 0, len(ctx.deps))
	for k := range ctx.deps {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// Eval evaluates an expression. Errors are always *Error.
func (ctx *Context) Eval(e *Expr) (Value, error) {
	ctx.deps = make(map[string]bool)
	v, err := ctx.eval(e.n)
	if err != nil {
		return Value{}, located(err, e.n.start, e.n.end)
	}
	return v, nil
}

// Exec evaluates a statement and applies its definitions to the environment
// at the context's line. Expression lines bind the current result. Function
// bodies are not evaluated until they are called. Errors are always *Error.
func (ctx *Context) Exec(st *Statement) (Value, error) {
	ctx.deps = make(map[string]bool)
	switch st.Kind {
	case StmtEmpty, StmtOutput:
		return Value{}, nil
	}
	if err := ctx.checkRedefine(st); err != nil {
		return Value{}, err
	}
	if st.Kind == StmtFunc {
		ctx.env.Define(st.Name, Symbol{Kind: SymFunction, Params: st.Params, Body: st.Expr}, ctx.line)
		return Value{}, nil
	}
	v, err := ctx.eval(st.Expr.n)
	if err != nil {
		return Value{}, located(err, st.Expr.n.start, st.Expr.n.end)
	}
	switch st.Kind {
	case StmtExpr:
		ctx.env.Define(ResultName, Symbol{Kind: SymVariable, Value: v}, ctx.line)
	case StmtVar:
		ctx.env.Define(st.Name, Symbol{Kind: SymVariable, Value: v}, ctx.line)
	case StmtConst:
		ctx.env.Define(st.Name, Symbol{Kind: SymConstant, Value: v}, ctx.line)
	case StmtUnit:
		u, err := DeriveUnit(st.Name, v, false)
		if err != nil {
			return Value{}, located(err, st.Expr.n.start, st.Expr.n.end)
		}
		ctx.env.Define(st.Name, Symbol{Kind: SymUnit, Unit: u, Value: v}, ctx.line)
	}
	return v, nil
}

// checkRedefine rejects declarations that would shadow a user constant. The
// declared name is a dependency, since an earlier line becoming a constant
// changes the outcome.
func (ctx *Context) checkRedefine(st *Statement) error {
	if st.Kind == StmtExpr {
		return nil
	}
	ctx.dep(st.Name)
	sym, ok := ctx.env.Resolve(st.Name, ctx.line)
	if ok && sym.Kind == SymConstant && !sym.Builtin() {
		return &Error{Kind: ErrCalculation, Start: st.nstart, End: st.nend}
	}
	return nil
}

func (ctx *Context) dep(name string) {
	ctx.deps[name] = true
}

// num gets a possibly cached number from its text.
func (ctx *Context) num(s string) (Number, error) {
	if r, ok := ctx.nums[s]; ok {
		return r, nil
	}
	var r Number
	switch {
	case s == "∞", s == "inf", s == "Inf":
		r = ownReal(new(big.Float).SetPrec(ctx.prec).SetInf(false))
	case len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
		i, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return Number{}, ErrSyntax
		}
		if ctx.frac {
			r = ownFrac(new(big.Rat).SetInt(i))
		} else {
			r = ownReal(new(big.Float).SetPrec(ctx.prec).SetInt(i))
		}
	default:
		if ctx.frac {
			if q, ok := new(big.Rat).SetString(s); ok {
				r = ownFrac(q)
				break
			}
			// Exponents too large for an exact fraction are still fine as
			// reals.
		}
		f, _, err := new(big.Float).SetPrec(ctx.prec).Parse(s, 10)
		switch {
		case err == nil: // do nothing
		case err.Error() == "exponent overflow",
			strings.HasSuffix(err.Error(), ": value out of range"):
			// There isn't realistically any better way to detect this error.
			f = new(big.Float).SetPrec(ctx.prec).SetInf(false)
		default:
			return Number{}, ErrSyntax
		}
		r = ownReal(f)
	}
	ctx.nums[s] = r
	return r, nil
}

// one is the number used for a bare unit.
func one() Number {
	return NewInt(1)
}

// findUnit resolves a plain unit name, preferring unit declarations in the
// environment over the registry.
func (ctx *Context) findUnit(name string) (Unit, bool) {
	ctx.dep(name)
	if sym, ok := ctx.env.Resolve(name, ctx.line); ok && sym.Kind == SymUnit {
		return sym.Unit, true
	}
	return ctx.reg.Unit(name)
}

// unit resolves a unit name, including prefixed forms.
func (ctx *Context) unit(name string) (Unit, error) {
	return ctx.reg.Lookup(name, ctx.findUnit)
}

// name evaluates a name in expression position. Symbols win over units.
func (ctx *Context) name(n *node) (Value, error) {
	ctx.dep(n.name)
	if v, ok := ctx.scope[n.name]; ok {
		return v, nil
	}
	if sym, ok := ctx.env.Resolve(n.name, ctx.line); ok {
		switch sym.Kind {
		case SymVariable, SymConstant:
			if sym.Func != nil {
				return sym.Func.Call(ctx, nil)
			}
			return sym.Value, nil
		case SymUnit:
			return Value{Num: one(), Unit: sym.Unit}, nil
		case SymFunction:
			if sym.Func != nil && sym.Func.CanCall(0) {
				return sym.Func.Call(ctx, nil)
			}
			return Value{}, &Error{Kind: ErrCalculation, Start: n.start, End: n.end}
		}
	}
	u, err := ctx.unit(n.name)
	if err != nil {
		return Value{}, located(err, n.start, n.end)
	}
	return Value{Num: one(), Unit: u}, nil
}

// unitExpr evaluates a node in unit annotation position, where unit names
// win over symbols. The result is false if the node is not entirely made of
// units, in which case the caller should evaluate it as a value instead.
func (ctx *Context) unitExpr(n *node) (Unit, bool, error) {
	switch n.kind {
	case nodeName:
		if _, ok := ctx.scope[n.name]; ok {
			return Unit{}, false, nil
		}
		u, err := ctx.unit(n.name)
		if err != nil {
			if errors.Is(err, ErrUnknownSymbol) {
				return Unit{}, false, nil
			}
			return Unit{}, false, located(err, n.start, n.end)
		}
		return u, true, nil
	case nodeUnit, nodeMul, nodeDiv:
		l, ok, err := ctx.unitExpr(n.left)
		if !ok || err != nil {
			return Unit{}, false, err
		}
		r, ok, err := ctx.unitExpr(n.right)
		if !ok || err != nil {
			return Unit{}, false, err
		}
		var u Unit
		if n.kind == nodeDiv {
			u, err = Divide(l, r)
		} else {
			u, err = Multiply(l, r)
		}
		if err != nil {
			return Unit{}, false, located(err, n.start, n.end)
		}
		return u, true, nil
	case nodePow:
		l, ok, err := ctx.unitExpr(n.left)
		if !ok || err != nil {
			return Unit{}, false, err
		}
		e, err := ctx.eval(n.right)
		if err != nil {
			return Unit{}, false, err
		}
		e, err = ctx.dimensionless(e, false)
		if err != nil {
			return Unit{}, false, located(err, n.right.start, n.right.end)
		}
		r, err := exponent(e.Num)
		if err != nil {
			return Unit{}, false, located(err, n.right.start, n.right.end)
		}
		u, err := Power(l, r)
		if err != nil {
			return Unit{}, false, located(err, n.start, n.end)
		}
		return u, true, nil
	default:
		return Unit{}, false, nil
	}
}

// exponent converts a dimensionless number to a small rational suitable for
// raising a unit to a power.
func exponent(x Number) (Rational, error) {
	switch x.Kind() {
	case KindComplex:
		return Rational{}, ErrComplex
	case KindFraction:
		q := x.q
		if q.Num().IsInt64() && q.Denom().IsInt64() {
			n, d := q.Num().Int64(), q.Denom().Int64()
			if -math.MaxInt32 < n && n < math.MaxInt32 && d < math.MaxInt32 {
				return R(int(n), int(d)), nil
			}
		}
		return Rational{}, ErrNotDimensionless
	}
	f := x.Float64()
	for d := 1; d <= 12; d++ {
		n := math.Round(f * float64(d))
		if math.Abs(f*float64(d)-n) < 1e-9 && math.Abs(n) < math.MaxInt32 {
			return R(int(n), d), nil
		}
	}
	return Rational{}, ErrNotDimensionless
}

// dimensionless converts a value to a plain number. Scaled dimensionless
// units like % are converted away. If angles is true, angles are converted to
// radians and accepted too.
func (ctx *Context) dimensionless(v Value, angles bool) (Value, error) {
	if v.Unit.IsIdentity() {
		return v, nil
	}
	if angles && v.Unit.dim.IsAngle() {
		r, err := Convert(v, Unit{dim: v.Unit.dim}, ctx.prec)
		if err != nil {
			return Value{}, err
		}
		return Value{Num: r.Num}, nil
	}
	if !v.Unit.dim.IsZero() {
		return Value{}, ErrNotDimensionless
	}
	return Convert(v, Unit{}, ctx.prec)
}

// eval computes the value of a node.
func (ctx *Context) eval(n *node) (Value, error) {
	switch n.kind {
	case nodeNum:
		x, err := ctx.num(n.name)
		if err != nil {
			return Value{}, located(err, n.start, n.end)
		}
		return Value{Num: x}, nil
	case nodeName:
		return ctx.name(n)
	case nodeCall:
		return ctx.call(n)
	case nodeArg:
		panic("phyxcalc: eval on nodeArg")
	case nodeNeg:
		x, err := ctx.eval(n.left)
		if err != nil {
			return Value{}, err
		}
		return Value{Num: neg(x.Num), Unit: x.Unit}, nil
	case nodeNop:
		return ctx.eval(n.left)
	case nodeAdd, nodeSub:
		l, err := ctx.eval(n.left)
		if err != nil {
			return Value{}, err
		}
		r, err := ctx.eval(n.right)
		if err != nil {
			return Value{}, err
		}
		return ctx.addsub(n, l, r)
	case nodeMul:
		l, err := ctx.eval(n.left)
		if err != nil {
			return Value{}, err
		}
		r, err := ctx.eval(n.right)
		if err != nil {
			return Value{}, err
		}
		return ctx.mul(n, l, r)
	case nodeDiv:
		l, err := ctx.eval(n.left)
		if err != nil {
			return Value{}, err
		}
		r, err := ctx.eval(n.right)
		if err != nil {
			return Value{}, err
		}
		x, err := quo(l.Num, r.Num, ctx.prec)
		if err != nil {
			return Value{}, located(err, n.start, n.end)
		}
		u, err := Divide(l.Unit, r.Unit)
		if err != nil {
			return Value{}, located(err, n.start, n.end)
		}
		return Value{Num: x, Unit: u}, nil
	case nodePow:
		return ctx.pow(n)
	case nodeUnit:
		l, err := ctx.eval(n.left)
		if err != nil {
			return Value{}, err
		}
		u, ok, err := ctx.unitExpr(n.right)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			// Juxtaposed names that aren't units are a multiplication, as in
			// "2 x".
			r, err := ctx.eval(n.right)
			if err != nil {
				return Value{}, err
			}
			return ctx.mul(n, l, r)
		}
		if l.Unit.IsIdentity() {
			return Value{Num: l.Num, Unit: u}, nil
		}
		u, err = Multiply(l.Unit, u)
		if err != nil {
			return Value{}, located(err, n.start, n.end)
		}
		return Value{Num: l.Num, Unit: u}, nil
	case nodeConvert:
		l, err := ctx.eval(n.left)
		if err != nil {
			return Value{}, err
		}
		u, ok, err := ctx.unitExpr(n.right)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Value{}, &Error{Kind: ErrUnitsNotConvertible, Start: n.right.start, End: n.right.end}
		}
		v, err := Convert(l, u, ctx.prec)
		if err != nil {
			return Value{}, located(err, n.start, n.end)
		}
		return v, nil
	default:
		panic("phyxcalc: invalid AST node " + n.kind.String())
	}
}

// addsub adds or subtracts values of the same dimension, expressing the
// result in the left operand's unit. When the left unit is affine, the right
// operand is treated as a difference, so 20 °C + 5 K is 25 °C.
func (ctx *Context) addsub(n *node, l, r Value) (Value, error) {
	if l.Unit.dim != r.Unit.dim {
		return Value{}, &Error{Kind: ErrUnitsNotConvertible, Start: n.start, End: n.end}
	}
	to := l.Unit
	if to.IsAffine() {
		to = to.linear()
		r.Unit = r.Unit.linear()
	}
	r, err := Convert(r, to, ctx.prec)
	if err != nil {
		return Value{}, located(err, n.start, n.end)
	}
	var x Number
	if n.kind == nodeAdd {
		x, err = add(l.Num, r.Num, ctx.prec)
	} else {
		x, err = sub(l.Num, r.Num, ctx.prec)
	}
	if err != nil {
		return Value{}, located(err, n.start, n.end)
	}
	return Value{Num: x, Unit: l.Unit}, nil
}

func (ctx *Context) mul(n *node, l, r Value) (Value, error) {
	x, err := mul(l.Num, r.Num, ctx.prec)
	if err != nil {
		return Value{}, located(err, n.start, n.end)
	}
	u, err := Multiply(l.Unit, r.Unit)
	if err != nil {
		return Value{}, located(err, n.start, n.end)
	}
	return Value{Num: x, Unit: u}, nil
}

func (ctx *Context) pow(n *node) (Value, error) {
	l, err := ctx.eval(n.left)
	if err != nil {
		return Value{}, err
	}
	r, err := ctx.eval(n.right)
	if err != nil {
		return Value{}, err
	}
	r, err = ctx.dimensionless(r, false)
	if err != nil {
		return Value{}, located(err, n.right.start, n.right.end)
	}
	var u Unit
	if l.Unit.dim.IsZero() {
		l, err = ctx.dimensionless(l, false)
		if err != nil {
			return Value{}, located(err, n.left.start, n.left.end)
		}
	} else {
		e, err := exponent(r.Num)
		if err != nil {
			return Value{}, located(err, n.right.start, n.right.end)
		}
		u, err = Power(l.Unit, e)
		if err != nil {
			return Value{}, located(err, n.start, n.end)
		}
	}
	x, err := pow(l.Num, r.Num, ctx.prec)
	if err != nil {
		return Value{}, located(err, n.start, n.end)
	}
	return Value{Num: x, Unit: u}, nil
}

// call evaluates a function call.
func (ctx *Context) call(n *node) (Value, error) {
	ctx.dep(n.name)
	args := n.args()
	if v, ok := ctx.scope[n.name]; ok {
		return ctx.callValue(n, v, args)
	}
	sym, ok := ctx.env.Resolve(n.name, ctx.line)
	if !ok {
		// A unit followed by a bracket, like m(3), multiplies.
		if u, err := ctx.unit(n.name); err == nil {
			return ctx.callValue(n, Value{Num: one(), Unit: u}, args)
		}
		return Value{}, &Error{Kind: ErrUnknownSymbol, Start: n.start, End: n.start + len(n.name)}
	}
	switch sym.Kind {
	case SymFunction:
	case SymUnit:
		return ctx.callValue(n, Value{Num: one(), Unit: sym.Unit}, args)
	default:
		v, ok := ctx.Lookup(n.name)
		if !ok {
			return Value{}, &Error{Kind: ErrCalculation, Start: n.start, End: n.end}
		}
		return ctx.callValue(n, v, args)
	}
	vals := make([]Value, len(args))
	for i, a := range args {
		v, err := ctx.eval(a)
		if err != nil {
			return Value{}, err
		}
		vals[i] = v
	}
	if sym.Func != nil {
		if !sym.Func.CanCall(len(vals)) {
			return Value{}, &Error{Kind: ErrCalculation, Start: n.start, End: n.end}
		}
		v, err := sym.Func.Call(ctx, vals)
		if err != nil {
			return Value{}, located(err, n.start, n.end)
		}
		return v, nil
	}
	if len(vals) != len(sym.Params) || ctx.depth >= maxCallDepth {
		return Value{}, &Error{Kind: ErrCalculation, Start: n.start, End: n.end}
	}
	child := &Context{
		env:   ctx.env,
		reg:   ctx.reg,
		line:  ctx.line,
		scope: make(map[string]Value, len(ctx.scope)+len(vals)),
		prec:  ctx.prec,
		frac:  ctx.frac,
		deps:  ctx.deps,
		depth: ctx.depth + 1,
		nums:  ctx.nums,
	}
	for k, v := range ctx.scope {
		child.scope[k] = v
	}
	for i, p := range sym.Params {
		child.scope[p] = vals[i]
	}
	v, err := child.eval(sym.Body.n)
	if err != nil {
		// Positions inside the body refer to another line, so report the
		// call instead.
		return Value{}, &Error{Kind: kindOf(err), Start: n.start, End: n.end, Err: err}
	}
	return v, nil
}

// callValue handles a bracket after a value, which is a multiplication.
func (ctx *Context) callValue(n *node, v Value, args []*node) (Value, error) {
	if len(args) != 1 {
		return Value{}, &Error{Kind: ErrCalculation, Start: n.start, End: n.end}
	}
	r, err := ctx.eval(args[0])
	if err != nil {
		return Value{}, err
	}
	return ctx.mul(n, v, r)
}

// Eval is a shortcut to parse a line and evaluate it with a new context.
func Eval(src string, opts ...ContextOption) (Value, error) {
	st, err := ParseString(src)
	if err != nil {
		return Value{}, err
	}
	return NewContext(opts...).Exec(st)
}
