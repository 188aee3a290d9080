package phyxcalc_test

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/phyxcalc"
)

// near reports whether got is within a relative tolerance of want.
func near(got, want float64) bool {
	if math.IsInf(want, 0) || math.IsNaN(want) {
		return got == want || math.IsNaN(got) && math.IsNaN(want)
	}
	return math.Abs(got-want) <= 1e-9*math.Max(1, math.Abs(want))
}

func realVar(x float64) phyxcalc.Value {
	return phyxcalc.Value{Num: phyxcalc.NewFloat(x, 64)}
}

func TestEval(t *testing.T) {
	type vv struct {
		n string
		v float64
	}
	type vc struct {
		vars []vv
		r    float64
	}
	cases := []struct {
		name string
		src  string
		r    []vc
		unit string
	}{
		{"num", "1", []vc{{nil, 1}}, ""},
		{"ident", "x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
			{[]vv{{"x", 6}}, 6},
		}, ""},
		{"plus", "+x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
		}, ""},
		{"neg", "-x", []vc{
			{[]vv{{"x", 4}}, -4},
			{[]vv{{"x", 5}}, -5},
		}, ""},
		{"add", "4+5+6", []vc{{nil, 4 + 5 + 6}}, ""},
		{"sub", "4-5-6", []vc{{nil, 4 - 5 - 6}}, ""},
		{"mul", "4*5*6", []vc{{nil, 4 * 5 * 6}}, ""},
		{"div", "4/5/6", []vc{{nil, 4.0 / 5.0 / 6.0}}, ""},
		{"pow", "4^3^2", []vc{{nil, 262144}}, ""},
		{"neg-pow", "-2^2", []vc{{nil, -4}}, ""},
		{"square", "x^2", []vc{{[]vv{{"x", 4}}, 16}, {[]vv{{"x", -3}}, 9}}, ""},
		{"juxtaposed", "2 x", []vc{{[]vv{{"x", 3}}, 6}}, ""},
		{"implicit", "2(x + 1)", []vc{{[]vv{{"x", 3}}, 8}}, ""},
		{"pi", "pi", []vc{{nil, math.Pi}}, ""},
		{"e", "e", []vc{{nil, math.E}}, ""},
		{"exp", "exp(1)", []vc{{nil, math.E}}, ""},
		{"inf1", "inf", []vc{{nil, math.Inf(1)}}, ""},
		{"inf2", "Inf", []vc{{nil, math.Inf(1)}}, ""},
		{"inf3", "∞", []vc{{nil, math.Inf(1)}}, ""},
		{"log", "log(1000)", []vc{{nil, 3}}, ""},
		{"log-base", "log(8, 2)", []vc{{nil, 3}}, ""},
		{"ln", "ln(e)", []vc{{nil, 1}}, ""},
		{"log2", "log2(8)", []vc{{nil, 3}}, ""},
		{"log10", "log10(0.001)", []vc{{nil, -3}}, ""},
		{"logn", "logn(81, 3)", []vc{{nil, 4}}, ""},
		{"sqrt", "sqrt(16)", []vc{{nil, 4}}, ""},
		{"root", "root(27, 3)", []vc{{nil, 3}}, ""},
		{"odd-root", "root(-8, 3)", []vc{{nil, -2}}, ""},
		{"sin", "sin(pi/2)", []vc{{nil, 1}}, ""},
		{"cos", "cos(0)", []vc{{nil, 1}}, ""},
		{"degrees", "sin(90°)", []vc{{nil, 1}}, ""},
		{"atan", "4 atan(1)", []vc{{nil, math.Pi}}, ""},
		{"abs", "abs(-3)", []vc{{nil, 3}}, ""},
		{"max", "max(1, 5, 3)", []vc{{nil, 5}}, ""},
		{"min", "min(2, -1)", []vc{{nil, -1}}, ""},
		{"avg", "avg(1, 2, 3, 4)", []vc{{nil, 2.5}}, ""},
		{"floor", "floor(-2.5)", []vc{{nil, -3}}, ""},
		{"ceil", "ceil(2.1)", []vc{{nil, 3}}, ""},
		{"round", "round(2.5)", []vc{{nil, 3}}, ""},
		{"round-neg", "round(-2.5)", []vc{{nil, -3}}, ""},
		{"trunc", "trunc(-2.7)", []vc{{nil, -2}}, ""},
		{"int", "int(2.7)", []vc{{nil, 2}}, ""},
		{"sign", "sign(-4)", []vc{{nil, -1}}, ""},
		{"heaviside-zero", "heaviside(0)", []vc{{nil, 1}}, ""},
		{"heaviside-neg", "heaviside(-1)", []vc{{nil, 0}}, ""},
		{"fact", "fact(5)", []vc{{nil, 120}}, ""},
		{"fact-zero", "fact(0)", []vc{{nil, 1}}, ""},
		{"ncr", "ncr(5, 2)", []vc{{nil, 10}}, ""},
		{"npr", "npr(5, 2)", []vc{{nil, 20}}, ""},
		{"ncr-large-k", "ncr(2, 5)", []vc{{nil, 0}}, ""},
		{"i-squared", "i*i", []vc{{nil, -1}}, ""},
		{"complex-abs", "abs(3 + 4i)", []vc{{nil, 5}}, ""},

		{"add-units", "5 m + 3 m", []vc{{nil, 8}}, "m"},
		{"add-prefixed", "5 km + 300 m", []vc{{nil, 5.3}}, "km"},
		{"convert", "2 km -> m", []vc{{nil, 2000}}, "m"},
		{"feet", "1 ft -> in", []vc{{nil, 12}}, "in"},
		{"speed", "60 mi/h -> km/h", []vc{{nil, 96.56064}}, "km/h"},
		{"product", "3 m * 2 s", []vc{{nil, 6}}, "m*s"},
		{"quotient", "10 m / 2 s", []vc{{nil, 5}}, "m/s"},
		{"unit-pow", "(3 m)^2", []vc{{nil, 9}}, "m^2"},
		{"pow-unit", "2 m^2", []vc{{nil, 2}}, "m^2"},
		{"sqrt-unit", "sqrt(9 m^2)", []vc{{nil, 3}}, "m"},
		{"force", "9.81 m/s^2 * 2 kg -> N", []vc{{nil, 19.62}}, "N"},
		{"var-unit", "x m", []vc{{[]vv{{"x", 3}}, 3}}, "m"},
		{"energy", "1 kW h -> J", []vc{{nil, 3.6e6}}, "J"},
		{"minutes", "1 h -> min", []vc{{nil, 60}}, "min"},
		{"micro", "1 µs -> ns", []vc{{nil, 1000}}, "ns"},
		{"micro-ascii", "1 us -> ns", []vc{{nil, 1000}}, "ns"},
		{"millimole", "1 mmol -> mol", []vc{{nil, 0.001}}, "mol"},
		{"celsius", "100 °C -> K", []vc{{nil, 373.15}}, "K"},
		{"fahrenheit", "32 °F -> °C", []vc{{nil, 0}}, "°C"},
		{"affine-add", "20 °C + 5 K", []vc{{nil, 25}}, "°C"},
		{"unit-call", "m(3)", []vc{{nil, 3}}, "m"},
		{"speed-of-light", "c", []vc{{nil, 299792458}}, "m/s"},
	}
	ctx := phyxcalc.NewContext(phyxcalc.Prec(64))
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			st, err := phyxcalc.ParseString(c.src)
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			for _, v := range c.r {
				ctx := ctx.Clone()
				for _, x := range v.vars {
					ctx.Set(x.n, realVar(x.v))
				}
				r, err := ctx.Exec(st)
				if err != nil {
					t.Fatal("evaluation error:", err)
				}
				if !r.Num.IsReal() {
					t.Errorf("%q with %v gave complex %v", c.src, v.vars, r)
					continue
				}
				if got := r.Num.Float64(); !near(got, v.r) {
					t.Errorf("%q with %v: want %g, got %g", c.src, v.vars, v.r, got)
				}
				if got := r.Unit.String(); got != c.unit {
					t.Errorf("%q with %v: want unit %q, got %q", c.src, v.vars, c.unit, got)
				}
			}
		})
	}
}

func TestEvalFractions(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1/3", "1/3"},
		{"1/3 + 1/6", "1/2"},
		{"0.1 + 0.2", "3/10"},
		{"1e3", "1000"},
		{"(2/3)^2", "4/9"},
		{"2^-2", "1/4"},
		{"sqrt(9/4)", "3/2"},
		{"abs(-3/4)", "3/4"},
		{"floor(7/2)", "3"},
		{"round(-5/2)", "-3"},
		{"fact(20)", "2432902008176640000"},
		{"npr(5, 2)", "20"},
		{"5 m + 3 m", "8 m"},
		{"0.5 m + 25 cm", "3/4 m"},
		{"5 km + 300 m", "53/10 km"},
		{"2 km -> m", "2000 m"},
		{"1 ft -> in", "12 in"},
		{"1 mi -> ft", "5280 ft"},
		{"1 kW h -> J", "3600000 J"},
		{"9.81 m/s^2 * 2 kg -> N", "981/50 N"},
		{"20 °C + 5 K", "25 °C"},
		{"0 °C -> K", "5463/20 K"},
		{"32 °F -> °C", "0 °C"},
		{"212 °F -> °C", "100 °C"},
		{"100 °C -> °F", "212 °F"},
		{"max(1 m, 50 cm)", "1 m"},
		{"min(1 m, 50 cm)", "1/2 m"},
		{"avg(1 m, 50 cm)", "3/4 m"},
		{"c", "299792458 m/s"},
		{"x = 4", "4"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.src, func(t *testing.T) {
			v, err := phyxcalc.Eval(c.src, phyxcalc.Fractions(true))
			if err != nil {
				t.Fatalf("%q failed: %v", c.src, err)
			}
			if got := v.String(); got != c.want {
				t.Errorf("%q: want %q, got %q", c.src, c.want, got)
			}
		})
	}
}

func TestEvalComplex(t *testing.T) {
	cases := []struct {
		src  string
		want complex128
	}{
		{"sqrt(-1)", 1i},
		{"sqrt(-4)", 2i},
		{"3 + 4i", 3 + 4i},
		{"ln(-1)", complex(0, math.Pi)},
		{"(-1)^0.5", 1i},
		{"conj(1 + 2i)", 1 - 2i},
	}
	for _, c := range cases {
		c := c
		t.Run(c.src, func(t *testing.T) {
			v, err := phyxcalc.Eval(c.src)
			if err != nil {
				t.Fatalf("%q failed: %v", c.src, err)
			}
			if v.Num.Kind() != phyxcalc.KindComplex {
				t.Fatalf("%q: want complex, got %v (%v)", c.src, v, v.Num.Kind())
			}
			if got := v.Num.Complex(); cmplx.Abs(got-c.want) > 1e-12 {
				t.Errorf("%q: want %v, got %v", c.src, c.want, got)
			}
		})
	}
}

func TestEvalUnitOverflow(t *testing.T) {
	cases := []string{
		"1 km^100000000",
		"1 km^-100000000",
		"1 km^4096",
		"(1 m^2000000000) * (1 m^2000000000)",
		"(1 m^2000000000)^2",
	}
	for _, src := range cases {
		_, err := phyxcalc.Eval(src)
		if !errors.Is(err, phyxcalc.ErrCalculation) {
			t.Errorf("%q: want calculation error, got %v", src, err)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name       string
		src        string
		kind       phyxcalc.ErrorKind
		start, end int
	}{
		{"dims", "5 m + 3 s", phyxcalc.ErrUnitsNotConvertible, 0, 9},
		{"undef", "x", phyxcalc.ErrUnknownSymbol, 0, 1},
		{"undef-unit", "2 q", phyxcalc.ErrUnknownSymbol, 2, 3},
		{"undef-in-exp", "2 m^x", phyxcalc.ErrUnknownSymbol, 4, 5},
		{"undef-func", "f(1)", phyxcalc.ErrUnknownSymbol, 0, 1},
		{"prefixed-kg", "1 mkg", phyxcalc.ErrPrefixMismatch, 2, 5},
		{"prefixed-min", "5 kmin", phyxcalc.ErrPrefixMismatch, 2, 6},
		{"fact-frac", "fact(2.5)", phyxcalc.ErrNonInteger, 0, 9},
		{"fact-neg", "fact(-1)", phyxcalc.ErrNegative, 0, 8},
		{"fact-big", "fact(10001)", phyxcalc.ErrCalculation, 0, 11},
		{"sin-dims", "sin(2 m)", phyxcalc.ErrNotDimensionless, 0, 8},
		{"div-zero", "1/0", phyxcalc.ErrCalculation, 0, 3},
		{"pow-dims", "2^(1 m)", phyxcalc.ErrNotDimensionless, 2, 7},
		{"affine-pow", "(20 °C)^2", phyxcalc.ErrCalculation, 0, 10},
		{"convert-dims", "1 m -> s", phyxcalc.ErrUnitsNotConvertible, 0, 8},
		{"convert-nonunit", "5 -> x", phyxcalc.ErrUnitsNotConvertible, 5, 6},
		{"arity", "sin(1, 2)", phyxcalc.ErrCalculation, 0, 9},
		{"bare-func", "sin", phyxcalc.ErrCalculation, 0, 3},
		{"root-zero", "root(4, 0)", phyxcalc.ErrCalculation, 0, 10},
		{"root-frac", "root(4, 1/2)", phyxcalc.ErrNonInteger, 0, 12},
		{"ln-zero", "ln(0)", phyxcalc.ErrCalculation, 0, 5},
		{"unit-complex", "unit u = sqrt(-1)", phyxcalc.ErrComplex, 9, 17},
		{"unit-neg", "unit u = -2 m", phyxcalc.ErrNegative, 9, 13},
		{"unit-zero", "unit u = 0 m", phyxcalc.ErrCalculation, 9, 12},
		{"syntax", "1 +", phyxcalc.ErrSyntax, 3, 3},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			v, err := phyxcalc.Eval(c.src)
			if err == nil {
				t.Fatalf("%q: want error, got %v", c.src, v)
			}
			if !errors.Is(err, c.kind) {
				t.Errorf("%q: want %v, got %v", c.src, c.kind, err)
			}
			var e *phyxcalc.Error
			if !errors.As(err, &e) {
				t.Fatalf("%q: error is %T, not *Error", c.src, err)
			}
			if e.Start != c.start || e.End != c.end {
				t.Errorf("%q: want position %d-%d, got %d-%d", c.src, c.start, c.end, e.Start, e.End)
			}
		})
	}
}

// execLines executes each line in order as document lines sharing one
// environment.
func execLines(t *testing.T, lines []string, opts ...phyxcalc.ContextOption) ([]phyxcalc.Value, []error) {
	t.Helper()
	ctx := phyxcalc.NewContext(opts...)
	vals := make([]phyxcalc.Value, len(lines))
	errs := make([]error, len(lines))
	for i, src := range lines {
		st, err := phyxcalc.ParseString(src)
		if err != nil {
			errs[i] = err
			continue
		}
		vals[i], errs[i] = ctx.Clone(phyxcalc.AtLine(i)).Exec(st)
	}
	return vals, errs
}

func TestExecLines(t *testing.T) {
	type result struct {
		val  string
		kind phyxcalc.ErrorKind
	}
	cases := []struct {
		name  string
		lines []string
		want  []result
	}{
		{
			name:  "variable",
			lines: []string{"x = 4", "x^2"},
			want:  []result{{"4", 0}, {"16", 0}},
		},
		{
			name:  "forward-reference",
			lines: []string{"y + 1", "y = 2", "y + 1"},
			want:  []result{{"", phyxcalc.ErrUnknownSymbol}, {"2", 0}, {"3", 0}},
		},
		{
			name:  "function",
			lines: []string{"f(a) = a * 2", "f(3)"},
			want:  []result{{"", 0}, {"6", 0}},
		},
		{
			name:  "function-units",
			lines: []string{"ke(m, v) = m v^2 / 2", "ke(2 kg, 3 m/s) -> J"},
			want:  []result{{"", 0}, {"9 J", 0}},
		},
		{
			name:  "function-arity",
			lines: []string{"g(a, b) = a + b", "g(1)", "g(1, 2)"},
			want:  []result{{"", 0}, {"", phyxcalc.ErrCalculation}, {"3", 0}},
		},
		{
			name:  "recursion",
			lines: []string{"f(n) = f(n)", "f(1)"},
			want:  []result{{"", 0}, {"", phyxcalc.ErrCalculation}},
		},
		{
			name:  "result",
			lines: []string{"2 + 3", "ans * 2"},
			want:  []result{{"5", 0}, {"10", 0}},
		},
		{
			name:  "redefine",
			lines: []string{"x = 1", "x = x + 1", "x"},
			want:  []result{{"1", 0}, {"2", 0}, {"2", 0}},
		},
		{
			name:  "const",
			lines: []string{"const k = 3", "k = 4", "const k = 5", "k"},
			want:  []result{{"3", 0}, {"", phyxcalc.ErrCalculation}, {"", phyxcalc.ErrCalculation}, {"3", 0}},
		},
		{
			name:  "shadow-builtin",
			lines: []string{"pi = 3", "pi"},
			want:  []result{{"3", 0}, {"3", 0}},
		},
		{
			name:  "user-unit",
			lines: []string{"unit furlong = 220 yd", "1 furlong -> m", "1 kfurlong"},
			want:  []result{{"220 yd", 0}, {"25146/125 m", 0}, {"", phyxcalc.ErrPrefixMismatch}},
		},
		{
			name:  "derived-unit",
			lines: []string{"unit mph = 1 mi/h", "60 mph -> km/h"},
			want:  []result{{"1 mi/h", 0}, {"301752/3125 km/h", 0}},
		},
		{
			name:  "output",
			lines: []string{"x = 2", "= x", ""},
			want:  []result{{"2", 0}, {"", 0}, {"", 0}},
		},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			vals, errs := execLines(t, c.lines, phyxcalc.Fractions(true))
			for i, w := range c.want {
				if w.kind != 0 {
					if !errors.Is(errs[i], w.kind) {
						t.Errorf("line %d %q: want %v, got %v", i, c.lines[i], w.kind, errs[i])
					}
					continue
				}
				if errs[i] != nil {
					t.Errorf("line %d %q: unexpected error %v", i, c.lines[i], errs[i])
					continue
				}
				if w.val == "" {
					continue
				}
				if got := vals[i].String(); got != w.val {
					t.Errorf("line %d %q: want %q, got %q", i, c.lines[i], w.val, got)
				}
			}
		})
	}
}

func TestConstRedefinePosition(t *testing.T) {
	_, errs := execLines(t, []string{"const k = 3", "k = 4", "const k = 5"})
	cases := []struct{ line, start, end int }{{1, 0, 1}, {2, 6, 7}}
	for _, c := range cases {
		var e *phyxcalc.Error
		if !errors.As(errs[c.line], &e) {
			t.Fatalf("line %d: want *Error, got %v", c.line, errs[c.line])
		}
		if e.Kind != phyxcalc.ErrCalculation || e.Start != c.start || e.End != c.end {
			t.Errorf("line %d: want calculation error at %d-%d, got %v", c.line, c.start, c.end, e)
		}
	}
}

func TestDeps(t *testing.T) {
	cases := []struct {
		name string
		src  string
		deps []string
	}{
		{"none", "1 + 2", []string{}},
		{"vars", "x^2 + y", []string{"x", "y"}},
		{"units", "2 km", []string{"km", "m"}},
		{"call", "sqrt(z)", []string{"sqrt", "z"}},
		{"unknown", "q", []string{"q"}},
		{"declaration", "w = x + 1", []string{"w", "x"}},
		{"function", "f(a) = a + x", []string{"f"}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			st, err := phyxcalc.ParseString(c.src)
			if err != nil {
				t.Fatal(err)
			}
			ctx := phyxcalc.NewContext(phyxcalc.SetVar("x", realVar(1)), phyxcalc.SetVar("y", realVar(2)), phyxcalc.SetVar("z", realVar(4)))
			ctx.Exec(st)
			if diff := cmp.Diff(c.deps, ctx.Deps()); diff != "" {
				t.Errorf("%q gave wrong deps (-want +got):\n%s", c.src, diff)
			}
		})
	}
}

func TestContextVars(t *testing.T) {
	ctx := phyxcalc.NewContext(phyxcalc.SetVar("x", realVar(1)))
	if v, ok := ctx.Lookup("x"); !ok || v.Num.Float64() != 1 {
		t.Errorf("x in new context is %v, %t", v, ok)
	}
	c := ctx.Clone(phyxcalc.SetVar("x", realVar(2)), phyxcalc.Fractions(true))
	if v, _ := ctx.Lookup("x"); v.Num.Float64() != 1 {
		t.Errorf("clone changed x in original to %v", v)
	}
	if v, _ := c.Lookup("x"); v.Num.Float64() != 2 {
		t.Errorf("x in clone is %v", v)
	}
	if ctx.Fractions() || !c.Fractions() {
		t.Errorf("fraction modes: original %t, clone %t", ctx.Fractions(), c.Fractions())
	}
	if ctx.Env() != c.Env() || ctx.Registry() != c.Registry() {
		t.Error("clone does not share env and registry")
	}
	if v, ok := ctx.Lookup("pi"); !ok || !near(v.Num.Float64(), math.Pi) {
		t.Errorf("pi is %v, %t", v, ok)
	}
	if _, ok := ctx.Lookup("sin"); ok {
		t.Error("function looked up as a value")
	}
	if _, ok := ctx.Lookup("nope"); ok {
		t.Error("found undefined name")
	}
}

func TestEvalPrec(t *testing.T) {
	lo, err := phyxcalc.Eval("1/3", phyxcalc.Prec(24))
	if err != nil {
		t.Fatal(err)
	}
	hi, err := phyxcalc.Eval("1/3", phyxcalc.Prec(256))
	if err != nil {
		t.Fatal(err)
	}
	if lo.Num.Text('g', 30) == hi.Num.Text('g', 30) {
		t.Errorf("precisions gave the same 30 digits %s", lo.Num.Text('g', 30))
	}
}

func BenchmarkEval(b *testing.B) {
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		ctx := phyxcalc.NewContext(phyxcalc.Prec(64))
		st, err := phyxcalc.ParseString("2+3+4")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Clone().Exec(st)
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		ctx := phyxcalc.NewContext(phyxcalc.SetVar("x", realVar(2)), phyxcalc.SetVar("y", realVar(3)), phyxcalc.SetVar("z", realVar(4)))
		st, err := phyxcalc.ParseString("x+y+z")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Clone().Exec(st)
		}
	})
	b.Run("units", func(b *testing.B) {
		b.ReportAllocs()
		ctx := phyxcalc.NewContext(phyxcalc.Fractions(true))
		st, err := phyxcalc.ParseString("60 mi/h * 90 min -> km")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Clone().Exec(st)
		}
	})
}

func Example() {
	ctx := phyxcalc.NewContext(phyxcalc.Fractions(true))
	lines := []string{
		"r = 4 m",
		"r^2",
		"r + 50 cm",
		"r -> ft",
		"unit furlong = 220 yd",
		"1 furlong -> m",
		"5 m + 3 s",
	}
	for i, src := range lines {
		st, err := phyxcalc.ParseString(src)
		if err != nil {
			fmt.Println(err)
			continue
		}
		v, err := ctx.Clone(phyxcalc.AtLine(i)).Exec(st)
		if err != nil {
			fmt.Printf("%s ! %v\n", src, err)
			continue
		}
		fmt.Printf("%s = %v\n", src, v)
	}

	// Output:
	// r = 4 m = 4 m
	// r^2 = 16 m^2
	// r + 50 cm = 9/2 m
	// r -> ft = 5000/381 ft
	// unit furlong = 220 yd = 220 yd
	// 1 furlong -> m = 25146/125 m
	// 5 m + 3 s ! error at position 0-9: Units not convertible
}
