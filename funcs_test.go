package phyxcalc

import (
	"errors"
	"math/big"
	"testing"
)

func TestBuiltinArity(t *testing.T) {
	cases := []struct {
		name string
		ok   []int
		bad  []int
	}{
		{"sin", []int{1}, []int{0, 2}},
		{"log", []int{1, 2}, []int{0, 3}},
		{"logn", []int{2}, []int{1, 3}},
		{"root", []int{2}, []int{1}},
		{"max", []int{1, 2, 100}, []int{0}},
		{"avg", []int{1, 5}, []int{0}},
		{"ncr", []int{2}, []int{1, 3}},
		{"heaviside", []int{1}, []int{0, 2}},
	}
	for _, c := range cases {
		f, ok := globalfuncs[c.name]
		if !ok {
			t.Errorf("no builtin %s", c.name)
			continue
		}
		for _, n := range c.ok {
			if !f.CanCall(n) {
				t.Errorf("%s can't be called with %d args", c.name, n)
			}
		}
		for _, n := range c.bad {
			if f.CanCall(n) {
				t.Errorf("%s can be called with %d args", c.name, n)
			}
		}
	}
	for name, f := range globalconsts {
		if !f.CanCall(0) || f.CanCall(1) {
			t.Errorf("constant %s has the wrong arity", name)
		}
	}
}

func TestBuiltinConstants(t *testing.T) {
	cases := []struct {
		name string
		dim  Dimension
	}{
		{"pi", Dimension{}},
		{"e", Dimension{}},
		{"c", Dim(1, 0, -1)},
		{"G", Dim(3, -1, -2)},
		{"g_n", Dim(1, 0, -2)},
		{"N_A", Dim(0, 0, 0, 0, 0, -1)},
		{"k_B", Dim(2, 1, -2, 0, -1)},
		{"h_P", Dim(2, 1, -1)},
		{"e_0", Dim(0, 0, 1, 1)},
	}
	for _, frac := range []bool{false, true} {
		ctx := NewContext(Fractions(frac))
		for _, c := range cases {
			v, err := globalconsts[c.name].Call(ctx, nil)
			if err != nil {
				t.Errorf("%s (fractions %t) failed: %v", c.name, frac, err)
				continue
			}
			if v.Unit.Dim() != c.dim {
				t.Errorf("%s has dimension %v, want %v", c.name, v.Unit.Dim(), c.dim)
			}
			if v.Num.Sign() <= 0 {
				t.Errorf("%s is %v", c.name, v)
			}
		}
	}
	i, err := globalconsts["i"].Call(NewContext(), nil)
	if err != nil || i.Num.Complex() != 1i {
		t.Errorf("i is %v, %v", i, err)
	}
}

func TestRoundingRats(t *testing.T) {
	cases := []struct {
		q                         string
		trunc, floor, ceil, round int64
	}{
		{"0", 0, 0, 0, 0},
		{"5/2", 2, 2, 3, 3},
		{"-5/2", -2, -3, -2, -3},
		{"7/3", 2, 2, 3, 2},
		{"-7/3", -2, -3, -2, -2},
		{"8/3", 2, 2, 3, 3},
		{"4", 4, 4, 4, 4},
		{"-4", -4, -4, -4, -4},
	}
	for _, c := range cases {
		q, _ := new(big.Rat).SetString(c.q)
		got := [4]int64{truncRat(q).Int64(), floorRat(q).Int64(), ceilRat(q).Int64(), roundRat(q).Int64()}
		want := [4]int64{c.trunc, c.floor, c.ceil, c.round}
		if got != want {
			t.Errorf("%s: want trunc/floor/ceil/round %v, got %v", c.q, want, got)
		}
	}
}

func TestFuncNaN(t *testing.T) {
	f := Monadic(func(ctx *Context, x Value) (Value, error) {
		z := new(big.Float)
		z.Quo(z, new(big.Float))
		return Value{Num: ownReal(z)}, nil
	})
	_, err := f.Call(NewContext(), []Value{{Num: NewInt(0)}})
	if !errors.Is(err, ErrCalculation) {
		t.Errorf("want calculation error from NaN, got %v", err)
	}
}

func TestVariadic(t *testing.T) {
	f := Variadic(2, 3, func(ctx *Context, args []Value) (Value, error) {
		return Value{Num: NewInt(int64(len(args)))}, nil
	})
	for n, want := range []bool{false, false, true, true, false} {
		if got := f.CanCall(n); got != want {
			t.Errorf("CanCall(%d) with 2..3: want %t, got %t", n, want, got)
		}
	}
	if f := Variadic(0, -1, nil); !f.CanCall(0) || !f.CanCall(1000) {
		t.Error("unbounded variadic rejects some count")
	}
}

func TestBuiltinErrors(t *testing.T) {
	cases := []struct {
		src  string
		kind ErrorKind
	}{
		{"max(1, i)", ErrComplex},
		{"max(1 m, 1 s)", ErrUnitsNotConvertible},
		{"round(i)", ErrComplex},
		{"sign(1 + i)", ErrComplex},
		{"ncr(5, -1)", ErrNegative},
		{"npr(5.5, 1)", ErrNonInteger},
		{"root(8, -3)", ErrNegative},
		{"atanh(1)", ErrCalculation},
		{"exp(1 m)", ErrNotDimensionless},
		{"log(2, 0)", ErrCalculation},
	}
	for _, c := range cases {
		_, err := Eval(c.src)
		if !errors.Is(err, c.kind) {
			t.Errorf("%q: want %v, got %v", c.src, c.kind, err)
		}
	}
}

func TestBuiltinDomains(t *testing.T) {
	cases := []struct {
		src     string
		complex bool
	}{
		{"asin(0.5)", false},
		{"asin(2)", true},
		{"acos(-2)", true},
		{"acosh(2)", false},
		{"acosh(0)", true},
		{"atanh(2)", true},
		{"root(-4, 2)", true},
		{"root(-8, 3)", false},
		{"log(-10)", true},
		{"sqrt(2)", false},
		{"arg(-1)", false},
		{"im(3)", false},
		{"re(2 + 3i)", false},
	}
	for _, c := range cases {
		v, err := Eval(c.src)
		if err != nil {
			t.Errorf("%q failed: %v", c.src, err)
			continue
		}
		if got := !v.Num.IsReal(); got != c.complex {
			t.Errorf("%q: want complex %t, got %v", c.src, c.complex, v)
		}
	}
}
