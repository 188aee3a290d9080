package phyxcalc

import (
	"math"
	"sort"
	"strconv"
)

// BuiltinLine is the line at which builtin symbols are defined. They are
// visible from every line.
const BuiltinLine = math.MinInt

// ResultName is the name of the symbol holding the result of the most recent
// successfully evaluated expression line.
const ResultName = "ans"

// SymbolKind is the kind of a Symbol.
type SymbolKind uint8

const (
	SymVariable SymbolKind = iota
	SymConstant
	SymFunction
	SymUnit
)

func (k SymbolKind) String() string {
	switch k {
	case SymVariable:
		return "Variable"
	case SymConstant:
		return "Constant"
	case SymFunction:
		return "Function"
	case SymUnit:
		return "Unit"
	default:
		return "SymbolKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Symbol is a named definition in an environment.
type Symbol struct {
	Kind SymbolKind
	Name string
	// Value is the value of a variable or constant.
	Value Value
	// Params and Body define a user function.
	Params []string
	Body   *Expr
	// Func is the implementation of a builtin function.
	Func Func
	// Unit is the unit a unit symbol defines.
	Unit Unit
	// Line is the line that defined the symbol.
	Line int
}

// Builtin returns whether the symbol is predefined.
func (s Symbol) Builtin() bool {
	return s.Line == BuiltinLine
}

type definition struct {
	line int
	sym  Symbol
}

// Env is a line-scoped symbol table. Each name maps to its definitions in
// ascending line order; a lookup from line i sees the latest definition at a
// line before i. An Env is not safe for concurrent mutation.
type Env struct {
	defs map[string][]definition
}

// NewEmptyEnv creates an environment with no symbols at all. Most callers want
// NewEnv, which includes the builtins.
func NewEmptyEnv() *Env {
	return &Env{defs: make(map[string][]definition)}
}

// Define adds a symbol defined at line. A definition of the same name at the
// same line is replaced.
func (e *Env) Define(name string, sym Symbol, line int) {
	sym.Name = name
	sym.Line = line
	d := e.defs[name]
	k := sort.Search(len(d), func(i int) bool { return d[i].line >= line })
	if k < len(d) && d[k].line == line {
		d[k].sym = sym
		return
	}
	d = append(d, definition{})
	copy(d[k+1:], d[k:])
	d[k] = definition{line: line, sym: sym}
	e.defs[name] = d
}

// Resolve finds the latest definition of name at a line before from.
func (e *Env) Resolve(name string, from int) (Symbol, bool) {
	d := e.defs[name]
	k := sort.Search(len(d), func(i int) bool { return d[i].line >= from })
	if k == 0 {
		return Symbol{}, false
	}
	return d[k-1].sym, true
}

// Clear removes every definition except the builtins.
func (e *Env) Clear() {
	e.Truncate(BuiltinLine + 1)
}

// Truncate removes all definitions at lines at or after line.
func (e *Env) Truncate(line int) {
	for name, d := range e.defs {
		k := sort.Search(len(d), func(i int) bool { return d[i].line >= line })
		if k == 0 {
			delete(e.defs, name)
			continue
		}
		e.defs[name] = d[:k:k]
	}
}

// Undefine removes the definitions made at exactly one line.
func (e *Env) Undefine(line int) {
	for name, d := range e.defs {
		k := sort.Search(len(d), func(i int) bool { return d[i].line >= line })
		if k == len(d) || d[k].line != line {
			continue
		}
		if len(d) == 1 {
			delete(e.defs, name)
			continue
		}
		n := make([]definition, 0, len(d)-1)
		n = append(n, d[:k]...)
		e.defs[name] = append(n, d[k+1:]...)
	}
}

// Clone creates a copy of the environment which can be modified
// independently.
func (e *Env) Clone() *Env {
	n := &Env{defs: make(map[string][]definition, len(e.defs))}
	for name, d := range e.defs {
		n.defs[name] = append([]definition(nil), d...)
	}
	return n
}

// Names returns the sorted names of all symbols visible from a line.
func (e *Env) Names(from int) []string {
	var r []string
	for name, d := range e.defs {
		if len(d) > 0 && d[0].line < from {
			r = append(r, name)
		}
	}
	sort.Strings(r)
	return r
}
