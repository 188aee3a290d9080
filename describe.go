package phyxcalc

import (
	"strconv"
	"strings"
)

// Description is the information about a symbol shown by an inspector.
type Description struct {
	Kind SymbolKind
	Name string
	// Value is the value of a variable or constant.
	Value Value
	// Dimension, Scale, and Offset describe a unit, or the unit of a value.
	Dimension Dimension
	Scale     float64
	Offset    float64
	// Params and Expr describe a user function. Expr is the source text of
	// the function body.
	Params []string
	Expr   string
	// Line is the defining line. It is BuiltinLine for builtins and registry
	// units.
	Line    int
	Builtin bool
}

func (d Description) String() string {
	var b strings.Builder
	b.WriteString(d.Kind.String())
	b.WriteByte(' ')
	b.WriteString(d.Name)
	if d.Kind == SymFunction && !d.Builtin {
		b.WriteString("(" + strings.Join(d.Params, ", ") + ")")
	}
	switch {
	case d.Builtin:
		b.WriteString(" (builtin)")
	default:
		b.WriteString(" (line " + strconv.Itoa(d.Line+1) + ")")
	}
	switch d.Kind {
	case SymVariable, SymConstant:
		b.WriteString("\nValue: " + d.Value.String())
		b.WriteString("\nDimension: " + d.Dimension.String())
	case SymUnit:
		b.WriteString("\nDimension: " + d.Dimension.String())
		b.WriteString("\nScale: " + strconv.FormatFloat(d.Scale, 'g', -1, 64))
		if d.Offset != 0 {
			b.WriteString("\nOffset: " + strconv.FormatFloat(d.Offset, 'g', -1, 64))
		}
	case SymFunction:
		if d.Expr != "" {
			b.WriteString("\nExpression: " + d.Expr)
		}
	}
	return b.String()
}

// Describe describes the symbol a name resolves to from the context's line.
// Names that are not symbols are looked up as units, including prefixed
// forms. Unresolvable names are ErrUnknownSymbol.
func (ctx *Context) Describe(name string) (Description, error) {
	sym, ok := ctx.env.Resolve(name, ctx.line)
	if !ok {
		u, err := ctx.unit(name)
		if err != nil {
			return Description{}, err
		}
		return Description{
			Kind:      SymUnit,
			Name:      name,
			Value:     Value{Num: one(), Unit: u},
			Dimension: u.Dim(),
			Scale:     u.Scale(),
			Offset:    u.Offset(),
			Line:      BuiltinLine,
			Builtin:   true,
		}, nil
	}
	d := Description{Kind: sym.Kind, Name: name, Line: sym.Line, Builtin: sym.Builtin()}
	switch sym.Kind {
	case SymVariable, SymConstant:
		d.Value = sym.Value
		if sym.Func != nil {
			v, err := sym.Func.Call(ctx, nil)
			if err != nil {
				return Description{}, err
			}
			d.Value = v
		}
		d.Dimension = d.Value.Unit.Dim()
		d.Scale = d.Value.Unit.Scale()
		d.Offset = d.Value.Unit.Offset()
	case SymUnit:
		d.Value = Value{Num: one(), Unit: sym.Unit}
		d.Dimension = sym.Unit.Dim()
		d.Scale = sym.Unit.Scale()
		d.Offset = sym.Unit.Offset()
	case SymFunction:
		d.Params = append([]string(nil), sym.Params...)
		if sym.Body != nil {
			d.Expr = sym.Body.Source()
		}
	}
	return d, nil
}

// Describe describes a symbol as seen from the end of the document.
func (d *Document) Describe(name string) (Description, error) {
	return d.DescribeAt(name, d.Len())
}

// DescribeAt describes a symbol as seen from a line, i.e. using only the
// definitions before that line.
func (d *Document) DescribeAt(name string, line int) (Description, error) {
	return d.Context(line).Describe(name)
}
