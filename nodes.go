package phyxcalc

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	name string

	left  *node
	right *node

	// start and end are the byte range of the source text the node came
	// from. end is exclusive.
	start, end int
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push lookup(name)

	nodeCall // name is the function to call, right is link to nodeArg unless niladic
	nodeArg  // name is "" or "," or ";", eval left, right is link to next arg

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right
	nodeNop // evaluate left

	nodeUnit    // evaluate left, annotate with unit expression right
	nodeConvert // evaluate left, convert to unit expression right
)

var nodeNames = [...]string{
	nodeNone:    "None",
	nodeNum:     "Num",
	nodeName:    "Name",
	nodeCall:    "Call",
	nodeArg:     "Arg",
	nodeNeg:     "Neg",
	nodeAdd:     "Add",
	nodeSub:     "Sub",
	nodeMul:     "Mul",
	nodeDiv:     "Div",
	nodePow:     "Pow",
	nodeNop:     "Nop",
	nodeUnit:    "Unit",
	nodeConvert: "Convert",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

// span creates a node covering the byte ranges of both operands.
func span(kind nodeKind, left, right *node) *node {
	return &node{kind: kind, left: left, right: right, start: left.start, end: right.end}
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square, alt)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square, alt)
		}
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b, !square, alt)
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b, !square, alt)
		if n.right != nil {
			n.right.fmt(b, !square, alt)
		}
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square, alt)
	case nodeAdd:
		n.left.fmt(b, !square, alt)
		b.WriteString(" + ")
		n.right.fmt(b, !square, alt)
	case nodeSub:
		n.left.fmt(b, !square, alt)
		b.WriteString(" - ")
		n.right.fmt(b, !square, alt)
	case nodeMul:
		n.left.fmt(b, !square, alt)
		if !alt {
			b.WriteString(" * ")
		} else {
			b.WriteString(" × ")
		}
		n.right.fmt(b, !square, alt)
	case nodeDiv:
		n.left.fmt(b, !square, alt)
		if !alt {
			b.WriteString(" / ")
		} else {
			b.WriteString(" ÷ ")
		}
		n.right.fmt(b, !square, alt)
	case nodePow:
		n.left.fmt(b, !square, alt)
		b.WriteString(" ^ ")
		n.right.fmt(b, !square, alt)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b, !square, alt)
	case nodeUnit:
		n.left.fmt(b, !square, alt)
		b.WriteByte(' ')
		n.right.fmtunit(b, !square, alt)
	case nodeConvert:
		n.left.fmt(b, !square, alt)
		b.WriteString(" -> ")
		n.right.fmt(b, !square, alt)
	default:
		panic("phyxcalc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// fmtunit writes the right side of a unit annotation. A bracket there would
// read back as multiplication, so names are written bare.
func (n *node) fmtunit(b *strings.Builder, square, alt bool) {
	switch n.kind {
	case nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b, square, alt)
	case nodePow:
		n.left.fmtunit(b, square, alt)
		b.WriteString(" ^ ")
		n.right.fmt(b, !square, alt)
	case nodeUnit:
		n.left.fmtunit(b, square, alt)
		b.WriteByte(' ')
		n.right.fmtunit(b, square, alt)
	default:
		n.fmt(b, square, alt)
	}
}

func (n *node) fmtargs(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	if n.right == nil {
		// Niladic call.
		return
	}
	n = n.right
	if n.kind != nodeArg {
		b.WriteString("***")
		n.fmt(b, !square, alt)
		return
	}
	n.left.fmt(b, !square, alt)
	for n.right != nil {
		n = n.right
		if n.kind != nodeArg {
			b.WriteString("***")
			n.fmt(b, !square, alt)
			return
		}
		b.WriteString(", ")
		n.left.fmt(b, !square, alt)
	}
}

// args collects the argument expressions of a call node.
func (n *node) args() []*node {
	var v []*node
	for l := n.right; l != nil; l = l.right {
		v = append(v, l.left)
	}
	return v
}
