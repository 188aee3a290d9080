package phyxcalc

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Line = Decl | Expr | '=' anything | empty
// Decl = name '=' Expr | 'const' name '=' Expr | 'unit' name '=' Expr | name '(' [name {',' name}] ')' '=' Expr
// Expr = num | name | Call | Neg | Plus | Add | Sub | Mul | Div | Pow | Unit | Convert | '(' Expr ')' | '[' Expr ']' | '{' Expr '}'
// Call = name '(' [Expr { (',' | ';') Expr }] ')', with no space before the bracket
// Neg = '-' Expr
// Plus = '+' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr '×' Expr | Expr '·' Expr | Expr '(' Expr ')' | Expr num
// Div = Expr '/' Expr | Expr '÷' Expr
// Pow = Expr '^' Expr
// Unit = Expr name, binding tighter than Mul and looser than Pow
// Convert = Expr '->' Expr | Expr '→' Expr

// StmtKind is the kind of a parsed line.
type StmtKind uint8

const (
	// StmtEmpty is a blank or comment-only line.
	StmtEmpty StmtKind = iota
	// StmtOutput is a line beginning with =, which holds a previously
	// printed result and is not evaluated.
	StmtOutput
	// StmtExpr is a bare expression. Its result becomes the current result.
	StmtExpr
	// StmtVar defines a variable.
	StmtVar
	// StmtConst defines a constant.
	StmtConst
	// StmtFunc defines a function.
	StmtFunc
	// StmtUnit defines a unit.
	StmtUnit
)

var stmtNames = [...]string{
	StmtEmpty:  "Empty",
	StmtOutput: "Output",
	StmtExpr:   "Expr",
	StmtVar:    "Var",
	StmtConst:  "Const",
	StmtFunc:   "Func",
	StmtUnit:   "Unit",
}

func (k StmtKind) String() string {
	if int(k) >= len(stmtNames) {
		return "StmtKind(" + strconv.Itoa(int(k)) + ")"
	}
	return stmtNames[k]
}

// Statement is a parsed line of a document.
type Statement struct {
	// Kind is the kind of line.
	Kind StmtKind
	// Name is the declared name for declarations.
	Name string
	// Params is the parameter list of a function declaration.
	Params []string
	// Expr is the expression or declaration body. It is nil for empty and
	// output lines.
	Expr *Expr

	// nstart and nend are the byte range of the declared name.
	nstart, nend int
}

// Defines returns the names a statement binds when it evaluates
// successfully.
func (st *Statement) Defines() []string {
	switch st.Kind {
	case StmtExpr:
		return []string{ResultName}
	case StmtVar, StmtConst, StmtFunc, StmtUnit:
		return []string{st.Name}
	default:
		return nil
	}
}

// Expr is a parsed expression that can be evaluated with a context.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the list of names used in the expression.
	names []string
	// src is the line the expression was parsed from.
	src string
}

// Parse parses one line of a document. Syntax errors are returned as *Error
// with kind ErrSyntax, wrapping an InputError that describes the problem.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Statement, error) {
	var b strings.Builder
	for {
		r, _, err := src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		b.WriteRune(r)
	}
	return ParseString(b.String(), opts...)
}

// ParseString is a shortcut to parse a line held in a string.
func ParseString(src string, opts ...ParseOption) (*Statement, error) {
	p := parsectx{names: make(map[string]bool)}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	st, err := parseline(src, &p)
	if err != nil {
		var ie InputError
		if errors.As(err, &ie) {
			start, end := ie.Pos()
			return nil, &Error{Kind: ErrSyntax, Start: start, End: end, Err: err}
		}
		return nil, err
	}
	return st, nil
}

// ParseExpr parses a line that must be a bare expression.
func ParseExpr(src string, opts ...ParseOption) (*Expr, error) {
	st, err := ParseString(src, opts...)
	if err != nil {
		return nil, err
	}
	if st.Kind != StmtExpr {
		return nil, &Error{Kind: ErrSyntax, Start: 0, End: len(src), Err: &DeclError{Start: 0, End: len(src), Reason: "not an expression"}}
	}
	return st.Expr, nil
}

func parseline(src string, p *parsectx) (*Statement, error) {
	if strings.HasPrefix(strings.TrimLeftFunc(src, unicode.IsSpace), "=") {
		return &Statement{Kind: StmtOutput}, nil
	}
	toks, err := lexAll(src, p.hex)
	if err != nil {
		return nil, err
	}
	scan := &tokens{toks: toks}
	st := Statement{Kind: StmtExpr}
	t0, t1 := scan.peek(0), scan.peek(1)
	switch {
	case t0.kind == tokenEOF:
		return &Statement{Kind: StmtEmpty}, nil
	case t0.kind == tokenIdent && (t0.text == "const" || t0.text == "unit") && t1.kind == tokenIdent && scan.peek(2).kind == tokenAssign:
		st.Kind = StmtConst
		if t0.text == "unit" {
			st.Kind = StmtUnit
		}
		st.Name, st.nstart, st.nend = t1.text, t1.pos, t1.end
		scan.i += 3
	case t0.kind == tokenIdent && t1.kind == tokenAssign:
		st.Kind = StmtVar
		st.Name, st.nstart, st.nend = t0.text, t0.pos, t0.end
		scan.i += 2
	case t0.kind == tokenIdent && t1.kind == tokenOpen && t1.text == "(" && t1.pos == t0.end && hasAssign(toks):
		st.Kind = StmtFunc
		st.Name, st.nstart, st.nend = t0.text, t0.pos, t0.end
		st.Params, err = parseparams(scan)
		if err != nil {
			return nil, err
		}
	}
	n, err := parseterm(scan, p, exprprec)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if end.kind != tokenEOF {
		return nil, itShouldNotHaveEndedThisWay(end, -1)
	}
	if n == nil {
		return nil, &EmptyExpressionError{Start: end.pos, End: end.end}
	}
	for _, name := range st.Params {
		// Parameters are bound by the call, not looked up.
		delete(p.names, name)
	}
	st.Expr = &Expr{n: n, src: src, names: make([]string, 0, len(p.names))}
	for k := range p.names {
		st.Expr.names = append(st.Expr.names, k)
	}
	sortstrs(st.Expr.names)
	return &st, nil
}

func hasAssign(toks []lexToken) bool {
	for _, tok := range toks {
		if tok.kind == tokenAssign {
			return true
		}
	}
	return false
}

// parseparams parses the head of a function declaration, f(a, b) =, leaving
// the scanner at the start of the body.
func parseparams(scan *tokens) ([]string, error) {
	scan.next() // name
	scan.next() // (
	var params []string
	for {
		tok := scan.next()
		switch {
		case tok.kind == tokenClose && tok.text == ")" && len(params) == 0:
		case tok.kind == tokenIdent:
			for _, p := range params {
				if p == tok.text {
					return nil, &DeclError{Start: tok.pos, End: tok.end, Reason: "repeated parameter " + strconv.Quote(tok.text)}
				}
			}
			params = append(params, tok.text)
			tok = scan.next()
			if tok.kind == tokenSep {
				continue
			}
			if tok.kind != tokenClose || tok.text != ")" {
				return nil, &DeclError{Start: tok.pos, End: tok.end, Reason: "expected , or ) in parameter list"}
			}
		default:
			return nil, &DeclError{Start: tok.pos, End: tok.end, Reason: "expected parameter name"}
		}
		tok = scan.next()
		if tok.kind != tokenAssign {
			return nil, &DeclError{Start: tok.pos, End: tok.end, Reason: "expected = after parameter list"}
		}
		return params, nil
	}
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *tokens, p *parsectx, until operator) (*node, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok := scan.next()
		switch tok.kind {
		case tokenIdent:
			// (parsed) m -> (parsed) annotated with m
			// (parsed) m^2 -> (parsed) annotated with m^2
			// a^(parsed) m -> (a^(parsed)) annotated with m
			scan.push(tok)
			prec := unitprec
			if !prec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = span(nodeUnit, n, rhs)
		case tokenNum:
			// (parsed) 2 -> (parsed) * (2)
			scan.push(tok)
			prec := termprec
			if !prec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = span(nodeMul, n, rhs)
		case tokenOp:
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Start: tok.pos, End: tok.end, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.must()
				return nil, &EmptyExpressionError{Start: end.pos, End: end.end, Tok: end.text}
			}
			n = span(prec.op, n, rhs)
		case tokenConvert:
			prec := convprec
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.must()
				return nil, &EmptyExpressionError{Start: end.pos, End: end.end, Tok: end.text}
			}
			n = span(nodeConvert, n, rhs)
		case tokenOpen:
			// Calls are parsed in parselhs, so this is a multiplication by a
			// bracketed term: 2 (expr) -> (2) * (expr).
			match := rightbracket(tok.text)
			prec := termprec
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, exprprec)
			if err != nil {
				return nil, err
			}
			end := scan.must()
			if end.kind != tokenClose || end.text != closebrackets[match] {
				return nil, itShouldNotHaveEndedThisWay(end, match)
			}
			if rhs == nil {
				return nil, &EmptyExpressionError{Start: end.pos, End: end.end, Tok: end.text}
			}
			rhs.start, rhs.end = tok.pos, end.end
			n = span(nodeMul, n, rhs)
		case tokenClose, tokenSep, tokenEOF, tokenAssign:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("phyxcalc: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary
// and any encountered token must be valid as the start of a subexpression.
func parselhs(scan *tokens, p *parsectx, until operator) (*node, error) {
	tok := scan.next()
	var n *node
	switch tok.kind {
	case tokenNum:
		n = &node{kind: nodeNum, name: tok.text, start: tok.pos, end: tok.end}
	case tokenIdent:
		open := scan.peek(0)
		if open.kind != tokenOpen || open.pos != tok.end {
			p.names[tok.text] = true
			n = &node{kind: nodeName, name: tok.text, start: tok.pos, end: tok.end}
			break
		}
		scan.next()
		match := rightbracket(open.text)
		args, err := parsearglist(scan, p, open)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			panic("phyxcalc: parsearglist ended on " + end.String() + " instead of close bracket")
		}
		if end.text != closebrackets[match] {
			return nil, &BracketError{Start: end.pos, End: end.end, Left: open.text, Right: end.text}
		}
		n = &node{kind: nodeCall, name: tok.text, right: args, start: tok.pos, end: end.end}
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Start: tok.pos, End: tok.end, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			end := scan.must()
			return nil, &EmptyExpressionError{Start: end.pos, End: end.end, Tok: end.text}
		}
		n = &node{kind: prec.op, left: rhs, start: tok.pos, end: rhs.end}
	case tokenOpen:
		match := rightbracket(tok.text)
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose || end.text != closebrackets[match] {
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Start: end.pos, End: end.end, Tok: end.text}
		}
		rhs.start, rhs.end = tok.pos, end.end
		n = rhs
	case tokenClose:
		// This might be part of niladic func(), so just let the caller decide
		// what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		return nil, &SeparatorError{Start: tok.pos, End: tok.end, Sep: tok.text}
	case tokenEOF, tokenAssign, tokenConvert:
		return nil, &EmptyExpressionError{Start: tok.pos, End: tok.end, Tok: tok.text}
	default:
		panic("phyxcalc: unknown token: " + tok.String())
	}
	return n, nil
}

// parsearglist parses a bracketed list of zero or more args.
func parsearglist(scan *tokens, p *parsectx, open lexToken) (*node, error) {
	var n node
	l := &n
	len := 0
	pb := ""
	for {
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			// As a special case, reporting mismatched brackets is more helpful
			// than empty expression, if that's what we'd do here.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.Tok == "" {
				err = &BracketError{Start: open.pos, End: open.end, Left: open.text}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			// Caller checks that brackets match.
			scan.push(end)
			if rhs == nil {
				// No expression parsed.
				// func() is allowed, but func(a,) isn't.
				if len != 0 {
					return nil, &EmptyExpressionError{Start: end.pos, End: end.end, Tok: end.text}
				}
				return nil, nil
			}
			l.right = &node{kind: nodeArg, name: pb, left: rhs, start: rhs.start, end: rhs.end}
			return n.right, nil
		case tokenSep:
			if rhs == nil {
				return nil, &SeparatorError{Start: end.pos, End: end.end, Sep: end.text}
			}
			len++
			l.right = &node{kind: nodeArg, name: pb, left: rhs, start: rhs.start, end: rhs.end}
			l = l.right
			pb = end.text
		case tokenEOF:
			return nil, &BracketError{Start: open.pos, End: open.end, Left: open.text, Right: ""}
		case tokenAssign:
			return nil, itShouldNotHaveEndedThisWay(end, -1)
		default:
			panic("phyxcalc: parseexpr ended on non-end token " + end.String())
		}
	}
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("phyxcalc: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket rune index that
// the expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Start: tok.pos, End: tok.end, Left: leftbracket(match), Right: ""}
	case tokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Start: tok.pos, End: tok.end, Left: leftbracket(match), Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Start: tok.pos, End: tok.end, Sep: tok.text}
	case tokenAssign:
		return &DeclError{Start: tok.pos, End: tok.end, Reason: "only a name or function head can be assigned"}
	default:
		panic("phyxcalc: it really should not have ended this way: " + tok.String())
	}
}

// Vars returns the names used when evaluating the expression, excluding
// called functions and function parameters.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false, true)
	return b.String()
}

// Source returns the text the expression was parsed from.
func (e *Expr) Source() string {
	return e.src[e.n.start:e.n.end]
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*", "×", "·":
		return operator{5, false, nodeMul}
	case "/", "÷":
		return operator{5, false, nodeDiv}
	case "^":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, nodeNop}
	case "-":
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

var (
	// termprec is the precedence of implicit multiplication. Its prec
	// should match that of multiplication.
	termprec = operator{5, true, nodeMul}
	// unitprec is the precedence of a unit suffix. It binds tighter than
	// multiplication so 5 m/s is (5 m)/s, and looser than exponentiation so
	// 2 m^2 is 2 (m^2).
	unitprec = operator{7, true, nodeUnit}
	// convprec is the precedence of a unit conversion, the loosest operator.
	convprec = operator{0, false, nodeConvert}
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
)
