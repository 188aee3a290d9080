package phyxcalc

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexToken struct {
	text string
	kind tokenKind
	// pos and end are the byte offsets of the token in the line.
	pos, end int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input or the start of a comment.
	tokenEOF
	// tokenNum is an integer, real, or hexadecimal token.
	tokenNum
	// tokenIdent is a variable, function, or unit name.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
	// tokenSep is a function arguments separator, either , or ;.
	tokenSep
	// tokenAssign is the = of a declaration.
	tokenAssign
	// tokenConvert is the -> of a unit conversion.
	tokenConvert
)

var tokenNames = [...]string{
	tokenNone:    "None",
	tokenEOF:     "EOF",
	tokenNum:     "Num",
	tokenIdent:   "Ident",
	tokenOp:      "Op",
	tokenOpen:    "Open",
	tokenClose:   "Close",
	tokenSep:     "Sep",
	tokenAssign:  "Assign",
	tokenConvert: "Convert",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/^×÷·"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in ClosedBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

func byteidcs(s string) []string {
	v := make([]string, len(s))
	for i, r := range s {
		v[i] = string(r)
	}
	return v
}

var (
	operstrs      = byteidcs(Operators)
	openbrackets  = byteidcs(OpenBrackets)
	closebrackets = byteidcs(CloseBrackets)
)

type lexer struct {
	src string
	// off is the byte offset of the next rune to scan.
	off int
	// hex enables 0x literals.
	hex bool
}

// peek returns the rune k runes past the current offset, or -1 past the end.
func (l *lexer) peek(k int) rune {
	off := l.off
	for ; k > 0 && off < len(l.src); k-- {
		_, sz := utf8.DecodeRuneInString(l.src[off:])
		off += sz
	}
	if off >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *lexer) advance() rune {
	r, sz := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += sz
	return r
}

// next scans the next token from the input. At the end of the input or at the
// start of a // comment, the result is an EOF token.
func (l *lexer) next() (lexToken, error) {
	for l.off < len(l.src) && unicode.IsSpace(l.peek(0)) {
		l.advance()
	}
	tok := lexToken{pos: l.off}
	r := l.peek(0)
	switch {
	case r < 0, r == '/' && l.peek(1) == '/':
		tok.kind = tokenEOF
		tok.pos = len(l.src)
		tok.end = len(l.src)
		l.off = len(l.src)
		return tok, nil
	case '0' <= r && r <= '9', r == '.':
		if err := l.scanNum(); err != nil {
			return tok, err
		}
		tok.kind = tokenNum
	case r == '%':
		l.advance()
		tok.kind = tokenIdent
	case r == '_', r == '°', unicode.IsLetter(r):
		l.scanIdent()
		tok.kind = tokenIdent
		// inf looks like an identifier, so check for it here.
		switch l.src[tok.pos:l.off] {
		case "inf", "Inf":
			tok.kind = tokenNum
		}
	case r == '∞':
		l.advance()
		tok.kind = tokenNum
	case r == ',', r == ';':
		l.advance()
		tok.kind = tokenSep
	case r == '=':
		l.advance()
		tok.kind = tokenAssign
	case r == '-' && l.peek(1) == '>', r == '→':
		if l.advance() == '-' {
			l.advance()
		}
		tok.kind = tokenConvert
	default:
		switch {
		case strings.ContainsRune(Operators, r):
			tok.kind = tokenOp
		case strings.ContainsRune(OpenBrackets, r):
			tok.kind = tokenOpen
		case strings.ContainsRune(CloseBrackets, r):
			tok.kind = tokenClose
		default:
			l.advance()
			return tok, l.error("", tok.pos)
		}
		l.advance()
	}
	tok.text = l.src[tok.pos:l.off]
	tok.end = l.off
	return tok, nil
}

func (l *lexer) scanNum() error {
	start := l.off
	if l.hex && l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		l.advance()
		l.advance()
		n := 0
		for r := l.peek(0); isHexDigit(r); r = l.peek(0) {
			l.advance()
			n++
		}
		if n == 0 {
			return l.error("number", start)
		}
		return nil
	}
	var dig, dot bool
	for {
		r := l.peek(0)
		switch {
		case '0' <= r && r <= '9':
			dig = true
		case r == '.':
			if dot {
				l.advance()
				return l.error("number", start)
			}
			dot = true
		case r == 'e' || r == 'E':
			// An exponent marker needs digits after it. Otherwise the e begins
			// a unit or name, as in 5em or 2e.
			k := 1
			if s := l.peek(1); s == '+' || s == '-' {
				k = 2
			}
			if d := l.peek(k); !dig || d < '0' || d > '9' {
				return l.numEnd(start, dig)
			}
			for ; k > 0; k-- {
				l.advance()
			}
			for d := l.peek(0); '0' <= d && d <= '9'; d = l.peek(0) {
				l.advance()
			}
			if l.peek(0) == '.' {
				l.advance()
				return l.error("number", start)
			}
			return nil
		default:
			return l.numEnd(start, dig)
		}
		l.advance()
	}
}

func (l *lexer) numEnd(start int, dig bool) error {
	if !dig {
		return l.error("number", start)
	}
	return nil
}

func isHexDigit(r rune) bool {
	return '0' <= r && r <= '9' || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
}

func (l *lexer) scanIdent() {
	l.advance()
	for {
		r := l.peek(0)
		switch {
		case r == '_', r == '°', r == '\'', unicode.IsLetter(r), unicode.IsDigit(r):
			l.advance()
		default:
			return
		}
	}
}

// lexAll scans a whole line. The last token is always an EOF token.
func lexAll(src string, hex bool) ([]lexToken, error) {
	l := lexer{src: src, hex: hex}
	var toks []lexToken
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokenEOF {
			return toks, nil
		}
	}
}

func (l *lexer) error(kind string, start int) error {
	return &LexError{
		Text:  l.src[start:l.off],
		Kind:  kind,
		Start: start,
		End:   l.off,
	}
}

// tokens is a scanned line that the parser reads with single-token pushback.
type tokens struct {
	toks   []lexToken
	i      int
	pushed bool
}

// next returns the next token. Past the end of the line, next keeps returning
// the final EOF token.
func (s *tokens) next() lexToken {
	k := s.i
	if k >= len(s.toks) {
		k = len(s.toks) - 1
	}
	s.i++
	s.pushed = false
	return s.toks[k]
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (s *tokens) push(tok lexToken) {
	if s.pushed {
		panic("phyxcalc: double push")
	}
	s.i--
	s.pushed = true
}

// must scans the pushed token. Panics if there is no pushed token.
func (s *tokens) must() lexToken {
	if !s.pushed {
		panic("phyxcalc: no pushed token")
	}
	return s.next()
}

// peek returns the token k positions ahead without consuming anything.
func (s *tokens) peek(k int) lexToken {
	k += s.i
	if k >= len(s.toks) {
		k = len(s.toks) - 1
	}
	return s.toks[k]
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the text of the invalid token.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number"
	// or the empty string (if a token kind hadn't been decided).
	Kind string
	// Start and End are the byte range of the invalid token.
	Start, End int
}

func (err *LexError) Error() string {
	if err.Kind == "" {
		return errpos(err.Start, err.End, "invalid token "+strconv.Quote(err.Text))
	}
	return errpos(err.Start, err.End, "invalid "+err.Kind+" token "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() (int, int) {
	return err.Start, err.End
}
