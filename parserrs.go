package phyxcalc

import "strconv"

// OperatorError is an error indicating an operator token that is not
// understood by the parser. It implements InputError.
type OperatorError struct {
	// Start and End are the byte range of the operator.
	Start, End int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Start, err.End, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() (int, int) {
	return err.Start, err.End
}

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Start and End are the byte range of the offending bracket.
	Start, End int
	// Left is the opening bracket.
	Left string
	// Right is the mismatched closing bracket.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Start, err.End, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Start, err.End, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Start, err.End, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() (int, int) {
	return err.Start, err.End
}

// SeparatorError is an error indicating an illegal use of a comma or semicolon
// separator. It implements InputError.
type SeparatorError struct {
	// Start and End are the byte range of the separator.
	Start, End int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Start, err.End, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() (int, int) {
	return err.Start, err.End
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Start and End are the byte range of the token that ended the
	// subexpression.
	Start, End int
	// Tok is the token that ended the subexpression.
	Tok string
}

func (err *EmptyExpressionError) Error() string {
	if err.Tok == "" {
		if err.Start == 0 {
			return errpos(err.Start, err.End, "no expression")
		}
		return errpos(err.Start, err.End, "no expression at end")
	}
	return errpos(err.Start, err.End, "no expression up to "+strconv.Quote(err.Tok))
}

func (err *EmptyExpressionError) Pos() (int, int) {
	return err.Start, err.End
}

// DeclError is an error indicating a malformed declaration, such as an
// assignment to something other than a name or a function with a repeated
// parameter.
type DeclError struct {
	// Start and End are the byte range of the offending token.
	Start, End int
	// Reason describes what is wrong.
	Reason string
}

func (err *DeclError) Error() string {
	return errpos(err.Start, err.End, err.Reason)
}

func (err *DeclError) Pos() (int, int) {
	return err.Start, err.End
}

// errpos is a shortcut to create an error message with a position.
func errpos(start, end int, msg string) string {
	return strconv.Itoa(start) + "-" + strconv.Itoa(end) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the byte range of the token that caused the error. The end
	// is exclusive.
	Pos() (start, end int)
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*DeclError)(nil)
	_ InputError = (*LexError)(nil)
)
