package phyxcalc

import (
	"errors"
	"strconv"
)

// ErrorKind classifies a failure to evaluate a line. Each kind is itself an
// error, so errors.Is(err, ErrComplex) reports whether err has that kind.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota + 1
	ErrComplex
	ErrNegative
	ErrNonInteger
	ErrNotDimensionless
	ErrUnitsNotConvertible
	ErrPrefixMismatch
	ErrUnknownSymbol
	ErrCalculation
)

var kindmsgs = [...]string{
	ErrSyntax:              "Syntax error",
	ErrComplex:             "Value is complex",
	ErrNegative:            "Value is negative",
	ErrNonInteger:          "Only integer values",
	ErrNotDimensionless:    "Unit is not dimensionless",
	ErrUnitsNotConvertible: "Units not convertible",
	ErrPrefixMismatch:      "Prefix does not fit unit",
	ErrUnknownSymbol:       "Unknown variable",
	ErrCalculation:         "Calculation error",
}

func (k ErrorKind) Error() string {
	if k <= 0 || int(k) >= len(kindmsgs) {
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindmsgs[k]
}

// Error is a failure to parse or evaluate a line, located at a byte range of
// the line's text.
type Error struct {
	// Kind is the category of the failure.
	Kind ErrorKind
	// Start and End are the byte offsets of the failing part of the line.
	// End is exclusive.
	Start, End int
	// Err is the detailed cause, if any. For syntax errors it is an
	// InputError.
	Err error
}

func (err *Error) Error() string {
	return "error at position " + strconv.Itoa(err.Start) + "-" + strconv.Itoa(err.End) + ": " + err.Kind.Error()
}

// Unwrap returns the detailed cause, or the kind when there is none.
func (err *Error) Unwrap() []error {
	if err.Err == nil {
		return []error{err.Kind}
	}
	return []error{err.Kind, err.Err}
}

// kindOf extracts the kind of an error. Errors of no known kind are
// calculation errors.
func kindOf(err error) ErrorKind {
	var k ErrorKind
	if errors.As(err, &k) {
		return k
	}
	return ErrCalculation
}

// located attaches a byte range to err unless it already has one.
func located(err error, start, end int) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	r := &Error{Kind: kindOf(err), Start: start, End: end}
	if _, ok := err.(ErrorKind); !ok {
		r.Err = err
	}
	return r
}
