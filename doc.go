// Package phyxcalc implements a document calculator for physical quantities.
//
// A document is a sequence of lines. Each line is an expression, like
// "5 m + 3 ft", or a declaration: "x = 4", "const g0 = 9.81 m/s^2",
// "f(a, b) = a^2 + b", or "unit mph = 1 mi/h". Lines only see the definitions
// made on earlier lines, and the result of the latest expression line is
// available as ans.
//
// Units follow numbers, as in "5 km/h", and bind tighter than multiplication
// but looser than exponentiation, so "2 m^2" is two square meters and
// "5 m/s" is five meters per second. Prefixes combine with prefixable units,
// so km and µs work without being declared. "expr -> unit" converts. Adding
// values of different dimensions fails; adding compatible units converts the
// right operand to the left operand's unit.
//
// Numbers are arbitrary-precision reals by default, exact fractions with the
// Fractions option, and complex where a real result does not exist, e.g.
// sqrt(-1).
//
// Document tracks which names each line looked up, so that an edit only
// re-evaluates the lines it can affect.
package phyxcalc
