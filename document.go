package phyxcalc

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/zephyrtronium/phyxcalc/internal/logger"
)

// LineState is the evaluation state of a document line.
type LineState uint8

const (
	// Unparsed lines need to be parsed and evaluated.
	Unparsed LineState = iota
	// Parsed lines have a cached statement but no current result.
	Parsed
	// Evaluated lines have a current result, which may be an error.
	Evaluated
)

func (s LineState) String() string {
	switch s {
	case Unparsed:
		return "Unparsed"
	case Parsed:
		return "Parsed"
	case Evaluated:
		return "Evaluated"
	default:
		return "LineState(" + strconv.Itoa(int(s)) + ")"
	}
}

// ErrLineRange is returned for line indices outside a document.
var ErrLineRange = errors.New("phyxcalc: line index out of range")

// Result is the outcome of evaluating one line.
type Result struct {
	Line int
	Kind StmtKind
	// Name is the declared name for declarations.
	Name string
	// Value is the value of an expression, variable, constant, or unit line.
	Value Value
	// Err is the failure, if any.
	Err *Error
}

// OK reports whether the line evaluated without error.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text is the result as it would be shown next to the line: the value, the
// error message, or nothing for lines without a value.
func (r Result) Text() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	switch r.Kind {
	case StmtEmpty, StmtOutput, StmtFunc:
		return ""
	default:
		return r.Value.String()
	}
}

type docLine struct {
	text  string
	stmt  *Statement
	state LineState
	res   Result
	// deps are the names the line looked up during its last evaluation.
	deps map[string]bool
}

// defines returns the names the line's last parse binds.
func (l *docLine) defines() []string {
	if l.stmt == nil {
		return nil
	}
	return l.stmt.Defines()
}

// dirty returns an unevaluated copy of the line which keeps the information
// needed to propagate later edits.
func (l *docLine) dirty() *docLine {
	n := &docLine{text: l.text, stmt: l.stmt, res: l.res, deps: l.deps}
	if n.stmt != nil {
		n.state = Parsed
	}
	return n
}

// Document is an ordered sequence of lines evaluated in order, each against
// the definitions of the lines before it. Edits mark lines dirty and
// Recalculate re-evaluates only those. A Document is safe for concurrent use;
// readers always see the state before or after a whole pass, never part of
// one.
type Document struct {
	// wmu serializes writers.
	wmu sync.Mutex
	// mu guards the published lines and env.
	mu    sync.RWMutex
	lines []*docLine
	env   *Env

	// base holds the evaluation options. It is never used directly, only
	// cloned.
	base  *Context
	popts []ParseOption
}

// DocOption configures a Document.
type DocOption func(*Document)

// WithContext sets options for evaluating lines, e.g. Prec or Fractions.
// WithEnv and AtLine are ignored.
func WithContext(opts ...ContextOption) DocOption {
	return func(d *Document) {
		d.base = d.base.Clone(opts...)
	}
}

// WithParse sets options for parsing lines.
func WithParse(opts ...ParseOption) DocOption {
	return func(d *Document) {
		d.popts = append(d.popts, opts...)
	}
}

// NewDocument creates an empty document.
func NewDocument(opts ...DocOption) *Document {
	d := &Document{base: NewContext()}
	for _, opt := range opts {
		opt(d)
	}
	d.env = d.freshEnv()
	return d
}

// freshEnv creates an environment holding only the builtins.
func (d *Document) freshEnv() *Env {
	return NewEnv()
}

// snapshot copies the published state for a writer to modify.
func (d *Document) snapshot() ([]*docLine, *Env) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*docLine(nil), d.lines...), d.env.Clone()
}

func (d *Document) publish(lines []*docLine, env *Env) {
	d.mu.Lock()
	d.lines, d.env = lines, env
	d.mu.Unlock()
}

// Load replaces the document's lines and evaluates all of them.
func (d *Document) Load(ctx context.Context, text []string) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	lines := make([]*docLine, len(text))
	for i, s := range text {
		lines[i] = &docLine{text: s}
	}
	logger.Info("load %d lines", len(lines))
	env := d.freshEnv()
	err := d.pass(ctx, lines, env)
	d.publish(lines, env)
	return err
}

// Edit replaces the text of line i and marks it dirty, along with every later
// line that depends on a name the edited line defines or used to define. The
// marking is transitive: a dirtied line's own definitions dirty their
// dependents too. Call Recalculate to evaluate the dirty lines.
func (d *Document) Edit(i int, text string) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	lines, env := d.snapshot()
	if i < 0 || i >= len(lines) {
		return ErrLineRange
	}
	names := make(map[string]bool)
	for _, name := range lines[i].defines() {
		names[name] = true
	}
	nl := &docLine{text: text}
	if st, err := ParseString(text, d.popts...); err == nil {
		nl.stmt, nl.state = st, Parsed
	}
	for _, name := range nl.defines() {
		names[name] = true
	}
	lines[i] = nl
	env.Undefine(i)
	n := 1
	for j := i + 1; j < len(lines); j++ {
		l := lines[j]
		if l.state == Evaluated && !intersects(l.deps, names) {
			continue
		}
		for _, name := range l.defines() {
			names[name] = true
		}
		if l.state == Evaluated {
			lines[j] = l.dirty()
			env.Undefine(j)
			n++
		}
	}
	logger.Debug("edit line %d: %d lines dirty", i, n)
	d.publish(lines, env)
	return nil
}

func intersects(deps, names map[string]bool) bool {
	for name := range names {
		if deps[name] {
			return true
		}
	}
	return false
}

// Insert adds a line before line i. If i is the number of lines, the line is
// appended. The new line and every line after it become dirty.
func (d *Document) Insert(i int, text string) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	lines, env := d.snapshot()
	if i < 0 || i > len(lines) {
		return ErrLineRange
	}
	lines = append(lines, nil)
	copy(lines[i+1:], lines[i:])
	lines[i] = &docLine{text: text}
	d.invalidate(lines, env, i)
	d.publish(lines, env)
	return nil
}

// Delete removes line i. Every line after it becomes dirty.
func (d *Document) Delete(i int) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	lines, env := d.snapshot()
	if i < 0 || i >= len(lines) {
		return ErrLineRange
	}
	lines = append(lines[:i], lines[i+1:]...)
	d.invalidate(lines, env, i)
	d.publish(lines, env)
	return nil
}

// invalidate marks lines from k on dirty and drops their definitions.
func (d *Document) invalidate(lines []*docLine, env *Env, k int) {
	env.Truncate(k)
	for j := k; j < len(lines); j++ {
		if lines[j].state == Evaluated {
			lines[j] = lines[j].dirty()
		}
	}
	logger.Debug("invalidate lines %d to %d", k, len(lines))
}

// Recalculate evaluates the dirty lines in order. If ctx is cancelled, the
// lines evaluated so far are kept and the rest stay dirty.
func (d *Document) Recalculate(ctx context.Context) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	lines, env := d.snapshot()
	err := d.pass(ctx, lines, env)
	d.publish(lines, env)
	return err
}

// RecalculateAll evaluates every line from scratch against a new environment.
func (d *Document) RecalculateAll(ctx context.Context) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	lines, _ := d.snapshot()
	env := d.freshEnv()
	for i, l := range lines {
		lines[i] = l.dirty()
	}
	err := d.pass(ctx, lines, env)
	d.publish(lines, env)
	return err
}

// RecalculateFromLine keeps the results and definitions of lines before k and
// evaluates line k and every line after it again. Lines before k that are
// still dirty are evaluated as well.
func (d *Document) RecalculateFromLine(ctx context.Context, k int) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	lines, env := d.snapshot()
	if k < 0 || k > len(lines) {
		return ErrLineRange
	}
	d.invalidate(lines, env, k)
	err := d.pass(ctx, lines, env)
	d.publish(lines, env)
	return err
}

// ClearVariables removes every user definition and marks all lines dirty, so
// that the next recalculation rebuilds the definitions.
func (d *Document) ClearVariables() {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	lines, env := d.snapshot()
	env.Clear()
	for i, l := range lines {
		if l.state == Evaluated {
			lines[i] = l.dirty()
		}
	}
	logger.Info("cleared variables")
	d.publish(lines, env)
}

// pass evaluates every line that is not Evaluated, in order.
func (d *Document) pass(ctx context.Context, lines []*docLine, env *Env) error {
	logger.Section("recalculate")
	defer logger.Timed("pass")()
	n := 0
	for i, l := range lines {
		if l.state == Evaluated {
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("recalculation cancelled at line %d after %d lines", i, n)
			return err
		}
		lines[i] = d.evalLine(i, l.text, env)
		n++
	}
	logger.Info("evaluated %d of %d lines", n, len(lines))
	return nil
}

// evalLine parses and evaluates one line, replacing the line's definitions
// in env.
func (d *Document) evalLine(i int, text string, env *Env) *docLine {
	env.Undefine(i)
	l := &docLine{text: text, state: Evaluated}
	st, err := ParseString(text, d.popts...)
	if err != nil {
		l.res = Result{Line: i, Err: asError(err)}
		logger.Debug("line %d: %v", i, err)
		return l
	}
	l.stmt = st
	c := d.base.Clone(WithEnv(env), AtLine(i))
	v, err := c.Exec(st)
	l.deps = c.deps
	l.res = Result{Line: i, Kind: st.Kind, Name: st.Name, Value: v}
	if err != nil {
		l.res.Err = asError(err)
		logger.Debug("line %d: %v", i, err)
	}
	return l
}

// asError converts any error to *Error.
func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: kindOf(err), Err: err}
}

// Result returns the result of line i. The result is false if the index is
// out of range or the line has not been evaluated since its last change.
func (d *Document) Result(i int) (Result, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) || d.lines[i].state != Evaluated {
		return Result{}, false
	}
	return d.lines[i].res, true
}

// Results returns the latest result of every line. Dirty lines report their
// result from before they became dirty, if any.
func (d *Document) Results() []Result {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r := make([]Result, len(d.lines))
	for i, l := range d.lines {
		r[i] = l.res
		r[i].Line = i
	}
	return r
}

// State returns the state of line i.
func (d *Document) State(i int) LineState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return Unparsed
	}
	return d.lines[i].state
}

// Lines returns the text of each line.
func (d *Document) Lines() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r := make([]string, len(d.lines))
	for i, l := range d.lines {
		r[i] = l.text
	}
	return r
}

// Len returns the number of lines.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// String returns the document text with one line per editor line.
func (d *Document) String() string {
	return strings.Join(d.Lines(), "\n")
}

// Context returns an evaluation context seeing the definitions before line.
// The context has its own copy of the environment, so it is unaffected by
// later edits and can evaluate expressions while the document changes.
func (d *Document) Context(line int) *Context {
	d.mu.RLock()
	env := d.env.Clone()
	d.mu.RUnlock()
	return d.base.Clone(WithEnv(env), AtLine(line))
}
