package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package is an [*Error] derived from one of
// these, so callers can classify failures with [errors.Is].
var (
	// ErrParse reports malformed source text.
	ErrParse = NewError("parse error")
	// ErrHeader reports a malformed or undecodable template header.
	ErrHeader = ErrParse.Derive("invalid header")
	// ErrMaxDepthExceeded reports expressions nested beyond the parser limit.
	ErrMaxDepthExceeded = ErrParse.Derive("maximum nesting depth exceeded")

	// ErrLookup reports a path that resolves to nothing.
	ErrLookup = NewError("lookup failed")

	// ErrType reports a value of the wrong kind for where it is used.
	ErrType = NewError("type error")
	// ErrArity reports a callable invoked with the wrong number of arguments.
	ErrArity = ErrType.Derive("argument count mismatch")

	// ErrReadInput reports a failure reading template source.
	ErrReadInput = NewError("failed to read input")

	// ErrUnquotable reports text that no escaping makes literal.
	ErrUnquotable = NewError("text cannot be quoted as an argument")
)

// Position identifies a location in template source text.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position formatted as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
		slog.Int("offset", p.Offset),
	)
}

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	pos   *Position   // Source position, if known
	base  *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Derive returns a new sentinel that refines e. Errors built from the
// result match both the result and e with [errors.Is].
func (e *Error) Derive(msg string) *Error {
	return &Error{msg: msg, base: e}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> at <pos>: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 2)

	if e.msg != "" {
		msg := e.msg
		if e.pos != nil {
			msg += " at line " + strconv.Itoa(e.pos.Line) +
				", column " + strconv.Itoa(e.pos.Column)
		}

		part = append(part, msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e was derived from target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	for b := e; b != nil; b = b.base {
		if b == t {
			return true
		}
	}

	return false
}

// Position returns the source position attached to e, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos != nil {
		attrs = append(attrs, slog.Any("position", *e.pos))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	c := e.clone()
	c.attrs = newAttrs

	return c
}

// WithPosition attaches a source position to the error.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = &pos

	return c
}

// clone returns a shallow copy of e whose base is e's sentinel.
// Copies of a sentinel record the sentinel itself as base, so that
// errors.Is matches regardless of how many times it was refined.
func (e *Error) clone() *Error {
	c := *e
	if e.base == nil || e.attrs == nil && e.err == nil && e.pos == nil {
		c.base = e
	}

	return &c
}

// Snippet renders the source line at the error position with a caret
// marking the column. It returns "" if e carries no position.
func (e *Error) Snippet(source string) string {
	if e.pos == nil {
		return ""
	}

	return formatSnippet(source, e.pos.Line, e.pos.Column)
}

// formatSnippet renders one line of source with a caret under col.
func formatSnippet(source string, line, col int) string {
	lines := strings.Split(source, "\n")
	if line <= 0 || line > len(lines) {
		return ""
	}

	var buf strings.Builder

	// Print the line with line number
	buf.WriteString("  ")
	buf.WriteString(strconv.Itoa(line))
	buf.WriteString(" | ")
	buf.WriteString(lines[line-1])
	buf.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(line))+5)

	if col > 0 {
		padding += strings.Repeat(" ", col-1)
	}

	buf.WriteString(padding + "^\n")

	return buf.String()
}
