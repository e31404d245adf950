package lang

import (
	"log/slog"
	"strings"
)

// Kind identifies the variant of a [Value].
type Kind int

const (
	// KindText is atomic textual content.
	KindText Kind = iota

	// KindList is an ordered sequence of values.
	KindList

	// KindCallable is a function from positional values to text.
	KindCallable

	// KindContext is a hierarchy of values addressed by path.
	KindContext
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"

	case KindList:
		return "List"

	case KindCallable:
		return "Callable"

	case KindContext:
		return "Context"

	default:
		return "Unknown"
	}
}

// Value is the runtime representation of data during evaluation.
//
// The set of variants is closed: [Text], [List], [Callable] and any
// [Context]. Code that needs to branch on the variant should use a type
// switch over those types or compare [Value.Kind].
type Value interface {
	Kind() Kind
	isValue()
}

// Text is atomic textual content.
type Text string

// List is an ordered sequence of values.
type List []Value

// Callable is an opaque function invoked with positional arguments.
// It always produces text, or an error that aborts the evaluation.
type Callable func(args []Value) (Text, error)

// Kind implements [Value].
func (Text) Kind() Kind { return KindText }

// Kind implements [Value].
func (List) Kind() Kind { return KindList }

// Kind implements [Value].
func (Callable) Kind() Kind { return KindCallable }

func (Text) isValue()     {}
func (List) isValue()     {}
func (Callable) isValue() {}

// String returns the text content.
func (t Text) String() string { return string(t) }

// Call invokes c with variadic arguments.
func (c Callable) Call(args ...Value) (Text, error) {
	return c(args)
}

// Concat concatenates values that must all be [Text].
// It returns the first non-text value and false otherwise.
func Concat(vals []Value) (Text, Value, bool) {
	var sb strings.Builder

	for _, v := range vals {
		t, ok := v.(Text)
		if !ok {
			return "", v, false
		}

		sb.WriteString(string(t))
	}

	return Text(sb.String()), nil, true
}

// checkArity returns an [ErrArity] error if got differs from want.
func checkArity(name string, want, got int) error {
	if want == got {
		return nil
	}

	return ErrArity.With(
		slog.String("callable", name),
		slog.Int("expected", want),
		slog.Int("got", got),
	)
}

// kindOf returns the kind name of v, tolerating nil.
func kindOf(v Value) string {
	if v == nil {
		return "nil"
	}

	return v.Kind().String()
}
