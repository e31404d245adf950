package cmd

import (
	"errors"
	"log/slog"
	"slices"
)

// Error is a command failure. Sentinels are created with [NewError];
// [Error.Wrap] and [Error.With] derive new errors that still match their
// sentinel with [errors.Is].
type Error struct {
	root  *Error // sentinel this error derives from, nil for sentinels
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel [Error] with the given message.
func NewError(msg string) *Error { return &Error{msg: msg} }

func (e *Error) sentinel() *Error {
	if e.root != nil {
		return e.root
	}

	return e
}

func (e *Error) derive() *Error {
	return &Error{root: e.sentinel(), msg: e.msg, err: e.err, attrs: e.attrs}
}

// Error returns "msg: cause", or whichever of the two is present.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether e derives from the sentinel target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.root == nil && e.sentinel() == t
}

// LogValue groups the message, the cause and the attached attributes.
// A cause that is itself a [slog.LogValuer] is logged structurally.
func (e *Error) LogValue() slog.Value {
	var attrs []slog.Attr

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	var lv slog.LogValuer

	switch {
	case e.err == nil:
	case errors.As(e.err, &lv):
		attrs = append(attrs, slog.Any("cause", lv))
	default:
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := e.derive()
	d.attrs = append(slices.Clip(e.attrs), attrs...)

	return d
}

var (
	ErrReadSource  = NewError("read source")
	ErrWriteOutput = NewError("write output")
	ErrContextFile = NewError("load context file")
	ErrImport      = NewError("import template")
	ErrRender      = NewError("render template")
	ErrArguments   = NewError("template declares no parameters")
	ErrNoHeader    = NewError("document has no header")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrQuoteArg    = NewError("quote argument")
)
