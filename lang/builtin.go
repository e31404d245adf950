package lang

// This file defines the built-in context available to templates when the
// caller passes [Builtins] to an evaluation entry point. The context is
// built once per process and never mutated; callers compose their own
// contexts over it.

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Builtins returns the default built-in context.
//
// It provides text functions (upper, lower, trim, join, each, quote),
// the process environment under "env", host information (platform,
// target, hostname, cwd) and path functions under "path".
func Builtins() Context { return builtins() }

var builtins = sync.OnceValue(func() Context {
	platform := getPlatform()
	target := getTarget(platform)

	return Map{
		"upper": textFunc("upper", strings.ToUpper),
		"lower": textFunc("lower", strings.ToLower),
		"trim":  textFunc("trim", strings.TrimSpace),
		"quote": textFunc("quote", Quote),
		"join":  Callable(join),
		"each":  Callable(each),

		"env": ContextFunc(func(key string) (Value, bool) {
			v, ok := os.LookupEnv(key)

			return Text(v), ok
		}),

		"platform": Map{
			"os":   Text(platform.os),
			"arch": Text(platform.arch),
		},
		"target": Map{
			"os":   Text(target.os),
			"arch": Text(target.arch),
		},
		"hostname": Text(getHostname()),
		"cwd":      Text(getCwd()),

		"path": Map{
			"abs":    textFunc("path.abs", pathAbs),
			"base":   textFunc("path.base", filepath.Base),
			"dir":    textFunc("path.dir", filepath.Dir),
			"cat":    Callable(pathCat),
			"prefix": Callable(pathPrefix),
		},
	}
})

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

// textFunc adapts a unary string function to a [Callable].
func textFunc(name string, fn func(string) string) Callable {
	return func(args []Value) (Text, error) {
		if err := checkArity(name, 1, len(args)); err != nil {
			return "", err
		}

		s, err := textArg(name, 0, args)
		if err != nil {
			return "", err
		}

		return Text(fn(s)), nil
	}
}

// textArg returns args[i] as a string.
func textArg(name string, i int, args []Value) (string, error) {
	t, ok := args[i].(Text)
	if !ok {
		return "", argError(name, i, KindText, args[i])
	}

	return string(t), nil
}

// textArgs returns all args as strings.
func textArgs(name string, args []Value) ([]string, error) {
	out := make([]string, len(args))

	for i := range args {
		s, err := textArg(name, i, args)
		if err != nil {
			return nil, err
		}

		out[i] = s
	}

	return out, nil
}

func argError(name string, i int, want Kind, got Value) *Error {
	return ErrType.
		With(
			slog.String("callable", name),
			slog.Int("argument", i+1),
			slog.String("kind", kindOf(got)),
		).
		Wrap(fmt.Errorf("%s: argument %d must be %s, not %s",
			name, i+1, want, kindOf(got)))
}

// ---------------------------------------------------------------------------
// List functions
// ---------------------------------------------------------------------------

// join concatenates the elements of a list separated by text.
func join(args []Value) (Text, error) {
	if err := checkArity("join", 2, len(args)); err != nil {
		return "", err
	}

	list, ok := args[0].(List)
	if !ok {
		return "", argError("join", 0, KindList, args[0])
	}

	sep, err := textArg("join", 1, args)
	if err != nil {
		return "", err
	}

	elems, err := textArgs("join", list)
	if err != nil {
		return "", err
	}

	return Text(strings.Join(elems, sep)), nil
}

// each applies a callable to every element of a list and concatenates
// the results.
func each(args []Value) (Text, error) {
	if err := checkArity("each", 2, len(args)); err != nil {
		return "", err
	}

	list, ok := args[0].(List)
	if !ok {
		return "", argError("each", 0, KindList, args[0])
	}

	fn, ok := args[1].(Callable)
	if !ok {
		return "", argError("each", 1, KindCallable, args[1])
	}

	var sb strings.Builder

	for _, elem := range list {
		t, err := fn([]Value{elem})
		if err != nil {
			return "", err
		}

		sb.WriteString(string(t))
	}

	return Text(sb.String()), nil
}

// ---------------------------------------------------------------------------
// System information helpers
// ---------------------------------------------------------------------------

// host contains string identifiers for an operating system and
// instruction set architecture.
type host struct {
	os   string
	arch string
}

// getTarget converts a Go platform to GNU GCC/LLVM naming conventions.
func getTarget(t host) host {
	switch t.arch {
	case "386":
		t.arch = "i386"
	case "amd64":
		t.arch = "x86_64"
	case "arm":
		arm, ok := os.LookupEnv("GOARM")
		if ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch arm = strings.TrimSpace(arm); arm {
			case "5", "6", "7":
				t.arch = "armv" + arm
			}
		}
	case "arm64":
		if t.os != "darwin" {
			t.arch = "aarch64"
		}
	case "mipsle":
		t.arch = "mipsel"
	}

	return t
}

// getPlatform returns the host platform using Go conventions.
func getPlatform() host {
	var (
		o, a string
		ok   bool
	)

	if o, ok = os.LookupEnv("GOHOSTOS"); !ok {
		if o, ok = os.LookupEnv("GOOS"); !ok {
			o = runtime.GOOS
		}
	}

	if a, ok = os.LookupEnv("GOHOSTARCH"); !ok {
		if a, ok = os.LookupEnv("GOARCH"); !ok {
			a = runtime.GOARCH
		}
	}

	return host{os: o, arch: a}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

// ---------------------------------------------------------------------------
// Path functions
// ---------------------------------------------------------------------------

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathCat(args []Value) (Text, error) {
	elem, err := textArgs("path.cat", args)
	if err != nil {
		return "", err
	}

	return Text(filepath.Join(elem...)), nil
}

// pathPrefix prepends the remaining arguments to the PATH-like list given
// as the first argument, removing duplicates.
func pathPrefix(args []Value) (Text, error) {
	if len(args) == 0 {
		return "", checkArity("path.prefix", 1, 0)
	}

	elem, err := textArgs("path.prefix", args)
	if err != nil {
		return "", err
	}

	return Text(mung.Make(
		mung.WithSubjectItems(elem[0]),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(elem[1:]...),
	).String()), nil
}
