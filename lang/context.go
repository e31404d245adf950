package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Path addresses a value in a [Context] as a sequence of names.
type Path []string

// ParsePath splits a dotted string into a [Path].
// The empty string yields an empty path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}

	return strings.Split(s, ".")
}

// String returns the dotted form of p.
func (p Path) String() string { return strings.Join(p, ".") }

// Context is a hierarchical mapping from paths to values.
//
// Lookups never fail: Get reports absence with false. Implementations
// should resolve paths by the rule implemented in [lookup], so that a
// compound key "a.b" and a nested context "a" holding "b" are
// interchangeable.
type Context interface {
	Value
	Get(path Path) (Value, bool)
}

// Keyer is implemented by contexts that can enumerate their own keys.
type Keyer interface {
	Keys() []string
}

// Empty is the context with no entries.
var Empty Context = emptyContext{}

type emptyContext struct{}

func (emptyContext) Kind() Kind             { return KindContext }
func (emptyContext) isValue()               {}
func (emptyContext) Get(Path) (Value, bool) { return nil, false }
func (emptyContext) Keys() []string         { return nil }

// lookup resolves path with exact against the backing store.
//
// The full path is tried first. Failing that, proper prefixes are tried
// from longest to shortest; the first prefix that resolves to a nested
// context which itself resolves the remainder wins.
func lookup(path Path, exact func(key string) (Value, bool)) (Value, bool) {
	if len(path) == 0 {
		return nil, false
	}

	if v, ok := exact(path.String()); ok {
		return v, true
	}

	for n := len(path) - 1; n > 0; n-- {
		v, ok := exact(path[:n].String())
		if !ok {
			continue
		}

		if h, ok := v.(Context); ok {
			if r, ok := h.Get(path[n:]); ok {
				return r, true
			}
		}
	}

	return nil, false
}

// Apply resolves path in ctx and returns an [ErrLookup] error if absent.
func Apply(ctx Context, path Path) (Value, error) {
	if ctx != nil {
		if v, ok := ctx.Get(path); ok {
			return v, nil
		}
	}

	return nil, ErrLookup.With(slog.String("path", path.String()))
}

// Keys returns the sorted top-level keys of ctx, or nil if ctx cannot
// enumerate itself.
func Keys(ctx Context) []string {
	k, ok := ctx.(Keyer)
	if !ok {
		return nil
	}

	keys := k.Keys()
	slices.Sort(keys)

	return slices.Compact(keys)
}

// Map is a flat context keyed by dotted path strings.
type Map map[string]Value

// Kind implements [Value].
func (Map) Kind() Kind { return KindContext }
func (Map) isValue()   {}

// Get implements [Context].
func (m Map) Get(path Path) (Value, bool) {
	return lookup(path, func(key string) (Value, bool) {
		v, ok := m[key]

		return v, ok
	})
}

// Keys implements [Keyer].
func (m Map) Keys() []string { return slices.Collect(maps.Keys(m)) }

// Set binds the dotted key to v and returns m.
func (m Map) Set(key string, v Value) Map {
	m[key] = v

	return m
}

// ContextFunc adapts a function to the [Context] interface.
// The function receives the full dotted path.
type ContextFunc func(key string) (Value, bool)

// Kind implements [Value].
func (ContextFunc) Kind() Kind { return KindContext }
func (ContextFunc) isValue()   {}

// Get implements [Context].
func (f ContextFunc) Get(path Path) (Value, bool) {
	return lookup(path, f)
}

// composed overlays over onto under.
type composed struct {
	under, over Context
}

// Compose returns a context in which entries of b shadow those of a.
// Neither argument is copied.
func Compose(a, b Context) Context {
	switch {
	case a == nil || a == Empty:
		if b == nil {
			return Empty
		}

		return b

	case b == nil || b == Empty:
		return a
	}

	return composed{under: a, over: b}
}

// Merge composes contexts left to right; the last writer wins.
func Merge(ctxs ...Context) Context {
	out := Empty
	for _, c := range ctxs {
		out = Compose(out, c)
	}

	return out
}

func (composed) Kind() Kind { return KindContext }
func (composed) isValue()   {}

func (c composed) Get(path Path) (Value, bool) {
	if v, ok := c.over.Get(path); ok {
		return v, true
	}

	return c.under.Get(path)
}

func (c composed) Keys() []string {
	return append(Keys(c.under), Keys(c.over)...)
}

// FromData converts a generic decoded tree into a [Value].
//
// Scalars become [Text] (null is the empty text), sequences become
// [List] and mappings become a [Context] that converts its entries on
// demand. The input is the shape produced by YAML and JSON decoders.
func FromData(data any) Value {
	switch d := data.(type) {
	case nil:
		return Text("")

	case Value:
		return d

	case string:
		return Text(d)

	case []byte:
		return Text(d)

	case []any:
		l := make(List, len(d))
		for i, e := range d {
			l[i] = FromData(e)
		}

		return l

	case map[string]any:
		return tree(d)

	case map[any]any:
		m := make(tree, len(d))
		for k, v := range d {
			m[fmt.Sprint(k)] = v
		}

		return m

	default:
		return Text(fmt.Sprint(d))
	}
}

// tree is a context over a decoded mapping.
type tree map[string]any

func (tree) Kind() Kind { return KindContext }
func (tree) isValue()   {}

func (t tree) Get(path Path) (Value, bool) {
	return lookup(path, func(key string) (Value, bool) {
		v, ok := t[key]
		if !ok {
			return nil, false
		}

		return FromData(v), true
	})
}

func (t tree) Keys() []string { return slices.Collect(maps.Keys(t)) }
