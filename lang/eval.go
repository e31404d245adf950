package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ardnew/tmpl/log"
)

// Evaluate evaluates t against the composition of builtins, caller and
// the template's own predefined context, in increasing precedence.
// A nil context is treated as [Empty].
//
// A template without parameters yields [Text]. A template with
// parameters yields a [Callable] that binds its arguments to the
// parameter names and evaluates the body. The callable may be invoked
// any number of times.
func (t *Template) Evaluate(
	ctx context.Context,
	builtins, caller Context,
) (Value, error) {
	env := Merge(builtins, caller, t.Predefined)
	e := &evalContext{ctx: ctx, logger: t.logger, name: t.Name}

	if len(t.Params) == 0 {
		text, err := e.evalBody(env, t.Body)
		if err != nil {
			return nil, err
		}

		return text, nil
	}

	params := slices.Clone(t.Params)
	body := t.Body

	return Callable(func(args []Value) (Text, error) {
		if err := checkArity(e.name, len(params), len(args)); err != nil {
			return "", err
		}

		return e.evalBody(Compose(env, bind(params, args)), body)
	}), nil
}

// EvaluateText evaluates a template that declares no parameters.
func (t *Template) EvaluateText(
	ctx context.Context,
	builtins, caller Context,
) (Text, error) {
	if len(t.Params) > 0 {
		return "", ErrType.
			With(slog.String("template", t.Name), slog.Any("params", t.Params)).
			Wrap(fmt.Errorf("template requires %d argument(s)", len(t.Params)))
	}

	v, err := t.Evaluate(ctx, builtins, caller)
	if err != nil {
		return "", err
	}

	return v.(Text), nil
}

// EvaluateCallable evaluates a template that declares parameters.
func (t *Template) EvaluateCallable(
	ctx context.Context,
	builtins, caller Context,
) (Callable, error) {
	if len(t.Params) == 0 {
		return nil, ErrType.
			With(slog.String("template", t.Name)).
			Wrap(errors.New("template takes no arguments"))
	}

	v, err := t.Evaluate(ctx, builtins, caller)
	if err != nil {
		return nil, err
	}

	return v.(Callable), nil
}

// bind returns a flat context binding names to vals positionally.
func bind(names []string, vals []Value) Map {
	m := make(Map, len(names))
	for i, name := range names {
		m[name] = vals[i]
	}

	return m
}

// evalContext holds the state shared by one evaluation.
type evalContext struct {
	ctx    context.Context
	logger log.Logger
	name   string
}

// evalBody evaluates nodes and concatenates their text.
func (e *evalContext) evalBody(scope Context, nodes []Node) (Text, error) {
	vals := make([]Value, 0, len(nodes))

	for _, n := range nodes {
		v, err := e.evalNode(scope, n, false)
		if err != nil {
			return "", err
		}

		vals = append(vals, v)
	}

	text, bad, ok := Concat(vals)
	if !ok {
		return "", ErrType.With(slog.String("kind", kindOf(bad))).
			Wrap(fmt.Errorf("body content must be Text, not %s", kindOf(bad)))
	}

	return text, nil
}

// evalNode evaluates a single node. Outside argument position the
// result is always Text.
func (e *evalContext) evalNode(scope Context, n Node, inArg bool) (Value, error) {
	switch n := n.(type) {
	case *TextNode:
		return Text(n.Text), nil

	case *VarNode:
		v, err := e.resolve(scope, n.Path, n.Pos)
		if err != nil {
			return nil, err
		}

		if _, ok := v.(Text); !ok && !inArg {
			return nil, ErrType.WithPosition(n.Pos).
				With(slog.String("path", n.Path.String()),
					slog.String("kind", kindOf(v))).
				Wrap(fmt.Errorf("%q is %s, not Text", n.Path, kindOf(v)))
		}

		return v, nil

	case *CallNode:
		return e.evalCall(scope, n)

	default:
		return nil, ErrType.Wrap(fmt.Errorf("unknown node %T", n))
	}
}

// evalCall evaluates the arguments of n and invokes its target.
func (e *evalContext) evalCall(scope Context, n *CallNode) (Text, error) {
	v, err := e.resolve(scope, n.Path, n.Pos)
	if err != nil {
		return "", err
	}

	fn, ok := v.(Callable)
	if !ok {
		return "", ErrType.WithPosition(n.Pos).
			With(slog.String("path", n.Path.String()),
				slog.String("kind", kindOf(v))).
			Wrap(fmt.Errorf("%q is %s, not Callable", n.Path, kindOf(v)))
	}

	args := make([]Value, 0, len(n.Args))

	for _, a := range n.Args {
		switch a := a.(type) {
		case *LambdaArg:
			args = append(args, e.lambda(scope, a))

		case *BodyArg:
			v, err := e.evalArg(scope, a)
			if err != nil {
				return "", err
			}

			args = append(args, v)
		}
	}

	e.logger.TraceContext(e.ctx, "call",
		slog.String("template", e.name),
		slog.String("path", n.Path.String()),
		slog.Int("args", len(args)),
		slog.Any("position", n.Pos))

	return fn(args)
}

// evalArg evaluates a body argument. A single value passes through with
// its kind intact; several values must all be Text.
func (e *evalContext) evalArg(scope Context, a *BodyArg) (Value, error) {
	vals := make([]Value, 0, len(a.Nodes))

	for _, n := range a.Nodes {
		v, err := e.evalNode(scope, n, true)
		if err != nil {
			return nil, err
		}

		vals = append(vals, v)
	}

	if len(vals) == 1 {
		return vals[0], nil
	}

	text, bad, ok := Concat(vals)
	if !ok {
		return nil, ErrType.WithPosition(a.Pos).
			With(slog.String("kind", kindOf(bad))).
			Wrap(fmt.Errorf("argument with several parts must be Text, not %s",
				kindOf(bad)))
	}

	return text, nil
}

// lambda closes a over scope, the context of the enclosing call.
func (e *evalContext) lambda(scope Context, a *LambdaArg) Callable {
	return func(args []Value) (Text, error) {
		if err := checkArity("lambda", len(a.Params), len(args)); err != nil {
			return "", err
		}

		return e.evalBody(Compose(scope, bind(a.Params, args)), a.Body)
	}
}

// resolve looks up path in scope.
func (e *evalContext) resolve(scope Context, path Path, pos Position) (Value, error) {
	v, ok := scope.Get(path)
	if !ok {
		e.logger.TraceContext(e.ctx, "lookup failed",
			slog.String("template", e.name),
			slog.String("path", path.String()))

		return nil, ErrLookup.WithPosition(pos).
			With(slog.String("path", path.String())).
			Wrap(fmt.Errorf("%q is not defined", path))
	}

	return v, nil
}
