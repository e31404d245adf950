package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// Render evaluates a template file and writes the resulting text.
type Render struct {
	Contexts   []string          `help:"YAML context file; later files override earlier ones."      name:"context" placeholder:"FILE"      sep:"none" short:"c" type:"existingfile"`
	Set        map[string]string `help:"Bind a text value over all contexts."                        name:"set"     placeholder:"KEY=VALUE" short:"D"`
	Imports    map[string]string `help:"Bind the result of another template under a name."          name:"import"  placeholder:"NAME=FILE" short:"I"`
	NoBuiltins bool              `help:"Do not expose built-in functions and host values."`
	MaxDepth   int               `default:"${maxDepth}" help:"Maximum expression nesting depth."`
	Output     string            `help:"Write output to FILE instead of stdout." placeholder:"FILE" short:"o" type:"path"`

	File string   `arg:"" default:"-" help:"Template file or '-' for stdin."          name:"file"`
	Args []string `arg:""             help:"Arguments bound to the template's parameters." name:"args" optional:""`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context, s *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	builtins := lang.Builtins()
	if r.NoBuiltins {
		builtins = lang.Empty
	}

	caller, err := r.caller(ctx, s, builtins)
	if err != nil {
		return err
	}

	tmpl, err := s.parseTemplate(ctx, r.File, lang.WithMaxDepth(r.MaxDepth))
	if err != nil {
		return err
	}

	text, err := apply(ctx, tmpl, builtins, caller, r.Args)
	if err != nil {
		return ErrRender.With(slog.String("file", r.File)).Wrap(err)
	}

	w, err := s.create(r.Output)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := io.WriteString(w, string(text)); err != nil {
		return ErrWriteOutput.With(slog.String("file", r.Output)).Wrap(err)
	}

	log.DebugContext(ctx, "rendered template",
		slog.String("file", r.File),
		slog.Int("bytes", len(text)),
		slog.Int("contexts", len(r.Contexts)),
		slog.Int("imports", len(r.Imports)),
	)

	return nil
}

// caller composes the context files, imports and --set bindings, in
// increasing precedence.
func (r *Render) caller(
	ctx context.Context,
	s *Streams,
	builtins lang.Context,
) (lang.Context, error) {
	layers := make([]lang.Context, 0, len(r.Contexts)+2)

	for _, path := range r.Contexts {
		c, err := s.loadContext(path)
		if err != nil {
			return nil, err
		}

		layers = append(layers, c)
	}

	base := lang.Merge(layers...)

	sets := make(lang.Map, len(r.Set))
	for k, v := range r.Set {
		sets[k] = lang.Text(v)
	}

	// Imports see the context files and --set bindings, not each other.
	scope := lang.Compose(base, sets)
	imports := make(lang.Map, len(r.Imports))

	for _, name := range slices.Sorted(maps.Keys(r.Imports)) {
		path := r.Imports[name]

		tmpl, err := s.parseTemplate(ctx, path, lang.WithMaxDepth(r.MaxDepth))
		if err != nil {
			return nil, ErrImport.With(slog.String("name", name)).Wrap(err)
		}

		v, err := tmpl.Evaluate(ctx, builtins, scope)
		if err != nil {
			return nil, ErrImport.With(slog.String("name", name)).Wrap(err)
		}

		imports[name] = v
	}

	return lang.Merge(base, imports, sets), nil
}

// apply evaluates tmpl, invoking it with args if it declares parameters.
func apply(
	ctx context.Context,
	tmpl *lang.Template,
	builtins, caller lang.Context,
	args []string,
) (lang.Text, error) {
	v, err := tmpl.Evaluate(ctx, builtins, caller)
	if err != nil {
		return "", err
	}

	switch v := v.(type) {
	case lang.Callable:
		vals := make([]lang.Value, len(args))
		for i, a := range args {
			vals[i] = lang.Text(a)
		}

		return v.Call(vals...)

	case lang.Text:
		if len(args) > 0 {
			return "", ErrArguments.With(slog.Int("args", len(args)))
		}

		return v, nil

	default:
		return "", lang.ErrType.With(slog.String("kind", v.Kind().String()))
	}
}
