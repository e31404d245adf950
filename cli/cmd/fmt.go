package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// Fmt parses a template and writes it in the chosen representation.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical template source (default)."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Print an indented syntax tree."`
}

// Input is the positional template source shared by every fmt
// subcommand.
type Input struct {
	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// parse reads and parses the source template, tagging any error with
// the output format.
func (in *Input) parse(
	ctx context.Context,
	s *Streams,
	format string,
) (*lang.Template, error) {
	tmpl, err := s.parseTemplate(ctx, in.Source)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("format", format))
	}

	log.DebugContext(ctx, "formatting template",
		slog.String("source", in.Source),
		slog.String("format", format),
		slog.Int("params", len(tmpl.Params)),
		slog.Int("nodes", len(tmpl.Body)),
	)

	return tmpl, nil
}

// Native formats input as canonical template source.
type Native struct {
	Input `embed:""`
}

// Run executes the native format command.
func (f *Native) Run(ctx context.Context, s *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, err := f.parse(ctx, s, "native")
	if err != nil {
		return err
	}

	if err := tmpl.Format(ctx, s.Out); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// JSON formats the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output." short:"i"`

	Input `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context, s *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, err := j.parse(ctx, s, "json")
	if err != nil {
		return err
	}

	if err := tmpl.FormatJSON(ctx, s.Out, j.Indent); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// YAML formats the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output." short:"i"`

	Input `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context, s *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, err := y.parse(ctx, s, "yaml")
	if err != nil {
		return err
	}

	if err := tmpl.FormatYAML(ctx, s.Out, y.Indent); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// AST prints an indented dump of the syntax tree.
type AST struct {
	Input `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context, s *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, err := a.parse(ctx, s, "ast")
	if err != nil {
		return err
	}

	if err := tmpl.Print(s.Out); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
