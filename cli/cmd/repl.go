package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/tmpl/cli/cmd/repl"
	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// REPL starts an interactive rendering session.
type REPL struct {
	NoBuiltins bool   `help:"Do not expose built-in functions and host values."`
	History    string `default:"${historyFile}" help:"History file; empty disables persistence." placeholder:"FILE" type:"path"`

	Files []string `arg:"" help:"Templates and YAML context files to load at startup." name:"file" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (r *REPL) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	builtins := lang.Builtins()
	if r.NoBuiltins {
		builtins = lang.Empty
	}

	return repl.Run(ctx, repl.Config{
		History:  r.History,
		Builtins: builtins,
		Logger:   log.With(slog.String("cmd", "repl")),
	}, r.Files...)
}
