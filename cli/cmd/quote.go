package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// Quote escapes text so that it renders literally in a template body.
// With --arg the text is escaped for a call argument instead, which fails
// for text starting with a lambda head such as "x => y".
type Quote struct {
	Arg bool `help:"Also escape commas for use inside call arguments." short:"a"`

	Text []string `arg:"" help:"Text to escape; read from stdin when omitted." name:"text" optional:""`
}

// Run executes the quote command.
func (q *Quote) Run(ctx context.Context, s *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var text string

	if len(q.Text) > 0 {
		text = strings.Join(q.Text, " ") + "\n"
	} else {
		text, err = s.readAll(stdinSource)
		if err != nil {
			return err
		}
	}

	quoted := lang.Quote(text)
	if q.Arg {
		if quoted, err = lang.QuoteArg(text); err != nil {
			return ErrQuoteArg.Wrap(err)
		}
	}

	if _, err := io.WriteString(s.Out, quoted); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	log.DebugContext(ctx, "quoted text",
		slog.Bool("arg", q.Arg),
		slog.Int("bytes", len(text)),
	)

	return nil
}
