package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// Split prints one part of a document split at its header.
type Split struct {
	Part string `default:"body" enum:"header,body" help:"Part to print (${enum})."`

	File string `arg:"" default:"-" help:"Document file or '-' for stdin." name:"file"`
}

// Run executes the split command.
func (c *Split) Run(ctx context.Context, s *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := s.readAll(c.File)
	if err != nil {
		return err
	}

	header, body, ok := lang.SplitHeader(doc)

	log.DebugContext(ctx, "split document",
		slog.String("file", c.File),
		slog.Bool("header", ok),
		slog.Int("header_bytes", len(header)),
		slog.Int("body_bytes", len(body)),
	)

	var out string

	switch c.Part {
	case "header":
		if !ok {
			return ErrNoHeader.With(slog.String("file", c.File))
		}

		out = header + "\n"

	default:
		out = body
	}

	if _, err := io.WriteString(s.Out, out); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// Join prepends a header to a document body.
type Join struct {
	Header string `help:"File containing the header data." placeholder:"FILE" required:"" short:"H" type:"existingfile"`

	Body string `arg:"" default:"-" help:"Body file or '-' for stdin." name:"body"`
}

// Run executes the join command.
func (c *Join) Run(ctx context.Context, s *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	header, err := s.readAll(c.Header)
	if err != nil {
		return err
	}

	body, err := s.readAll(c.Body)
	if err != nil {
		return err
	}

	doc := lang.JoinHeader(strings.TrimSuffix(header, "\n"), body)

	if _, err := io.WriteString(s.Out, doc); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	log.DebugContext(ctx, "joined document",
		slog.String("header", c.Header),
		slog.String("body", c.Body),
	)

	return nil
}
