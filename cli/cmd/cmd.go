package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Streams carries the standard streams a command reads and writes.
// It is bound into every command's Run method.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process's standard streams.
func StdStreams() *Streams {
	return &Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// open returns a reader for path, or for s.In if path is [stdinSource].
func (s *Streams) open(path string) (io.ReadCloser, error) {
	if path == stdinSource || path == "" {
		return io.NopCloser(s.In), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadSource.With(slog.String("file", path)).Wrap(err)
	}

	return f, nil
}

// readAll returns the full content of path.
func (s *Streams) readAll(path string) (string, error) {
	r, err := s.open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", ErrReadSource.With(slog.String("file", path)).Wrap(err)
	}

	return string(data), nil
}

// create returns a writer for path, or s.Out if path is empty or
// [stdinSource].
func (s *Streams) create(path string) (io.WriteCloser, error) {
	if path == stdinSource || path == "" {
		return nopWriteCloser{s.Out}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, ErrWriteOutput.With(slog.String("file", path)).Wrap(err)
	}

	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// parseTemplate parses the template at path. Parse errors are reported
// with a source snippet on s.Err.
func (s *Streams) parseTemplate(
	ctx context.Context,
	path string,
	opts ...lang.Option,
) (*lang.Template, error) {
	r, err := s.open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var src bytes.Buffer

	opts = append([]lang.Option{
		lang.WithName(path),
		lang.WithLogger(log.With(slog.String("template", path))),
	}, opts...)

	tmpl, err := lang.ParseReader(ctx, io.TeeReader(r, &src), opts...)
	if err != nil {
		s.snippet(err, src.String())

		return nil, err
	}

	return tmpl, nil
}

// snippet writes the source line at the position of err, if it has one.
func (s *Streams) snippet(err error, source string) {
	var le *lang.Error
	if s.Err == nil || !errors.As(err, &le) {
		return
	}

	if snip := le.Snippet(source); snip != "" {
		_, _ = io.WriteString(s.Err, snip)
	}
}

// loadContext decodes the YAML mapping at path into a context.
// An empty document yields [lang.Empty].
func (s *Streams) loadContext(path string) (lang.Context, error) {
	r, err := s.open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return decodeContext(r, path)
}

func decodeContext(r io.Reader, path string) (lang.Context, error) {
	var data any

	err := yaml.NewDecoder(r).Decode(&data)
	if errors.Is(err, io.EOF) || (err == nil && data == nil) {
		return lang.Empty, nil
	}

	if err != nil {
		return nil, ErrContextFile.With(slog.String("file", path)).Wrap(err)
	}

	ctx, ok := lang.FromData(data).(lang.Context)
	if !ok {
		return nil, ErrContextFile.With(slog.String("file", path)).
			Wrap(errors.New("root must be a mapping"))
	}

	return ctx, nil
}
