package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// problem is an error that logs as a group, the way parse errors do.
type problem struct{}

func (problem) Error() string { return "lookup error" }

func (problem) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "lookup error"),
		slog.String("path", "a.b"),
	)
}

func prettyLogger(buf *bytes.Buffer, format Format) Logger {
	return Make(buf, WithFormat(format), WithPretty(true), WithTimeLayout("none"),
		WithLevel(LevelTrace))
}

func TestPretty_Inline(t *testing.T) {
	var buf bytes.Buffer

	prettyLogger(&buf, FormatText).
		With(slog.String("cmd", "render")).
		Warn("failed",
			slog.Int("n", -3),
			slog.Uint64("u", 4),
			slog.Float64("f", 0.5),
			slog.Bool("ok", false),
			slog.Duration("took", 2*time.Second),
			slog.Any("cause", problem{}),
			slog.Any("plain", errors.New("boom")),
			slog.Any("nil", nil),
			slog.Group("empty"),
		)

	want := "level=WARN msg=failed cmd=render n=-3 u=4 f=0.5 ok=false took=2s " +
		"cause.error=lookup error cause.path=a.b plain=boom nil=null\n"

	if buf.String() != want {
		t.Errorf("got\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPretty_Block(t *testing.T) {
	var buf bytes.Buffer

	prettyLogger(&buf, FormatJSON).Error("failed",
		slog.Any("cause", problem{}),
		slog.Bool("fatal", true),
	)

	want := strings.Join([]string{
		"{",
		"  level: ERROR,",
		"  msg: failed,",
		"  cause: {",
		"    error: lookup error,",
		"    path: a.b",
		"  },",
		"  fatal: true",
		"}",
		"",
	}, "\n")

	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPretty_Groups(t *testing.T) {
	var buf bytes.Buffer

	l := prettyLogger(&buf, FormatText)
	grouped := slog.New(l.Handler().WithGroup("req").WithAttrs([]slog.Attr{slog.String("id", "7")}))
	grouped.Info("served", slog.String("path", "/"))

	if got, want := buf.String(), "level=INFO msg=served req.id=7 req.path=/\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPretty_Time(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText), WithTimeLayout("2006")).Info("x")

	year := time.Now().Format("2006")
	if !strings.HasPrefix(buf.String(), "time="+year+" ") {
		t.Errorf("got %q, want time layout applied", buf.String())
	}
}

func TestPretty_NoColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer

	prettyLogger(&buf, FormatText).Info("x", slog.Bool("b", true))

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("escape sequences written to a non-terminal: %q", buf.String())
	}
}
