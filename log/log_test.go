package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestMake_Defaults(t *testing.T) {
	logger := Make(nil)

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Errorf("defaults = %v %v", logger.Level(), logger.Format())
	}

	if logger.cfg.caller != DefaultCaller || logger.cfg.pretty != DefaultPretty {
		t.Errorf("defaults = %+v", logger.cfg)
	}
}

func TestLogger_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		Make(&buf, WithPretty(false)).Info("parsed", slog.String("file", "a.tmpl"))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}

		if entry["msg"] != "parsed" || entry["file"] != "a.tmpl" || entry["level"] != "INFO" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		Make(&buf, WithFormat(FormatText), WithPretty(false), WithTimeLayout("none")).
			Info("parsed", slog.String("file", "a.tmpl"))

		if got, want := buf.String(), "level=INFO msg=parsed file=a.tmpl\n"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		var buf bytes.Buffer
		Make(&buf, WithFormat(Format(7))).Error("dropped")

		if buf.Len() != 0 {
			t.Errorf("unknown format wrote %q", buf.String())
		}
	})
}

func TestLogger_LevelFiltering(t *testing.T) {
	methods := map[string]func(Logger, string, ...slog.Attr){
		"trace": Logger.Trace,
		"debug": Logger.Debug,
		"info":  Logger.Info,
		"warn":  Logger.Warn,
		"error": Logger.Error,
	}

	contextMethods := map[string]func(Logger, string, ...slog.Attr){
		"trace": func(l Logger, m string, a ...slog.Attr) { l.TraceContext(t.Context(), m, a...) },
		"debug": func(l Logger, m string, a ...slog.Attr) { l.DebugContext(t.Context(), m, a...) },
		"info":  func(l Logger, m string, a ...slog.Attr) { l.InfoContext(t.Context(), m, a...) },
		"warn":  func(l Logger, m string, a ...slog.Attr) { l.WarnContext(t.Context(), m, a...) },
		"error": func(l Logger, m string, a ...slog.Attr) { l.ErrorContext(t.Context(), m, a...) },
	}

	for _, floor := range levels {
		for _, lvl := range levels {
			name := lvl.String()
			want := lvl >= floor

			for variant, fn := range map[string]func(Logger, string, ...slog.Attr){
				"plain":   methods[name],
				"context": contextMethods[name],
			} {
				for _, pretty := range []bool{false, true} {
					var buf bytes.Buffer
					logger := Make(&buf, WithLevel(floor), WithFormat(FormatText), WithPretty(pretty))

					fn(logger, "message")

					if got := buf.Len() > 0; got != want {
						t.Errorf("%s %s at %s (pretty=%v): logged=%v, want %v",
							variant, name, floor, pretty, got, want)
					}

					if want && !strings.Contains(buf.String(), strings.ToUpper(name)) {
						t.Errorf("%s output lacks label: %q", name, buf.String())
					}
				}
			}
		}
	}
}

func TestLogger_Caller(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		Make(&buf, WithCaller(true), WithPretty(pretty)).Info("here")

		if !strings.Contains(buf.String(), "log_test.go") {
			t.Errorf("pretty=%v: caller not reported: %s", pretty, buf.String())
		}

		buf.Reset()
		Make(&buf, WithPretty(pretty)).Info("here")

		if strings.Contains(buf.String(), "source") {
			t.Errorf("pretty=%v: caller reported when disabled: %s", pretty, buf.String())
		}
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelWarn), WithPretty(false))
	wrapped := base.Wrap(WithFormat(FormatText))

	if wrapped.Level() != LevelWarn || wrapped.Format() != FormatText {
		t.Errorf("wrapped = %v %v", wrapped.Level(), wrapped.Format())
	}

	if base.Format() != FormatJSON {
		t.Error("Wrap modified the base logger")
	}

	wrapped.Warn("wrapped", slog.String("key", "value"))

	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("expected text output, got: %s", buf.String())
	}

	var zero Logger
	if zero.Wrap(WithLevel(LevelError)).Level() != LevelError {
		t.Error("Wrap on the zero Logger ignored options")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithPretty(false))
	scoped := base.With(slog.String("component", "render"))

	scoped.Info("a")
	base.Info("b")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}

	if !strings.Contains(lines[0], `"component":"render"`) {
		t.Errorf("scoped logger lacks attribute: %s", lines[0])
	}

	if strings.Contains(lines[1], "component") {
		t.Errorf("With modified the base logger: %s", lines[1])
	}

	if scoped.Level() != base.Level() {
		t.Error("With lost the configuration")
	}
}

func TestLogger_Zero(t *testing.T) {
	var l Logger

	l.Trace("x")
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	l.InfoContext(t.Context(), "x")

	if l.With(slog.String("k", "v")).Logger != nil {
		t.Error("With on the zero Logger produced a logger")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero Logger does not report defaults")
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithFormat(FormatText))

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			logger.With(slog.Int("worker", i)).Info("concurrent")
		})
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 log lines, got %d", len(lines))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := Make(&buf)

	for i := 0; b.Loop(); i++ {
		logger.Info("benchmark message", slog.Int("iteration", i))
	}
}

func BenchmarkLogger_Info_WithCaller(b *testing.B) {
	var buf bytes.Buffer
	logger := Make(&buf, WithCaller(true))

	for i := 0; b.Loop(); i++ {
		logger.Info("benchmark message", slog.Int("iteration", i))
	}
}

func BenchmarkLogger_Trace_Disabled(b *testing.B) {
	logger := Make(nil, WithLevel(LevelError))

	for i := 0; b.Loop(); i++ {
		logger.Trace("benchmark message", slog.Int("iteration", i))
	}
}
