// Package log wraps [log/slog] with a trace level, attribute-only logging
// methods, and a human-oriented handler.
//
// A [Logger] is built once from functional options and never changes:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("timeonly"))
//
//	logger.Debug("parsed", slog.String("file", name))
//
// [Logger.Wrap] derives a logger with different options, [Logger.With] one
// with extra attributes. The zero Logger discards everything.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-node parser and
// evaluator diagnostics. [ParseLevel] accepts level names with slog-style
// offsets, such as "info+2" or "trace-1".
//
// # Pretty Output
//
// [WithPretty] replaces the stock slog handlers. [FormatText] becomes a
// single unquoted key=value line with groups flattened into dotted keys;
// [FormatJSON] becomes an indented object with one field per line. Colors
// are rendered with lipgloss and only when the output is a terminal.
//
// # Default Logger
//
// Package functions such as [Info] and [Trace] write through a shared
// logger, initially writing to standard error. [Config] replaces it
// atomically:
//
//	log.Config(log.WithLevel(log.LevelWarn))
//
// Logging methods that take no context use [DefaultContextProvider].
package log
