// Package cli contains the command line interface for tmpl.
//
// # Usage
//
//	tmpl [flags] [render] FILE [ARG...]
//	tmpl quote [--arg] [TEXT...]
//	tmpl split [--part=header|body] FILE
//	tmpl join --header=FILE BODY
//	tmpl fmt [native|json|yaml|ast] FILE
//	tmpl init [--force]
//	tmpl repl [FILE...]
//
// Render is the default command, so "tmpl greet.tmpl world" renders
// greet.tmpl with its first parameter bound to "world".
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/tmpl/config.yaml). Keys resolve through
// the context model, so --log-level may be written as log-level,
// log_level or a nested log.level mapping. "tmpl init" writes the current
// flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o tmpl .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/tmpl/pprof)
//
// # Examples
//
//	# Render with a context file and an override
//	tmpl -c site.yaml -D env=prod page.tmpl
//
//	# Debug logging with CPU profiling
//	tmpl --log-level=debug --pprof-mode=cpu page.tmpl
package cli
