// Package cmd implements the tmpl subcommands: render, quote, split,
// join, fmt, init and repl.
//
// Every command reads and writes through a [Streams] value bound by the
// CLI, so commands can be driven from tests with in-memory buffers.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the YAML configuration file.
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable identifier containing the
	// default path of the REPL history file.
	HistoryIdentifier = "historyFile"

	// MaxDepthIdentifier is the kong variable identifier containing the
	// default expression nesting limit.
	MaxDepthIdentifier = "maxDepth"
)
