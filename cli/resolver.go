package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// The document root must be a mapping. It is converted with
// [lang.FromData], so a flag may be configured under any key that
// resolves through the context model. For the flag --log-level, each of
// the following is equivalent:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Sequences configure repeatable flags. Command-line flags override
// config file values.
//
// A malformed file is logged and ignored.
func resolve(r io.Reader) (kong.Resolver, error) {
	var data any

	err := yaml.NewDecoder(r).Decode(&data)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring malformed configuration", slog.Any("error", err))
		}

		return config{lang.Empty}, nil
	}

	ctx, ok := lang.FromData(data).(lang.Context)
	if !ok || data == nil {
		if data != nil {
			log.Warn("ignoring configuration with non-mapping root")
		}

		return config{lang.Empty}, nil
	}

	return config{ctx}, nil
}

// config implements [kong.Resolver] over a decoded configuration file.
type config struct{ lang.Context }

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, key := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
		strings.ReplaceAll(flag.Name, "-", "."),
	} {
		if v, ok := c.Get(lang.ParsePath(key)); ok {
			return native(v), nil
		}
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// native converts a context value into the form Kong decodes flag values
// from. Kong parses numbers and booleans from their text form.
func native(v lang.Value) any {
	switch v := v.(type) {
	case lang.Text:
		return string(v)

	case lang.List:
		seq := make([]any, len(v))
		for i, e := range v {
			seq[i] = native(e)
		}

		return seq

	default:
		return nil
	}
}
