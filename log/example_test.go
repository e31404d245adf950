package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/tmpl/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	logger.Info("template rendered", slog.String("file", "page.tmpl"))
	// Output: level=INFO msg="template rendered" file=page.tmpl
}

func ExampleLogger_With() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
		log.WithLevel(log.LevelTrace))

	logger = logger.With(slog.String("template", "page.tmpl"))

	logger.Trace("lookup", slog.String("path", "site.name"))
	// Output: level=TRACE msg=lookup template=page.tmpl path=site.name
}

func ExampleWithPretty() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithPretty(true),
		log.WithTimeLayout("none"))

	logger.Warn("lookup failed",
		slog.Group("error", slog.String("path", "a.b"), slog.Int("line", 3)))
	// Output:
	// {
	//   level: WARN,
	//   msg: lookup failed,
	//   error: {
	//     path: a.b,
	//     line: 3
	//   }
	// }
}
