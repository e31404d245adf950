package cli

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tmpl/cli/cmd"
	"github.com/ardnew/tmpl/cli/cmd/repl"
	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/pkg"
)

// configFile is the base name of the configuration file.
const configFile = "config.yaml"

// CLI is the top-level command-line interface for tmpl.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render a template (default)."`
	Quote  cmd.Quote  `cmd:""                    help:"Escape text so it renders literally."`
	Split  cmd.Split  `cmd:""                    help:"Print the header or body of a template."`
	Join   cmd.Join   `cmd:""                    help:"Combine a header and body into a template."`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format a template."`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file."`
	REPL   cmd.REPL   `cmd:"" name:"repl"        help:"Start an interactive session."`
}

// Run executes the tmpl CLI with the given context and arguments using the
// process's standard streams.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	return run(ctx, cmd.StdStreams(), exit, filepath.Join(pkg.ConfigDir(), configFile), args...)
}

func run(
	ctx context.Context,
	streams *cmd.Streams,
	exit func(code int),
	configPath string,
	args ...string,
) error {
	var cli CLI

	vars := kong.Vars{
		"version":              pkg.Version,
		cmd.ConfigIdentifier:   configPath,
		cmd.CacheIdentifier:    pkg.CacheDir(),
		cmd.HistoryIdentifier:  filepath.Join(pkg.CacheDir(), repl.DefaultHistoryFile),
		cmd.MaxDepthIdentifier: strconv.Itoa(lang.DefaultMaxDepth),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before Kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(streams.Out, streams.Err),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.Bind(streams),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve, configPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}
