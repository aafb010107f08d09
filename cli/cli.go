package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pdxlint/cli/cmd"
	"github.com/ardnew/pdxlint/config"
	"github.com/ardnew/pdxlint/log"
	"github.com/ardnew/pdxlint/pkg"
)

// CLI is the top-level command-line interface for pdxlint.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Check  cmd.Check  `cmd:"" default:"withargs" help:"Check script files"`
	Watch  cmd.Watch  `cmd:""                    help:"Re-check script files as they change"`
	Schema cmd.Schema `cmd:""                    help:"Inspect the knowledge base"`
	Init   cmd.Init   `cmd:""                    help:"Write a settings file"`
}

// Run executes the pdxlint CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	// Pre-scan for logger flags so that settings and parse errors are logged
	// at the requested level regardless of flag position.
	cli.Log.scan(args)

	root := projectRoot()

	settings, err := config.Load(root)
	if err != nil {
		return err
	}

	log.Debug("project settings",
		slog.String("root", root),
		slog.String("fallback", settings.Fallback),
		slog.Bool("file", fileExists(settings.Path(pkg.SettingsFile))),
	)

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath),
		kong.Resolvers(newSettingsResolver(settings)),
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
	ctx = cmd.WithSettings(ctx, settings)

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
