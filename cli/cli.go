package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tangle/cli/cmd"
	"github.com/ardnew/tangle/format"
	"github.com/ardnew/tangle/pkg"
)

// CLI is the top-level command-line interface for tangle.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Options cmd.Options `embed:""`

	Init   cmd.Init   `cmd:"" help:"Initialize configuration file"`
	Expand cmd.Expand `cmd:"" help:"Print the tangled text of one chunk"`
	List   cmd.List   `cmd:"" help:"List the chunks of a document"`
	Dump   cmd.Dump   `cmd:"" help:"Dump the chunks, variables and handlers of a document"`
	Browse cmd.Browse `cmd:"" help:"Browse the chunks of a document interactively"`

	Tangle cmd.Tangle `cmd:"" default:"withargs" help:"Write the files a document declares"`
}

// Run executes the tangle CLI with the given context and arguments.
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

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		cmd.ConfigIdentifier:  configFilePath,
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.ExtrasIdentifier:  configPath(extrasDir),
		cmd.FormatsIdentifier: strings.Join(format.Default().Names(), ","),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that parse errors are already reported
	// with the requested configuration.
	cli.Log.scan(args)

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
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve, configFilePath),
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
	ctx = cmd.WithOptions(ctx, &cli.Options)

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
