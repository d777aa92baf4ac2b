package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/refpath/internal/config"
	"github.com/oakwood-commons/refpath/internal/formatter"
	"github.com/oakwood-commons/refpath/pkg/logger"
	"github.com/oakwood-commons/refpath/pkg/settings"
)

// rootOptions holds the persistent flag values and the configuration loaded
// for the running command.
type rootOptions struct {
	configFile string
	output     string
	where      string
	limit      int
	offset     int
	noColor    bool
	debug      bool
	logLevel   string

	cfg config.File
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Query and rewrite structured documents with path expressions",
		Long: `refpath resolves path expressions such as $.items[*].name against JSON,
YAML, NDJSON or TOML documents and reads, replaces, truncates or deletes
every match.

Path syntax:
  $            the document root (optional prefix)
  .name        a property made of letters and digits
  ."any text"  a quoted property; \" escapes a quote
  [3]          a sequence index
  .* or [*]    every child of a mapping or sequence`,
		Example: "\n  refpath check '$.items[*].name'\n  refpath get '$.items[*].name' data.yaml\n  cat data.json | refpath get '.items[0]' -o json\n  refpath set '$.items[*].enabled' true data.yaml --in-place\n  refpath get '$.items[*]' data.yaml --where 'value.size > 10' -o table\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		// Only prepend the header when help was explicitly requested.
		helpFlag := cmd.Flags().Lookup("help")
		helpRequested := (helpFlag != nil && helpFlag.Changed) || cmd.CalledAs() == "help" || cmd.Name() == "help"
		if helpRequested {
			if header := opts.helpHeader(); header != "" {
				fmt.Fprintln(cmd.OutOrStdout(), header)
				fmt.Fprintln(cmd.OutOrStdout())
			}
		}
		defaultHelp(cmd, args)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "path to a YAML config file (default $"+config.EnvConfigPath+" or <user config dir>/refpath/config.yaml)")
	flags.StringVarP(&opts.output, "output", "o", "", "output format: "+strings.Join(formatter.ValidOutputs, "|")+" (default from config or yaml)")
	flags.StringVar(&opts.where, "where", "", "CEL predicate over each match, e.g. 'value.size > 3' or 'key.startsWith(\"x\")'")
	flags.IntVar(&opts.limit, "limit", 0, "act on at most N matches (0 = all)")
	flags.IntVar(&opts.offset, "offset", 0, "skip the first N matches")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable color output")
	flags.BoolVar(&opts.debug, "debug", false, "log every match at debug level (same as --log-level debug)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error or a verbosity such as v2 (default from config or info)")

	rootCmd.AddCommand(
		newCheckCmd(opts),
		newGetCmd(opts),
		newSetCmd(opts),
		newDeleteCmd(opts),
		newTruncateCmd(opts),
		newConfigCmd(opts),
		newFunctionsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the configuration, initializes the logger and stores the run
// settings in the command context.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := loadMergedConfig(o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg
	applyTableTheme(cfg.Table)

	level, err := o.resolveLogLevel(cmd)
	if err != nil {
		return err
	}
	lgr := logger.Get(level)
	lgr = logger.WithValues(lgr, logger.CommandKey, cmd.Name())

	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.Output = o.output
	if run.Output == "" {
		run.Output = config.Value(cfg.Output.Format, formatter.OutputYAML)
	}
	if err := formatter.ValidateOutput(run.Output); err != nil {
		return err
	}
	run.NoColor = o.noColor || config.Value(cfg.Output.NoColor, false)
	run.Where = o.where
	run.Limit = o.limit
	run.Offset = o.offset

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(ctx)
	return nil
}

// resolveLogLevel applies --debug, then --log-level, then the config file.
func (o *rootOptions) resolveLogLevel(cmd *cobra.Command) (int8, error) {
	if o.debug {
		return -1, nil
	}
	name := o.logLevel
	if f := cmd.Flags().Lookup("log-level"); f == nil || !f.Changed {
		name = config.Value(o.cfg.Log.Level, "info")
	}
	return logger.ParseLevel(name)
}

func (o *rootOptions) helpHeader() string {
	cfg, err := loadMergedConfig(o.configFile)
	if err != nil {
		cfg, _ = config.Default()
	}
	header, err := cfg.HelpHeader(settings.CliBinaryName, settings.VersionInformation.BuildVersion, settings.VersionInformation.Commit)
	if err != nil {
		return ""
	}
	return header
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print refpath version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return nil
		},
	}
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
}

// Execute runs the refpath command line.
func Execute() error {
	return newRootCmd().Execute()
}
