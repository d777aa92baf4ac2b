package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/refpath/internal/config"
	"github.com/oakwood-commons/refpath/pkg/core"
	"github.com/oakwood-commons/refpath/pkg/loader"
	"github.com/oakwood-commons/refpath/pkg/logger"
	"github.com/oakwood-commons/refpath/pkg/pathexpr"
)

type mutation func(engine *core.Engine, root any) (any, core.Report, error)

// runMutation loads the input, applies op and prints the resulting document
// or writes it back to the input file. Nothing is written when op fails.
func runMutation(cmd *cobra.Command, opts *rootOptions, args []string, fileIdx int, inPlace bool, op mutation) error {
	if _, err := pathexpr.Parse(args[0]); err != nil {
		return err
	}
	engine, run, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}
	run.Input = inputFromArgs(args, fileIdx, inPlace)
	lgr := logger.FromContext(cmd.Context())

	root, err := loadInput(cmd, run.Input, *lgr)
	if err != nil {
		return err
	}
	result, report, err := op(engine, root)
	if err != nil {
		if len(report.Changed) > 0 {
			lgr.Info("aborted after partial changes, nothing written", "changed", report.Changed)
		}
		return err
	}
	lgr.V(1).Info("mutation finished", "command", cmd.Name(), "matched", len(report.Matched), "changed", len(report.Changed))

	fmtOpts := opts.formatOptions(run)
	if run.Input.InPlace {
		return writeInPlace(run.Input.Path, result, fmtOpts)
	}
	return writeDocument(cmd.OutOrStdout(), result, fmtOpts)
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "set <expr> <value> [file]",
		Short: "Replace every match with a value",
		Long: "Replace every match with a value. The value is read as YAML, so 1, true,\n" +
			"null, [a, b] and {k: v} keep their types; quote it to force a string.",
		Example: "\n  refpath set '$.items[*].enabled' true data.yaml\n" +
			"  refpath set '.meta.\"owner team\"' '{name: infra}' data.json --in-place\n",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := loader.ParseValue(args[1])
			if err != nil {
				return err
			}
			return runMutation(cmd, opts, args, 2, inPlace, func(engine *core.Engine, root any) (any, core.Report, error) {
				return engine.Set(root, args[0], value)
			})
		},
	}
	addInPlaceFlag(cmd.Flags(), &inPlace)
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var inPlace bool
	cmd := &cobra.Command{
		Use:     "delete <expr> [file]",
		Aliases: []string{"rm"},
		Short:   "Remove every match from its parent",
		Example: "\n  refpath delete '$.items[*].secret' data.yaml\n" +
			"  refpath delete '$.items[*]' data.yaml --where 'value.deprecated' --in-place\n",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, opts, args, 1, inPlace, func(engine *core.Engine, root any) (any, core.Report, error) {
				return engine.Delete(root, args[0])
			})
		},
	}
	addInPlaceFlag(cmd.Flags(), &inPlace)
	return cmd
}

func newTruncateCmd(opts *rootOptions) *cobra.Command {
	var (
		inPlace bool
		suffix  string
	)
	cmd := &cobra.Command{
		Use:     "truncate <expr> <max> [file]",
		Short:   "Shorten every matched string to at most max characters",
		Example: "\n  refpath truncate '$.items[*].description' 80 data.yaml --suffix '...'\n",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxLen, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid max length %q: %w", args[1], err)
			}
			if !cmd.Flags().Changed("suffix") {
				suffix = config.Value(opts.cfg.Truncate.Suffix, "")
			}
			return runMutation(cmd, opts, args, 2, inPlace, func(engine *core.Engine, root any) (any, core.Report, error) {
				return engine.Truncate(root, args[0], maxLen, suffix)
			})
		},
	}
	cmd.Flags().StringVar(&suffix, "suffix", "", "text appended to truncated strings (default from config)")
	addInPlaceFlag(cmd.Flags(), &inPlace)
	return cmd
}

func addInPlaceFlag(fs *pflag.FlagSet, target *bool) {
	fs.BoolVarP(target, "in-place", "i", false, "write the result back to the input file")
}
