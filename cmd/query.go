package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/refpath/internal/filter"
	"github.com/oakwood-commons/refpath/internal/formatter"
	"github.com/oakwood-commons/refpath/pkg/logger"
	"github.com/oakwood-commons/refpath/pkg/pathexpr"
	"github.com/oakwood-commons/refpath/pkg/settings"
	"github.com/oakwood-commons/refpath/pkg/tree"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <expr>",
		Short: "Validate a path expression and print its segments",
		Example: "\n  refpath check '$.items[*].\"display name\"'\n" +
			"  refpath check '.a..b'   # exits 1\n",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := pathexpr.Parse(args[0])
			if err != nil {
				return err
			}
			run := settings.FromContextOrDefault(cmd.Context())
			segments := expr.Segments()

			if run.Output == formatter.OutputTable {
				rows := make([]formatter.Row, len(segments))
				for i, s := range segments {
					rows[i] = formatter.Row{Path: s.String(), Value: s.Kind.String()}
				}
				return writeString(cmd.OutOrStdout(), formatter.RenderMatches(rows, formatter.TableOptions{
					NoColor: !formatter.ColorEnabled(run.NoColor),
				}))
			}

			list := make([]any, len(segments))
			for i, s := range segments {
				entry := tree.Of("kind", s.Kind.String(), "segment", s.String())
				switch s.Kind {
				case pathexpr.KindProperty, pathexpr.KindQuotedProperty:
					entry.Set("name", s.Name)
				case pathexpr.KindIndex:
					entry.Set("index", s.Index)
				}
				list[i] = entry
			}
			doc := tree.Of(
				"expression", expr.String(),
				"canonical", pathexpr.FormatSegments(segments),
				"segments", list,
			)
			return writeDocument(cmd.OutOrStdout(), doc, opts.formatOptions(run))
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <expr> [file]",
		Short: "Print the values an expression matches",
		Example: "\n  refpath get '$.items[*].name' data.yaml\n" +
			"  refpath get '$.items[*]' data.json -o table --where 'value.enabled'\n",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := pathexpr.Parse(args[0])
			if err != nil {
				return err
			}
			engine, run, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			run.Input = inputFromArgs(args, 1, false)
			lgr := logger.FromContext(cmd.Context())

			root, err := loadInput(cmd, run.Input, *lgr)
			if err != nil {
				return err
			}
			matches, err := engine.Get(root, args[0])
			if err != nil {
				return err
			}
			lgr.V(1).Info("get finished", "expression", args[0], "matches", len(matches))
			single := !expr.HasWildcard() && run.Where == "" && run.Offset == 0
			return writeMatches(cmd.OutOrStdout(), matches, single, opts.formatOptions(run), run)
		},
	}
}

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions available to --where predicates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fns, err := filter.Functions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Variables: value (the matched node), path (its concrete path), key (last key or index)")
			for _, fn := range fns {
				fmt.Fprintln(out, "  "+fn)
			}
			return nil
		},
	}
}
