package cmd

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/refpath/internal/config"
	"github.com/oakwood-commons/refpath/internal/formatter"
)

// loadMergedConfig returns the built-in defaults overlaid with the resolved
// user config file, if any.
func loadMergedConfig(explicit string) (config.File, error) {
	path := config.Resolve(explicit)
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func applyTableTheme(tc config.TableConfig) {
	formatter.SetTableTheme(formatter.TableColors{
		HeaderFG:       colorOrNil(tc.HeaderFG),
		HeaderBG:       colorOrNil(tc.HeaderBG),
		PathColor:      colorOrNil(tc.Path),
		ValueColor:     colorOrNil(tc.Value),
		SeparatorColor: colorOrNil(tc.Separator),
	})
}

func colorOrNil(s string) color.Color {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return lipgloss.Color(s)
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the merged configuration",
		Long: "Print the built-in defaults merged with the config file given by --config,\n" +
			"$" + config.EnvConfigPath + " or <user config dir>/refpath/config.yaml.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := opts.cfg.Marshal()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}
