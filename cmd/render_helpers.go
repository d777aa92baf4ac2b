package cmd

import (
	"io"
	"strings"

	"github.com/oakwood-commons/refpath/internal/config"
	"github.com/oakwood-commons/refpath/internal/formatter"
	"github.com/oakwood-commons/refpath/pkg/core"
	"github.com/oakwood-commons/refpath/pkg/settings"
)

// formatOptions combines the selected output with the rendering settings
// from the config file.
func (o *rootOptions) formatOptions(run *settings.Run) formatter.Options {
	indent := config.Value(o.cfg.Output.Indent, 2)
	if indent <= 0 {
		indent = 2
	}
	treeOpts := formatter.TreeOptions{
		MaxDepth:       config.Value(o.cfg.Tree.MaxDepth, 0),
		ExpandArrays:   config.Value(o.cfg.Tree.ExpandArrays, false),
		MaxArrayInline: config.Value(o.cfg.Tree.MaxArrayInline, 0),
		MaxStringLen:   config.Value(o.cfg.Tree.MaxStringLen, 0),
	}
	return formatter.Options{
		Output: run.Output,
		YAML: formatter.YAMLFormatOptions{
			Indent:              indent,
			LiteralBlockStrings: config.Value(o.cfg.Output.LiteralBlockStrings, true),
		},
		Tree: treeOpts,
		Mermaid: formatter.MermaidOptions{
			Direction:      strings.ToUpper(o.cfg.Mermaid.Direction),
			MaxDepth:       treeOpts.MaxDepth,
			ExpandArrays:   treeOpts.ExpandArrays,
			MaxArrayInline: treeOpts.MaxArrayInline,
			MaxStringLen:   treeOpts.MaxStringLen,
		},
		JSONIndent: strings.Repeat(" ", indent),
	}
}

func writeDocument(w io.Writer, doc any, opts formatter.Options) error {
	out, err := formatter.Format(doc, opts)
	if err != nil {
		return err
	}
	return writeString(w, out)
}

// writeMatches prints get results. The table output lists the concrete path
// of each match; document outputs print the single value of a literal path,
// or the sequence of matched values otherwise.
func writeMatches(w io.Writer, matches []core.Match, single bool, opts formatter.Options, run *settings.Run) error {
	if opts.Output == formatter.OutputTable {
		rows := make([]formatter.Row, len(matches))
		for i, m := range matches {
			rows[i] = formatter.Row{Path: m.Path.String(), Value: formatter.Stringify(m.Value)}
		}
		return writeString(w, formatter.RenderMatches(rows, formatter.TableOptions{
			NoColor:  !formatter.ColorEnabled(run.NoColor),
			MaxWidth: formatter.TerminalWidth(),
		}))
	}
	if single && len(matches) == 1 {
		return writeDocument(w, matches[0].Value, opts)
	}
	values := make([]any, len(matches))
	for i, m := range matches {
		values[i] = m.Value
	}
	return writeDocument(w, values, opts)
}
