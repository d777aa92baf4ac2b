package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/refpath/internal/formatter"
	"github.com/oakwood-commons/refpath/internal/limiter"
	"github.com/oakwood-commons/refpath/pkg/core"
	"github.com/oakwood-commons/refpath/pkg/loader"
	"github.com/oakwood-commons/refpath/pkg/logger"
	"github.com/oakwood-commons/refpath/pkg/settings"
)

var (
	errInPlaceStdin = errors.New("--in-place needs a file argument")
	errNoInput      = errors.New("no input: pass a file argument or pipe a document on stdin")
)

// inputFromArgs returns the input settings for an optional file argument at
// position idx.
func inputFromArgs(args []string, idx int, inPlace bool) settings.InputSettings {
	in := settings.InputSettings{InPlace: inPlace}
	if len(args) > idx {
		in.Path = args[idx]
	}
	return in
}

// loadInput reads the document from the file argument or from stdin.
func loadInput(cmd *cobra.Command, in settings.InputSettings, lgr logr.Logger) (any, error) {
	if in.FromStdin() {
		if in.InPlace {
			return nil, errInPlaceStdin
		}
		r := cmd.InOrStdin()
		if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return nil, errNoInput
		}
		return core.LoadReader(r, lgr)
	}
	root, err := core.LoadFileWithLogger(in.Path, lgr)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", in.Path, err)
	}
	return root, nil
}

// newEngine builds an engine from the run settings stored in ctx.
func newEngine(ctx context.Context) (*core.Engine, *settings.Run, error) {
	run := settings.FromContextOrDefault(ctx)
	engine, err := core.New(
		core.WithLogger(*logger.FromContext(ctx)),
		core.WithWhere(run.Where),
		core.WithLimit(limiter.Config{Limit: run.Limit, Offset: run.Offset}),
	)
	if err != nil {
		return nil, run, err
	}
	return engine, run, nil
}

// writeInPlace replaces the input file with doc, encoded in the format its
// extension names (YAML when the extension is unknown).
func writeInPlace(path string, doc any, opts formatter.Options) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	var out string
	switch loader.FormatFromExtension(path) {
	case loader.FormatJSON:
		out, err = formatter.FormatJSON(doc, opts.JSONIndent)
	case loader.FormatTOML:
		out, err = formatter.FormatTOML(doc)
	case loader.FormatNDJSON:
		out, err = formatNDJSON(doc)
	default:
		out, err = formatter.FormatYAML(doc, opts.YAML)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(ensureNewline(out)), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// formatNDJSON writes one compact JSON value per line. A sequence root is
// the list of documents.
func formatNDJSON(doc any) (string, error) {
	docs, ok := doc.([]any)
	if !ok {
		docs = []any{doc}
	}
	var b strings.Builder
	for _, d := range docs {
		line, err := json.Marshal(d)
		if err != nil {
			return "", err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, ensureNewline(s))
	return err
}
