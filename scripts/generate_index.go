// Command generate_index builds the release landing page: README.md rendered
// to HTML, a downloads table for the archives in the dist directory and a
// reference of the path syntax and --where functions.
//
// Usage: go run ./scripts/generate_index.go <dist-dir>
package main

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/refpath/internal/filter"
	"github.com/oakwood-commons/refpath/pkg/pathexpr"
)

// syntaxExamples are shown with their parsed segments on the page.
var syntaxExamples = []string{
	"$",
	"$.items[*].name",
	`.metadata."display name"`,
	"[0].*",
}

var archivePattern = regexp.MustCompile(`^refpath_(.+)_(Darwin|Linux|Windows)_(arm64|x86_64)\.(tar\.gz|zip)$`)

type archive struct {
	File     string
	Version  string
	Platform string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dist-dir>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "generate_index: %v\n", err)
		os.Exit(1)
	}
}

func run(distDir string) error {
	readme, err := os.ReadFile("README.md")
	if err != nil {
		return fmt.Errorf("read README.md: %w", err)
	}
	archives, err := findArchives(distDir)
	if err != nil {
		return err
	}
	functions, err := filter.Functions()
	if err != nil {
		return err
	}

	indexPath := filepath.Join(distDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return err
	}
	defer f.Close()

	writeHeader(f)
	if _, err := f.Write(renderMarkdown(readme)); err != nil {
		return err
	}
	writeDownloads(f, archives)
	writeSyntaxReference(f)
	writeFunctionReference(f, functions)
	writeFooter(f)

	fmt.Fprintf(os.Stderr, "Generated %s\n", indexPath)
	return nil
}

func renderMarkdown(src []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return markdown.Render(p.Parse(src), renderer)
}

// findArchives lists the goreleaser archives in distDir sorted by platform.
func findArchives(distDir string) ([]archive, error) {
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", distDir, err)
	}
	var out []archive
	for _, e := range entries {
		m := archivePattern.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		out = append(out, archive{File: e.Name(), Version: m[1], Platform: platformName(m[2], m[3])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

func platformName(goos, arch string) string {
	name := goos
	if goos == "Darwin" {
		name = "macOS"
	}
	return name + " (" + arch + ")"
}

func writeDownloads(w io.Writer, archives []archive) {
	if len(archives) == 0 {
		return
	}
	fmt.Fprintf(w, "<section class=\"downloads\">\n<h2 id=\"downloads\">Downloads %s</h2>\n<table>\n", html.EscapeString(archives[0].Version))
	for _, a := range archives {
		fmt.Fprintf(w, "<tr><td>%s</td><td><a href=\"%s\">%s</a></td></tr>\n",
			html.EscapeString(a.Platform), html.EscapeString(a.File), html.EscapeString(a.File))
	}
	fmt.Fprint(w, "</table>\n</section>\n")
}

func writeSyntaxReference(w io.Writer) {
	fmt.Fprint(w, "<h2 id=\"path-syntax\">Path syntax</h2>\n<table>\n<tr><th>expression</th><th>segments</th></tr>\n")
	for _, ex := range syntaxExamples {
		expr := pathexpr.MustParse(ex)
		parts := make([]string, 0, expr.Len())
		for _, s := range expr.Segments() {
			parts = append(parts, s.Kind.String()+" "+s.String())
		}
		if len(parts) == 0 {
			parts = append(parts, "root")
		}
		fmt.Fprintf(w, "<tr><td><code>%s</code></td><td>%s</td></tr>\n",
			html.EscapeString(ex), html.EscapeString(strings.Join(parts, ", ")))
	}
	fmt.Fprint(w, "</table>\n")
}

func writeFunctionReference(w io.Writer, functions []string) {
	fmt.Fprint(w, "<h2 id=\"where-functions\">--where functions</h2>\n<ul class=\"functions\">\n")
	for _, fn := range functions {
		fmt.Fprintf(w, "<li><code>%s</code></li>\n", html.EscapeString(fn))
	}
	fmt.Fprint(w, "</ul>\n")
}

func writeHeader(w io.Writer) {
	fmt.Fprint(w, `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>refpath - path queries for structured documents</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
    h1 { color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px; }
    h2 { color: #1e40af; margin-top: 30px; }
    code { background: #f1f5f9; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
    pre { background: #1e293b; color: #e2e8f0; padding: 16px; border-radius: 6px; overflow-x: auto; }
    pre code { background: none; color: inherit; padding: 0; }
    table { border-collapse: collapse; }
    td, th { padding: 4px 10px; text-align: left; }
    .downloads { background: #eff6ff; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #2563eb; }
    .functions { columns: 2; font-size: 0.85em; }
  </style>
</head>
<body>
`)
}

func writeFooter(w io.Writer) {
	fmt.Fprint(w, `</body>
</html>
`)
}
