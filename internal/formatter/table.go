package formatter

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultPathColor  = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	pathStyle      lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors for the match table.
// Nil fields fall back to the defaults (ANSI 256 codes).
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	PathColor      color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

// SetTableTheme overrides the table styles.
func SetTableTheme(tc TableColors) {
	pick := func(c, fallback color.Color) color.Color {
		if c == nil {
			return fallback
		}
		return c
	}
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(pick(tc.HeaderFG, defaultHeaderFG)).
		Background(pick(tc.HeaderBG, defaultHeaderBG))
	pathStyle = lipgloss.NewStyle().Foreground(pick(tc.PathColor, defaultPathColor))
	valueStyle = lipgloss.NewStyle().Foreground(pick(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(pick(tc.SeparatorColor, defaultSeparator))
}

//nolint:gochecknoinits // default table theme for package consumers
func init() {
	SetTableTheme(TableColors{})
}

// Row is one rendered match.
type Row struct {
	Path  string
	Value string
}

// TableOptions control RenderMatches.
type TableOptions struct {
	NoColor bool
	// MaxWidth limits the table width; 0 means no limit.
	MaxWidth int
}

const (
	pathHeader  = "PATH"
	valueHeader = "VALUE"
	columnGap   = 2
)

// RenderMatches renders a PATH/VALUE table sized to fit its content. When
// the content is wider than MaxWidth the path column gets at most 40% and
// cells are truncated with an ellipsis.
func RenderMatches(rows []Row, opts TableOptions) string {
	pathWidth := runewidth.StringWidth(pathHeader)
	valueWidth := runewidth.StringWidth(valueHeader)
	for _, r := range rows {
		pathWidth = max(pathWidth, runewidth.StringWidth(r.Path))
		valueWidth = max(valueWidth, runewidth.StringWidth(r.Value))
	}

	if opts.MaxWidth > 0 && pathWidth+columnGap+valueWidth > opts.MaxWidth {
		available := max(opts.MaxWidth-columnGap, 10)
		pathWidth = min(pathWidth, max(available*40/100, 5))
		valueWidth = max(available-pathWidth, 5)
	}

	style := func(s lipgloss.Style, text string) string {
		if opts.NoColor {
			return text
		}
		return s.Render(text)
	}
	gap := strings.Repeat(" ", columnGap)

	var b strings.Builder
	header := style(headerStyle, fit(pathHeader, pathWidth)) + gap + style(headerStyle, fit(valueHeader, valueWidth))
	b.WriteString(strings.TrimRight(header, " ") + "\n")
	b.WriteString(style(separatorStyle, strings.Repeat("─", pathWidth+columnGap+valueWidth)) + "\n")
	for _, r := range rows {
		line := style(pathStyle, fit(r.Path, pathWidth)) + gap + style(valueStyle, fit(r.Value, valueWidth))
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return b.String()
}

// fit truncates s to width display cells and pads it on the right.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		tail := "..."
		if width < 3 {
			tail = ""
		}
		s = runewidth.Truncate(s, width, tail)
	}
	return runewidth.FillRight(s, width)
}

// TerminalWidth returns the width of stdout, or 0 when stdout is not a
// terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

// ColorEnabled reports whether styled output should be written to stdout.
func ColorEnabled(noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
