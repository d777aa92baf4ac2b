// Package config loads the refpath configuration file. Built-in defaults are
// embedded; a user file overrides only the keys it sets.
package config

// File is the configuration file schema. Pointer fields distinguish "not
// set" from a zero value when merging.
type File struct {
	App      AppConfig      `yaml:"app"`
	Output   OutputConfig   `yaml:"output"`
	Table    TableConfig    `yaml:"table"`
	Tree     TreeConfig     `yaml:"tree"`
	Mermaid  MermaidConfig  `yaml:"mermaid"`
	Truncate TruncateConfig `yaml:"truncate"`
	Log      LogConfig      `yaml:"log"`
}

// AppConfig holds CLI presentation settings.
type AppConfig struct {
	// HelpHeaderTemplate is a text/template rendered above the root help.
	// Fields: .name, .version, .commit.
	HelpHeaderTemplate string `yaml:"help_header_template,omitempty"`
}

// OutputConfig holds document rendering defaults.
type OutputConfig struct {
	Format              *string `yaml:"format,omitempty"`
	Indent              *int    `yaml:"indent,omitempty"`
	LiteralBlockStrings *bool   `yaml:"literal_block_strings,omitempty"`
	NoColor             *bool   `yaml:"no_color,omitempty"`
}

// TableConfig holds match table colors as lipgloss color strings
// (ANSI numbers or hex).
type TableConfig struct {
	HeaderFG  string `yaml:"header_fg,omitempty"`
	HeaderBG  string `yaml:"header_bg,omitempty"`
	Path      string `yaml:"path,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Separator string `yaml:"separator,omitempty"`
}

// TreeConfig holds tree output options.
type TreeConfig struct {
	MaxDepth       *int  `yaml:"max_depth,omitempty"`
	ExpandArrays   *bool `yaml:"expand_arrays,omitempty"`
	MaxArrayInline *int  `yaml:"max_array_inline,omitempty"`
	MaxStringLen   *int  `yaml:"max_string_len,omitempty"`
}

// MermaidConfig holds mermaid output options. Depth and array settings are
// shared with the tree output.
type MermaidConfig struct {
	// Direction is TD, LR, BT or RL.
	Direction string `yaml:"direction,omitempty"`
}

// TruncateConfig holds truncate command defaults.
type TruncateConfig struct {
	Suffix *string `yaml:"suffix,omitempty"`
}

// LogConfig holds logging defaults.
type LogConfig struct {
	Level *string `yaml:"level,omitempty"`
}

// Value returns *p, or fallback when p is nil.
func Value[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
