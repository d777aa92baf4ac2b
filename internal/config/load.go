package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "REFPATH_CONFIG"

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses the embedded defaults.
func Default() (File, error) {
	var cfg File
	if err := decode(embeddedDefaultConfig, &cfg); err != nil {
		return File{}, fmt.Errorf("decode embedded default config: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults merged with the file at path. An empty path
// returns the defaults.
func Load(path string) (File, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var user File
	if err := decode(data, &user); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return Merge(cfg, user), nil
}

// decode rejects unknown keys so typos in a config file are reported.
func decode(data []byte, cfg *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Resolve picks the config file to load: the explicit path, then
// $REFPATH_CONFIG, then <user config dir>/refpath/config.yaml when it exists.
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(dir, "refpath", "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// Merge overlays every field set in overlay onto base.
func Merge(base, overlay File) File {
	cfg := base
	if overlay.App.HelpHeaderTemplate != "" {
		cfg.App.HelpHeaderTemplate = overlay.App.HelpHeaderTemplate
	}

	if overlay.Output.Format != nil {
		cfg.Output.Format = overlay.Output.Format
	}
	if overlay.Output.Indent != nil {
		cfg.Output.Indent = overlay.Output.Indent
	}
	if overlay.Output.LiteralBlockStrings != nil {
		cfg.Output.LiteralBlockStrings = overlay.Output.LiteralBlockStrings
	}
	if overlay.Output.NoColor != nil {
		cfg.Output.NoColor = overlay.Output.NoColor
	}

	if overlay.Table.HeaderFG != "" {
		cfg.Table.HeaderFG = overlay.Table.HeaderFG
	}
	if overlay.Table.HeaderBG != "" {
		cfg.Table.HeaderBG = overlay.Table.HeaderBG
	}
	if overlay.Table.Path != "" {
		cfg.Table.Path = overlay.Table.Path
	}
	if overlay.Table.Value != "" {
		cfg.Table.Value = overlay.Table.Value
	}
	if overlay.Table.Separator != "" {
		cfg.Table.Separator = overlay.Table.Separator
	}

	if overlay.Tree.MaxDepth != nil {
		cfg.Tree.MaxDepth = overlay.Tree.MaxDepth
	}
	if overlay.Tree.ExpandArrays != nil {
		cfg.Tree.ExpandArrays = overlay.Tree.ExpandArrays
	}
	if overlay.Tree.MaxArrayInline != nil {
		cfg.Tree.MaxArrayInline = overlay.Tree.MaxArrayInline
	}
	if overlay.Tree.MaxStringLen != nil {
		cfg.Tree.MaxStringLen = overlay.Tree.MaxStringLen
	}

	if overlay.Mermaid.Direction != "" {
		cfg.Mermaid.Direction = overlay.Mermaid.Direction
	}

	if overlay.Truncate.Suffix != nil {
		cfg.Truncate.Suffix = overlay.Truncate.Suffix
	}
	if overlay.Log.Level != nil {
		cfg.Log.Level = overlay.Log.Level
	}
	return cfg
}

// Marshal renders cfg as YAML.
func (f File) Marshal() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HelpHeader renders the help header template with build information.
func (f File) HelpHeader(name, version, commit string) (string, error) {
	if strings.TrimSpace(f.App.HelpHeaderTemplate) == "" {
		return "", nil
	}
	tmpl, err := template.New("help_header").Option("missingkey=error").Parse(f.App.HelpHeaderTemplate)
	if err != nil {
		return "", fmt.Errorf("parse help_header_template: %w", err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"name":    name,
		"version": version,
		"commit":  commit,
	})
	if err != nil {
		return "", fmt.Errorf("render help_header_template: %w", err)
	}
	return buf.String(), nil
}
