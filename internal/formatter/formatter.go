// Package formatter renders documents and path matches for the terminal.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/refpath/pkg/tree"
)

// Output format names accepted by Format and the --output flag.
const (
	OutputYAML    = "yaml"
	OutputJSON    = "json"
	OutputTOML    = "toml"
	OutputTree    = "tree"
	OutputTable   = "table"
	OutputMermaid = "mermaid"
)

// ValidOutputs lists every accepted --output value.
var ValidOutputs = []string{OutputYAML, OutputJSON, OutputTOML, OutputTable, OutputTree, OutputMermaid}

// ValidateOutput returns an error for an unknown output format.
func ValidateOutput(output string) error {
	for _, valid := range ValidOutputs {
		if output == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid output %q: valid values are %s", output, strings.Join(ValidOutputs, ", "))
}

// Options control document rendering.
type Options struct {
	Output  string
	YAML    YAMLFormatOptions
	Tree    TreeOptions
	Mermaid MermaidOptions
	// JSONIndent is the indent unit for JSON output (default two spaces).
	JSONIndent string
}

// Format renders v as a whole document. The table output is for match lists
// and renders a document as a single row.
func Format(v any, opts Options) (string, error) {
	switch opts.Output {
	case "", OutputYAML:
		return FormatYAML(v, opts.YAML)
	case OutputJSON:
		return FormatJSON(v, opts.JSONIndent)
	case OutputTOML:
		return FormatTOML(v)
	case OutputTree:
		return FormatAsTree(v, opts.Tree), nil
	case OutputMermaid:
		return FormatAsMermaid(v, opts.Mermaid), nil
	case OutputTable:
		return RenderMatches([]Row{{Path: "$", Value: Stringify(v)}}, TableOptions{NoColor: true}), nil
	default:
		return "", ValidateOutput(opts.Output)
	}
}

// FormatJSON renders v as indented JSON keeping *tree.Object key order.
func FormatJSON(v any, indent string) (string, error) {
	if indent == "" {
		indent = "  "
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode JSON: %w", err)
	}
	return buf.String(), nil
}

// FormatTOML renders v as TOML. The root must be a mapping; keys come out in
// go-toml's order since TOML tables are unordered.
func FormatTOML(v any) (string, error) {
	native := tree.ToNative(v)
	if _, ok := native.(map[string]any); !ok {
		return "", fmt.Errorf("toml output needs a mapping at the root, got %s", tree.Describe(v))
	}
	b, err := toml.Marshal(native)
	if err != nil {
		return "", fmt.Errorf("encode TOML: %w", err)
	}
	return string(b), nil
}

// Stringify returns a compact one-line representation of v.
func Stringify(v any) string {
	if v == nil {
		return "null"
	}
	switch t := v.(type) {
	case string:
		return escapeScalarString(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	case *tree.Object, map[string]any, []any:
		// compact JSON for readability in a single column
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", t)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() { //nolint:exhaustive // only complex types need JSON marshaling
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		}
		return fmt.Sprintf("%v", v)
	}
}

// escapeScalarString flattens line breaks so table rows stay single-line.
func escapeScalarString(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}
