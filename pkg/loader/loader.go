// Package loader reads structured documents into the tree shapes the path
// engine walks. Mapping key order from JSON and YAML input is preserved in
// *tree.Object values.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names an input encoding.
type Format string

const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
)

// LoadData loads structured data from a string, auto-detecting format.
// Supports:
// - Single JSON object/array
// - Newline-delimited JSON (NDJSON): one JSON value per line
// - YAML: single document or multi-document (separated by ---)
// - TOML
//
// Every format returns one element per parsed document.
func LoadData(input string) ([]any, error) {
	return LoadDataWithLogger(input, logr.Discard())
}

// LoadDataWithLogger is like LoadData but records the detected format and any
// fallback parse attempts on lgr.
func LoadDataWithLogger(input string, lgr logr.Logger) ([]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}
	format := Detect(input)
	lgr.V(1).Info("detected input format", "format", string(format))

	docs, err := decodeAs(input, format)
	if err == nil || format == FormatYAML {
		return docs, err
	}
	// A wrong guess falls back to YAML, which also accepts most JSON.
	lgr.V(1).Info("falling back to YAML", "format", string(format), "error", err.Error())
	if yamlDocs, yamlErr := decodeAs(input, FormatYAML); yamlErr == nil {
		return yamlDocs, nil
	}
	return nil, err
}

// Detect guesses the encoding of input.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return FormatYAML
	}
	if lines := strings.Split(input, "\n"); len(lines) > 1 && isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	// TOML [section] headers look like JSON arrays, so check TOML first.
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadRoot parses input into a single root node. Multi-document inputs are
// returned as a []any.
func LoadRoot(input string) (any, error) {
	return LoadRootWithLogger(input, logr.Discard())
}

// LoadRootWithLogger is LoadRoot with logging of format detection.
func LoadRootWithLogger(input string, lgr logr.Logger) (any, error) {
	results, err := LoadDataWithLogger(input, lgr)
	if err != nil {
		return nil, err
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// LoadRootBytes parses input bytes into a single root node.
func LoadRootBytes(data []byte) (any, error) {
	return LoadRoot(string(data))
}

// LoadReader reads r to the end and parses it into a single root node.
func LoadReader(r io.Reader, lgr logr.Logger) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return LoadRootWithLogger(string(data), lgr)
}

// LoadFile reads a file and parses it into a single root node.
func LoadFile(path string) (any, error) {
	return LoadFileWithLogger(path, logr.Discard())
}

// LoadFileWithLogger is like LoadFile. A known file extension selects the
// decoder first; content sniffing is used when that fails.
func LoadFileWithLogger(path string, lgr logr.Logger) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if format := FormatFromExtension(path); format != FormatAuto {
		docs, err := decodeAs(strings.TrimSpace(string(data)), format)
		if err == nil {
			lgr.V(1).Info("decoded by extension", "path", path, "format", string(format))
			return single(docs), nil
		}
		lgr.V(1).Info("extension decode failed, sniffing content", "path", path, "format", string(format), "error", err.Error())
	}
	return LoadRootWithLogger(string(data), lgr)
}

// FormatFromExtension maps a file extension to a format.
func FormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatAuto
	}
}

func single(docs []any) any {
	if len(docs) == 1 {
		return docs[0]
	}
	return docs
}

func decodeAs(input string, format Format) ([]any, error) {
	switch format {
	case FormatJSON:
		return loadJSON(input)
	case FormatNDJSON:
		return loadNDJSON(input)
	case FormatTOML:
		return loadTOML(input)
	default:
		return loadYAML(input)
	}
}

// loadJSON parses a single JSON value keeping object key order.
func loadJSON(input string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON: unexpected data after top-level value")
	}
	return []any{v}, nil
}

// loadYAML parses one or more YAML documents keeping mapping key order.
func loadYAML(input string) ([]any, error) {
	var results []any
	decoder := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc yaml.Node
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		v, err := fromYAMLNode(&doc)
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if v != nil {
			results = append(results, v)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no documents found in YAML input")
	}
	return results, nil
}

// loadNDJSON parses newline-delimited JSON.
// Lines that are not valid JSON are kept as plain strings.
func loadNDJSON(input string) ([]any, error) {
	lines := strings.Split(input, "\n")
	results := make([]any, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		docs, err := loadJSON(line)
		if err != nil {
			results = append(results, line)
			continue
		}
		results = append(results, docs[0])
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	return results, nil
}

// loadTOML parses TOML content. TOML tables carry no order once decoded, so
// their keys are sorted.
func loadTOML(input string) ([]any, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{Normalize(data)}, nil
}

// isLikelyNDJSON heuristic: a majority of non-empty lines must start with '{'
// or '[' and there must be more than one of them.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			// a pretty-printed JSON document has opening and closing lines
			// that are not complete values on their own
			if !json.Valid([]byte(trimmed)) {
				return false
			}
			jsonCount++
		}
	}

	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

var (
	tomlSectionPattern  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML heuristic: section headers, or a majority of key = value lines.
func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		// only unindented headers count, indented ones are usually YAML block content
		if line == trimmed && tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}

// ParseValue decodes a single scalar or inline YAML value such as `42`,
// `true`, `"text"` or `{a: 1}`. Empty input is the empty string.
func ParseValue(input string) (any, error) {
	if strings.TrimSpace(input) == "" {
		return input, nil
	}
	var node yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader([]byte(input))).Decode(&node); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", input, err)
	}
	return fromYAMLNode(&node)
}
