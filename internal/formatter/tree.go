package formatter

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/refpath/pkg/tree"
)

const (
	// defaultMaxArrayInline is the max number of array elements to show inline.
	defaultMaxArrayInline = 3
)

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// NoValues hides values at leaf nodes (structure only).
	NoValues bool
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	// ExpandArrays shows all array elements instead of "[N items]" summary.
	ExpandArrays bool
	// MaxArrayInline is max items to show inline for scalar arrays (default 3).
	MaxArrayInline int
	// MaxStringLen is max runes before truncating inline strings.
	// 0 or negative = no truncation.
	MaxStringLen int
}

// FormatAsTree renders data as an ASCII tree. Mappings become branches in
// their own key order, sequences show indexed children and scalars are
// displayed inline at leaves.
func FormatAsTree(node any, opts TreeOptions) string {
	if opts.MaxArrayInline == 0 {
		opts.MaxArrayInline = defaultMaxArrayInline
	}

	root := treeprint.New()
	if tree.IsContainer(node) {
		buildTree(root, node, opts, 0)
	} else {
		root.AddNode(formatScalarValue(node, opts))
	}
	return root.String()
}

// buildTree adds one node per container entry.
func buildTree(branch treeprint.Tree, container any, opts TreeOptions, depth int) {
	for _, e := range tree.Entries(container) {
		addNodeForValue(branch, e.Step.String(), e.Value, opts, depth)
	}
}

func addNodeForValue(branch treeprint.Tree, key string, val any, opts TreeOptions, depth int) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		branch.AddNode(formatKeyValue(key, "..."))
		return
	}

	if seq, ok := val.([]any); ok {
		addArrayNode(branch, key, seq, opts, depth)
		return
	}
	if !tree.IsContainer(val) {
		if opts.NoValues {
			branch.AddNode(key)
		} else {
			branch.AddNode(formatKeyValue(key, formatScalarValue(val, opts)))
		}
		return
	}
	if len(tree.Entries(val)) == 0 {
		if opts.NoValues {
			branch.AddNode(key)
		} else {
			branch.AddNode(formatKeyValue(key, "{}"))
		}
		return
	}
	child := branch.AddBranch(key)
	buildTree(child, val, opts, depth+1)
}

// addArrayNode handles sequences with inline, summary or expanded output.
func addArrayNode(branch treeprint.Tree, key string, v []any, opts TreeOptions, depth int) {
	scalars := isScalarArray(v)
	switch {
	case opts.NoValues && (len(v) == 0 || (scalars && !opts.ExpandArrays)):
		branch.AddNode(key)
	case len(v) == 0:
		branch.AddNode(formatKeyValue(key, "[]"))
	case !opts.ExpandArrays && scalars && len(v) <= opts.MaxArrayInline:
		branch.AddNode(formatKeyValue(key, formatInlineArray(v)))
	case !opts.ExpandArrays && scalars:
		branch.AddNode(formatKeyValue(key, fmt.Sprintf("[%d items]", len(v))))
	default:
		child := branch.AddBranch(key)
		buildTree(child, v, opts, depth+1)
	}
}

func formatKeyValue(key, value string) string {
	return key + ": " + value
}

func isScalarArray(arr []any) bool {
	for _, elem := range arr {
		if tree.IsContainer(elem) {
			return false
		}
	}
	return true
}

// formatInlineArray formats a scalar array as [a, b, c].
func formatInlineArray(arr []any) string {
	parts := make([]string, len(arr))
	for i, elem := range arr {
		parts[i] = formatScalarSimple(elem)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatScalarValue(v any, opts TreeOptions) string {
	s := formatScalarSimple(v)
	if opts.MaxStringLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= opts.MaxStringLen {
		return s
	}
	if opts.MaxStringLen <= 3 {
		return "..."
	}
	return string(runes[:opts.MaxStringLen-3]) + "..."
}

// formatScalarSimple converts a scalar to string without truncation.
func formatScalarSimple(v any) string {
	if v == nil {
		return "null"
	}
	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return escapeScalarString(val)
	case float64:
		// clean integers print without a fraction
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case int, int64, int32:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
