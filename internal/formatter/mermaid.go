package formatter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/refpath/pkg/tree"
)

// MermaidOptions controls Mermaid diagram output formatting.
type MermaidOptions struct {
	// Direction sets the diagram direction: TD, LR, BT or RL. Default is TD.
	Direction string
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

type mermaidBuilder struct {
	lines  []string
	nodeID int
	opts   MermaidOptions
}

// FormatAsMermaid renders data as a Mermaid flowchart. Containers become
// nodes labelled with their key or [index], with an edge to every child.
func FormatAsMermaid(node any, opts MermaidOptions) string {
	if opts.Direction == "" {
		opts.Direction = "TD"
	}
	if opts.MaxArrayInline == 0 {
		opts.MaxArrayInline = defaultMaxArrayInline
	}

	b := &mermaidBuilder{
		lines: []string{"graph " + opts.Direction},
		opts:  opts,
	}
	rootID := b.nextID()
	b.addNode(rootID, "$", "")
	if tree.IsContainer(node) {
		b.addChildren(rootID, node, 0)
	} else if node != nil {
		b.addLeaf(rootID, formatScalarSimple(node))
	}
	return strings.Join(b.lines, "\n") + "\n"
}

func (b *mermaidBuilder) nextID() string {
	id := fmt.Sprintf("n%d", b.nodeID)
	b.nodeID++
	return id
}

func (b *mermaidBuilder) addNode(id, key, value string) {
	b.lines = append(b.lines, fmt.Sprintf("    %s[%q]", id, b.label(key, value)))
}

func (b *mermaidBuilder) addEdge(fromID, toID string) {
	b.lines = append(b.lines, fmt.Sprintf("    %s --> %s", fromID, toID))
}

func (b *mermaidBuilder) addLeaf(parentID, label string) {
	id := b.nextID()
	b.addNode(id, label, "")
	b.addEdge(parentID, id)
}

// label joins key and value; Mermaid labels cannot hold double quotes or
// line breaks.
func (b *mermaidBuilder) label(key, value string) string {
	label := key
	if !b.opts.NoValues && value != "" {
		label = key + ": " + value
	}
	label = strings.ReplaceAll(label, `"`, `'`)
	label = strings.ReplaceAll(label, "\r", "")
	return strings.ReplaceAll(label, "\n", " ")
}

func (b *mermaidBuilder) addChildren(parentID string, container any, depth int) {
	if b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth {
		b.addLeaf(parentID, "...")
		return
	}
	if arr, ok := container.([]any); ok && isScalarArray(arr) && !b.opts.ExpandArrays {
		if len(arr) <= b.opts.MaxArrayInline {
			b.addLeaf(parentID, formatInlineArray(arr))
		} else {
			b.addLeaf(parentID, fmt.Sprintf("[%d items]", len(arr)))
		}
		return
	}
	for _, e := range tree.Entries(container) {
		id := b.nextID()
		if tree.IsContainer(e.Value) {
			b.addNode(id, e.Step.String(), "")
			b.addEdge(parentID, id)
			b.addChildren(id, e.Value, depth+1)
			continue
		}
		b.addNode(id, e.Step.String(), b.scalar(e.Value))
		b.addEdge(parentID, id)
	}
}

func (b *mermaidBuilder) scalar(v any) string {
	if b.opts.NoValues {
		return ""
	}
	s := formatScalarSimple(v)
	if b.opts.MaxStringLen > 0 {
		runes := []rune(s)
		if len(runes) > b.opts.MaxStringLen {
			if b.opts.MaxStringLen <= 3 {
				return "..."
			}
			return string(runes[:b.opts.MaxStringLen-3]) + "..."
		}
	}
	return s
}
