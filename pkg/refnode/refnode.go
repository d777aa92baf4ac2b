// Package refnode walks nested data with a path expression and yields a Node
// for every match. A Node can read, replace, truncate or remove the value it
// was found at without rebuilding the surrounding structure.
//
// Matches are produced lazily: the next match is only computed when the
// consumer asks for it, and stopping early skips the rest of the tree.
//
//	doc := any(data)
//	err := refnode.Traverse(&doc, ".items[*].description", func(n *refnode.Node) error {
//		return n.Truncate(18, "...")
//	})
//
// Nodes locate their slot by replaying their concrete path from the root on
// every mutation. Removing an element from a sequence shifts later elements,
// so a node produced earlier for a later index of the same sequence then
// addresses the shifted element, or fails with ErrPathUnreachable if the
// index no longer exists.
package refnode

import (
	"iter"
	"strings"

	"github.com/oakwood-commons/refpath/pkg/pathexpr"
	"github.com/oakwood-commons/refpath/pkg/tree"
)

// Expr is a path expression given either as text or already parsed.
type Expr interface {
	string | pathexpr.Expression
}

// Path is the concrete location of a node, from the root down.
type Path []tree.Step

// String renders the path as a literal expression, e.g. $.items[0].title.
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range p {
		if s.IsIndex {
			b.WriteString(s.String())
			continue
		}
		b.WriteString(pathexpr.FormatName(s.Key))
	}
	return b.String()
}

// Last returns the final step and false for the root path.
func (p Path) Last() (tree.Step, bool) {
	if len(p) == 0 {
		return tree.Step{}, false
	}
	return p[len(p)-1], true
}

func (p Path) with(s tree.Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// Yield returns the lazy sequence of matches for expr under *root.
//
// Matches come depth-first, left to right in each container's natural order.
// Wildcards over empty containers or scalars match nothing. A literal segment
// that cannot be resolved yields a single *UnreachableError and ends the
// sequence; an invalid expression is yielded the same way.
func Yield[E Expr](root *any, expr E) iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		if root == nil {
			yield(nil, ErrNilRoot)
			return
		}
		parsed, err := resolve(expr)
		if err != nil {
			yield(nil, err)
			return
		}
		w := walker{root: root, yield: yield}
		w.walk(*root, parsed.Segments(), nil)
	}
}

// Traverse drives Yield to completion and calls fn for every match. The first
// error, from the traversal or from fn, stops the walk and is returned.
// Mutations made before that point stay in place.
func Traverse[E Expr](root *any, expr E, fn func(*Node) error) error {
	for node, err := range Yield(root, expr) {
		if err != nil {
			return err
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return nil
}

// Map is Traverse for callers holding the root by value: it returns the root
// after fn has run on every match, which may be a different value when a
// top-level sequence shrank or the root itself was replaced.
func Map[E Expr](root any, expr E, fn func(*Node) error) (any, error) {
	err := Traverse(&root, expr, fn)
	return root, err
}

// Collect drains the match sequence into a slice.
func Collect[E Expr](root *any, expr E) ([]*Node, error) {
	var nodes []*Node
	for node, err := range Yield(root, expr) {
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func resolve[E Expr](expr E) (pathexpr.Expression, error) {
	switch v := any(expr).(type) {
	case pathexpr.Expression:
		return v, nil
	case string:
		return pathexpr.Parse(v)
	default:
		panic("unreachable")
	}
}

type walker struct {
	root  *any
	yield func(*Node, error) bool
}

// walk returns false once the consumer has stopped or a fatal error was yielded.
func (w *walker) walk(current any, segments []pathexpr.Segment, path Path) bool {
	if len(segments) == 0 {
		return w.yield(&Node{value: current, path: path, root: w.root}, nil)
	}

	seg, rest := segments[0], segments[1:]
	if seg.IsWildcard() {
		for _, entry := range tree.Entries(current) {
			if !w.walk(entry.Value, rest, path.with(entry.Step)) {
				return false
			}
		}
		return true
	}

	step := stepFor(seg)
	child, resolved, ok := tree.Lookup(current, step)
	if !ok {
		w.yield(nil, &UnreachableError{
			Step:      step,
			At:        path,
			Current:   tree.Describe(current),
			Remaining: rest,
		})
		return false
	}
	return w.walk(child, rest, path.with(resolved))
}

func stepFor(seg pathexpr.Segment) tree.Step {
	if seg.Kind == pathexpr.KindIndex {
		return tree.IndexStep(seg.Index)
	}
	return tree.KeyStep(seg.Name)
}
