package refnode

import (
	"fmt"
	"slices"

	"github.com/oakwood-commons/refpath/pkg/tree"
)

// Node is one match of a traversal. It remembers the value seen when it was
// produced, the concrete path to it and the root it was found under.
type Node struct {
	value any
	path  Path
	root  *any
}

// Value returns the value captured when the node was produced. It is not
// re-read from the data.
func (n *Node) Value() any {
	return n.value
}

// Path returns a copy of the concrete path to the node.
func (n *Node) Path() Path {
	return slices.Clone(n.path)
}

// IsRoot reports whether the node addresses the root itself.
func (n *Node) IsRoot() bool {
	return len(n.path) == 0
}

// Modify overwrites the slot the node addresses.
func (n *Node) Modify(value any) error {
	if n.IsRoot() {
		*n.root = value
		return nil
	}
	return n.rewrite(func(parent any, last tree.Step) (any, error) {
		return tree.SetChild(parent, last, value)
	})
}

// Remove deletes the slot the node addresses. Later elements of a sequence
// shift down by one.
func (n *Node) Remove() error {
	if n.IsRoot() {
		return ErrRootNotRemovable
	}
	return n.rewrite(func(parent any, last tree.Step) (any, error) {
		return tree.DeleteChild(parent, last)
	})
}

// Truncate keeps at most max code points of the string currently stored at
// the node and appends suffix. The suffix is appended even when the value was
// already short enough.
func (n *Node) Truncate(max int, suffix string) error {
	if max < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLength, max)
	}
	current, err := n.current()
	if err != nil {
		return err
	}
	s, ok := current.(string)
	if !ok {
		return &TypeMismatchError{Op: "truncate", Path: n.Path(), Want: "string", Value: current}
	}
	return n.Modify(truncateRunes(s, max) + suffix)
}

func truncateRunes(s string, max int) string {
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// current re-reads the value stored at the node's slot.
func (n *Node) current() (any, error) {
	if n.IsRoot() {
		return *n.root, nil
	}
	chain, err := n.locate()
	if err != nil {
		return nil, err
	}
	last := n.path[len(n.path)-1]
	v, _, ok := tree.Lookup(chain[len(chain)-1], last)
	if !ok {
		return nil, n.stale(len(n.path)-1, chain[len(chain)-1])
	}
	return v, nil
}

// locate replays the path from the root and returns, for every step, the
// container that step is taken in. The last element is the node's parent.
func (n *Node) locate() ([]any, error) {
	chain := make([]any, len(n.path))
	cur := *n.root
	for i, step := range n.path[:len(n.path)-1] {
		chain[i] = cur
		next, _, ok := tree.Lookup(cur, step)
		if !ok {
			return nil, n.stale(i, cur)
		}
		cur = next
	}
	chain[len(chain)-1] = cur
	return chain, nil
}

// rewrite applies op to the parent container and stores the result back up
// the chain, so a sequence that changed length is visible from the root.
func (n *Node) rewrite(op func(parent any, last tree.Step) (any, error)) error {
	chain, err := n.locate()
	if err != nil {
		return err
	}
	lastIdx := len(n.path) - 1
	updated, err := op(chain[lastIdx], n.path[lastIdx])
	if err != nil {
		return n.wrapSlotErr(lastIdx, chain[lastIdx], err)
	}
	for i := lastIdx - 1; i >= 0; i-- {
		updated, err = tree.SetChild(chain[i], n.path[i], updated)
		if err != nil {
			return n.wrapSlotErr(i, chain[i], err)
		}
	}
	*n.root = updated
	return nil
}

func (n *Node) stale(i int, container any) error {
	return &UnreachableError{
		Step:    n.path[i],
		At:      slices.Clone(n.path[:i]),
		Current: tree.Describe(container),
	}
}

func (n *Node) wrapSlotErr(i int, container any, err error) error {
	return fmt.Errorf("%w: %w", n.stale(i, container), err)
}
