package refnode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/refpath/pkg/pathexpr"
	"github.com/oakwood-commons/refpath/pkg/tree"
)

var (
	// ErrPathUnreachable indicates a literal segment, or a stored path step,
	// that has no matching key or index in the data.
	ErrPathUnreachable = errors.New("refnode: path unreachable")

	// ErrTypeMismatch indicates an operation applied to a value of the wrong kind.
	ErrTypeMismatch = errors.New("refnode: type mismatch")

	// ErrRootNotRemovable is returned by Remove on a node that addresses the root.
	ErrRootNotRemovable = errors.New("refnode: the root node cannot be removed")

	// ErrInvalidLength is returned by Truncate for a negative length.
	ErrInvalidLength = errors.New("refnode: invalid truncate length")

	// ErrNilRoot is returned when the root pointer is nil.
	ErrNilRoot = errors.New("refnode: nil root")
)

// UnreachableError describes where a path stopped resolving.
type UnreachableError struct {
	// Step is the key or index that could not be found.
	Step tree.Step
	// At is the concrete path of the container that was searched.
	At Path
	// Current describes the container that was searched.
	Current string
	// Remaining lists the segments after Step that were never visited.
	// It is empty when a stored node path went stale.
	Remaining []pathexpr.Segment
}

func (e *UnreachableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "refnode: path unreachable at %s: no %s in %s", e.At, stepLabel(e.Step), e.Current)
	if len(e.Remaining) > 0 {
		parts := make([]string, len(e.Remaining))
		for i, s := range e.Remaining {
			parts[i] = s.String()
		}
		fmt.Fprintf(&b, " (remaining segments: %s)", strings.Join(parts, ""))
	}
	return b.String()
}

// Is makes errors.Is(err, ErrPathUnreachable) succeed.
func (e *UnreachableError) Is(target error) bool {
	return target == ErrPathUnreachable
}

// TypeMismatchError reports an operation that needs a different value kind.
type TypeMismatchError struct {
	Op    string
	Path  Path
	Want  string
	Value any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("refnode: %s at %s needs a %s, got %s", e.Op, e.Path, e.Want, tree.Describe(e.Value))
}

// Is makes errors.Is(err, ErrTypeMismatch) succeed.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func stepLabel(s tree.Step) string {
	if s.IsIndex {
		return "index " + s.String()
	}
	return fmt.Sprintf("key %q", s.Key)
}
