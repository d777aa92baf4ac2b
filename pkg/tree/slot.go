package tree

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
)

var (
	// ErrNoSlot indicates a key or index that does not exist in the container.
	ErrNoSlot = errors.New("tree: no such slot")
	// ErrNotContainer indicates a value that cannot hold children.
	ErrNotContainer = errors.New("tree: not a container")
)

// Step is one concrete element of a resolved path: a mapping key or a
// sequence index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeyStep returns a mapping step.
func KeyStep(key string) Step {
	return Step{Key: key}
}

// IndexStep returns a sequence step.
func IndexStep(i int) Step {
	return Step{Index: i, IsIndex: true}
}

// String renders "[i]" for index steps and the bare key otherwise.
func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// key returns the mapping key a step addresses. Index steps address the
// decimal form of the index.
func (s Step) key() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// index returns the sequence index a step addresses. Key steps address an
// index only when the key is a canonical non-negative decimal.
func (s Step) index() (int, bool) {
	if s.IsIndex {
		return s.Index, s.Index >= 0
	}
	if s.Key == "" || (len(s.Key) > 1 && s.Key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(s.Key); i++ {
		if s.Key[i] < '0' || s.Key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s.Key)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Entry is one child of a container.
type Entry struct {
	Step  Step
	Value any
}

// IsContainer reports whether v is one of the container shapes this package
// understands.
func IsContainer(v any) bool {
	switch v.(type) {
	case *Object, map[string]any, []any:
		return true
	default:
		return false
	}
}

// Entries returns a snapshot of the children of container in natural order.
// Non-containers have no children.
func Entries(container any) []Entry {
	switch c := container.(type) {
	case *Object:
		return c.Entries()
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Entry, 0, len(keys))
		for _, k := range keys {
			out = append(out, Entry{Step: KeyStep(k), Value: c[k]})
		}
		return out
	case []any:
		out := make([]Entry, 0, len(c))
		for i, v := range c {
			out = append(out, Entry{Step: IndexStep(i), Value: v})
		}
		return out
	default:
		return nil
	}
}

// Lookup returns the child of container addressed by step, along with the
// step normalised to the container kind (a key step into a sequence comes
// back as an index step).
func Lookup(container any, step Step) (any, Step, bool) {
	switch c := container.(type) {
	case *Object:
		v, ok := c.Get(step.key())
		return v, KeyStep(step.key()), ok
	case map[string]any:
		v, ok := c[step.key()]
		return v, KeyStep(step.key()), ok
	case []any:
		i, ok := step.index()
		if !ok || i >= len(c) {
			return nil, step, false
		}
		return c[i], IndexStep(i), true
	default:
		return nil, step, false
	}
}

// SetChild writes value into the slot addressed by step and returns the
// container to store back in its parent. Mapping keys are created when
// missing; sequence indices must already exist.
func SetChild(container any, step Step, value any) (any, error) {
	switch c := container.(type) {
	case *Object:
		c.Set(step.key(), value)
		return c, nil
	case map[string]any:
		c[step.key()] = value
		return c, nil
	case []any:
		i, ok := step.index()
		if !ok || i >= len(c) {
			return c, fmt.Errorf("%w: index %s of %d elements", ErrNoSlot, step, len(c))
		}
		c[i] = value
		return c, nil
	default:
		return container, fmt.Errorf("%w: %T", ErrNotContainer, container)
	}
}

// DeleteChild removes the slot addressed by step and returns the container to
// store back in its parent. Removing from a sequence shifts later elements
// down by one, so the returned slice is shorter than the input.
func DeleteChild(container any, step Step) (any, error) {
	switch c := container.(type) {
	case *Object:
		if !c.Delete(step.key()) {
			return c, fmt.Errorf("%w: key %q", ErrNoSlot, step.key())
		}
		return c, nil
	case map[string]any:
		if _, ok := c[step.key()]; !ok {
			return c, fmt.Errorf("%w: key %q", ErrNoSlot, step.key())
		}
		delete(c, step.key())
		return c, nil
	case []any:
		i, ok := step.index()
		if !ok || i >= len(c) {
			return c, fmt.Errorf("%w: index %s of %d elements", ErrNoSlot, step, len(c))
		}
		return slices.Delete(c, i, i+1), nil
	default:
		return container, fmt.Errorf("%w: %T", ErrNotContainer, container)
	}
}

// Describe returns a short human description of v for error messages.
func Describe(v any) string {
	switch c := v.(type) {
	case nil:
		return "null"
	case *Object:
		return fmt.Sprintf("object with %d keys", c.Len())
	case map[string]any:
		return fmt.Sprintf("object with %d keys", len(c))
	case []any:
		return fmt.Sprintf("sequence of %d elements", len(c))
	default:
		return fmt.Sprintf("%T", v)
	}
}
