// Package testkit holds small test doubles shared by the refpath test suites:
// an in-memory keyed repository and a call-count spy.
package testkit

import "errors"

// ErrMissingKey is returned by Add when no key can be derived for a value.
var ErrMissingKey = errors.New("testkit: cannot determine the entity key; use AddWithKey or provide a key function")

// Repository is an in-memory store that keeps values in insertion order and
// indexes them by key. It stands in for a persistence layer in tests.
type Repository[K comparable, V any] struct {
	keyOf func(V) (K, bool)
	order []K
	items map[K]V
}

// NewRepository returns an empty repository. keyOf derives the key of a
// value for Add; it may be nil when every value is added with AddWithKey.
func NewRepository[K comparable, V any](keyOf func(V) (K, bool)) *Repository[K, V] {
	return &Repository[K, V]{keyOf: keyOf, items: map[K]V{}}
}

// Add stores v under the key derived by the repository's key function.
func (r *Repository[K, V]) Add(v V) error {
	if r.keyOf == nil {
		return ErrMissingKey
	}
	k, ok := r.keyOf(v)
	if !ok {
		return ErrMissingKey
	}
	r.AddWithKey(k, v)
	return nil
}

// AddWithKey stores v under k. Re-adding a key replaces the value in place.
func (r *Repository[K, V]) AddWithKey(k K, v V) {
	if _, exists := r.items[k]; !exists {
		r.order = append(r.order, k)
	}
	r.items[k] = v
}

// FindByID returns the value stored under k.
func (r *Repository[K, V]) FindByID(k K) (V, bool) {
	v, ok := r.items[k]
	return v, ok
}

// FindBy returns the first value, in insertion order, that satisfies pred.
func (r *Repository[K, V]) FindBy(pred func(V) bool) (V, bool) {
	for _, k := range r.order {
		if v := r.items[k]; pred(v) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// FindAll returns every value in insertion order.
func (r *Repository[K, V]) FindAll() []V {
	out := make([]V, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.items[k])
	}
	return out
}

// Len returns the number of stored values.
func (r *Repository[K, V]) Len() int {
	return len(r.order)
}

// Clear removes every value.
func (r *Repository[K, V]) Clear() {
	r.order = nil
	r.items = map[K]V{}
}
