// Package tree holds the container types the path engine walks and the
// slot-level accessors used to read and rewrite them.
//
// Three container shapes are understood: *Object (string keys, insertion order
// kept), map[string]any (keys visited in ascending order) and []any.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Object is a string-keyed mapping that remembers insertion order.
// The zero value is ready to use.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Of builds an Object from alternating key/value arguments.
// It panics when a key is not a string or a value is missing.
func Of(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("tree.Of: odd number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("tree.Of: key at position %d is %T, not string", i, pairs[i]))
		}
		o.Set(key, pairs[i+1])
	}
	return o
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (o *Object) Set(key string, value any) *Object {
	if o.values == nil {
		o.values = map[string]any{}
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o == nil {
		return false
	}
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	if i := slices.Index(o.keys, key); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
	if len(o.keys) == 0 {
		o.keys = nil
	}
	return true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Entries returns key/value pairs in insertion order.
func (o *Object) Entries() []Entry {
	if o == nil {
		return nil
	}
	out := make([]Entry, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, Entry{Step: KeyStep(k), Value: o.values[k]})
	}
	return out
}

// MarshalJSON encodes the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToMap converts the object and everything below it into native
// map[string]any / []any values. The receiver is not modified.
func (o *Object) ToMap() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = ToNative(o.values[k])
	}
	return out
}

// ToNative returns a deep copy of v where every *Object is replaced by a
// map[string]any. Scalars are returned unchanged.
func ToNative(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.ToMap()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = ToNative(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = ToNative(val)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of v. Objects stay *Object with the same key
// order; scalars are returned unchanged.
func Clone(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return t
		}
		out := &Object{keys: slices.Clone(t.keys), values: make(map[string]any, len(t.values))}
		for k, val := range t.values {
			out.values[k] = Clone(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}
