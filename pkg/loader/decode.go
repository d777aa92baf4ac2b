package loader

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/refpath/pkg/tree"
)

const maxAliasDepth = 64

// fromYAMLNode converts a decoded YAML node into tree values. Mappings become
// *tree.Object in document order; aliases are expanded.
func fromYAMLNode(n *yaml.Node) (any, error) {
	return convertYAML(n, 0)
}

func convertYAML(n *yaml.Node, depth int) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convertYAML(n.Content[0], depth)
	case yaml.MappingNode:
		obj := tree.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if isMergeKey(keyNode) {
				if err := mergeInto(obj, valNode, depth); err != nil {
					return nil, err
				}
				continue
			}
			val, err := convertYAML(valNode, depth)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := convertYAML(c, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		if depth >= maxAliasDepth {
			return nil, fmt.Errorf("line %d: alias nesting too deep", n.Line)
		}
		return convertYAML(n.Alias, depth+1)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" && (n.Tag == "" || n.Tag == "!!merge")
}

// mergeInto applies a YAML merge key (<<) without overriding explicit keys.
func mergeInto(obj *tree.Object, n *yaml.Node, depth int) error {
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		v, err := convertYAML(src, depth)
		if err != nil {
			return err
		}
		merged, ok := v.(*tree.Object)
		if !ok {
			return fmt.Errorf("line %d: merge value is not a mapping", n.Line)
		}
		for _, e := range merged.Entries() {
			if !obj.Has(e.Step.Key) {
				obj.Set(e.Step.Key, e.Value)
			}
		}
	}
	return nil
}

// decodeJSONValue reads one JSON value from dec keeping object key order.
func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := tree.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			out := []any{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s: %w", t, err)
		}
		return f, nil
	default:
		// string, bool or nil
		return t, nil
	}
}

// Normalize converts native Go maps and slices into tree values. String-keyed
// maps become *tree.Object with sorted keys; other maps have their keys
// formatted with %v. Values already in tree form are returned as they are.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *tree.Object:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := tree.NewObject()
		for _, k := range keys {
			obj.Set(k, Normalize(t[k]))
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case string, bool, int, int64, float64:
		return t
	}

	rv := reflect.ValueOf(v)
	//exhaustive:ignore // only containers need conversion
	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprintf("%v", iter.Key().Interface())
			keys = append(keys, k)
			values[k] = Normalize(iter.Value().Interface())
		}
		sort.Strings(keys)
		obj := tree.NewObject()
		for _, k := range keys {
			obj.Set(k, values[k])
		}
		return obj
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	default:
		return v
	}
}
