// Package path converts between flat dotted keys and nested values.
//
// Controls are registered under flat keys such as "address.city" or
// "items.0.sku". Build turns a flat key/value snapshot back into nested maps
// (and slices, for runs of numeric segments starting at zero); Flatten does
// the reverse.
package path

import (
	"sort"
	"strconv"
	"strings"
)

// Separator joins key segments.
const Separator = "."

// Split returns the segments of key. An empty key has no segments.
func Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, Separator)
}

// Join joins segments into a key, skipping empty segments.
func Join(segments ...string) string {
	parts := segments[:0:0]
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, Separator)
}

// Build nests a flat snapshot. Keys that are prefixes of other keys are
// overwritten by the nested object, matching last-write semantics on the
// sorted key order.
func Build(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, k := range keys {
		segs := Split(k)
		if len(segs) == 0 {
			continue
		}
		node := root
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		last := segs[len(segs)-1]
		if _, isMap := node[last].(map[string]any); isMap {
			continue
		}
		node[last] = flat[k]
	}

	return toSlices(root).(map[string]any)
}

// toSlices converts maps whose keys are exactly 0..n-1 into slices.
func toSlices(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range m {
		m[k] = toSlices(child)
	}
	if arr, ok := asSlice(m); ok {
		return arr
	}
	return m
}

func asSlice(m map[string]any) ([]any, bool) {
	if len(m) == 0 {
		return nil, false
	}
	arr := make([]any, len(m))
	for k, v := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(m) || strconv.Itoa(i) != k {
			return nil, false
		}
		arr[i] = v
	}
	return arr, true
}

// Flatten is the inverse of Build: nested maps and slices become dotted keys.
// Empty maps and slices are kept as leaf values.
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", nested)
	return out
}

func flattenInto(out map[string]any, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 && prefix != "" {
			out[prefix] = t
			return
		}
		for k, child := range t {
			flattenInto(out, Join(prefix, k), child)
		}
	case []any:
		if len(t) == 0 {
			out[prefix] = t
			return
		}
		for i, child := range t {
			flattenInto(out, Join(prefix, strconv.Itoa(i)), child)
		}
	default:
		out[prefix] = v
	}
}

// Get returns the value at key inside a nested structure built by Build.
func Get(nested map[string]any, key string) (any, bool) {
	var cur any = nested
	for _, seg := range Split(key) {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
