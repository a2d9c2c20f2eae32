package layer

import "strings"

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			dst[key] = cloneValue(srcVal)
		}
	}
	return dst
}

// Clone creates a deep copy of a configuration map.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// GetByPath retrieves a value from a nested map using a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		val, exists := m[part]
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, data != nil
}

// SetByPath sets a value in a nested map using a dot-separated path.
// Creates intermediate maps as needed.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil {
		return
	}
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// DeleteByPath removes a value and reports whether it existed.
func DeleteByPath(data map[string]any, path string) bool {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}
	key := parts[len(parts)-1]
	if _, ok := current[key]; !ok {
		return false
	}
	delete(current, key)
	return true
}

// FlattenMap flattens a nested map into a single-level map with
// dot-separated keys.
func FlattenMap(data map[string]any) map[string]any {
	result := make(map[string]any)
	flatten(data, "", result)
	return result
}

func flatten(data map[string]any, prefix string, result map[string]any) {
	for key, val := range data {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flatten(nested, full, result)
		} else {
			result[full] = val
		}
	}
}

// DiffMaps returns the flattened paths whose values differ between old and
// new, including added and removed paths.
func DiffMaps(old, new map[string]any) []string {
	a, b := FlattenMap(old), FlattenMap(new)
	var changed []string
	for path, nv := range b {
		if ov, ok := a[path]; !ok || !valuesEqual(ov, nv) {
			changed = append(changed, path)
		}
	}
	for path := range a {
		if _, ok := b[path]; !ok {
			changed = append(changed, path)
		}
	}
	return changed
}

func valuesEqual(a, b any) bool {
	as, aok := a.([]any)
	bs, bok := b.([]any)
	if aok || bok {
		if !aok || !bok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valuesEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
