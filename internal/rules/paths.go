package rules

import "strings"

// copyMap deep-copies nested maps and slices so transforms never reach the
// caller's values.
func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}

func lookup(m map[string]any, path string) (any, bool) {
	segs := strings.Split(path, ".")
	var cur any = m
	for _, seg := range segs {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// assign sets the value at path, creating intermediate objects. It does
// nothing when an intermediate value is not an object.
func assign(m map[string]any, path string, v any) {
	segs := strings.Split(path, ".")
	obj := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := obj[seg]
		if !ok || next == nil {
			child := map[string]any{}
			obj[seg] = child
			obj = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return
		}
		obj = child
	}
	obj[segs[len(segs)-1]] = v
}

// strip removes keys not named in known. A leaf in known keeps its whole value.
func strip(m map[string]any, known pathTree) {
	for k, v := range m {
		sub, ok := known[k]
		if !ok {
			delete(m, k)
			continue
		}
		if child, isMap := v.(map[string]any); isMap && len(sub) > 0 {
			strip(child, sub)
		}
	}
}
