package domain

// Props is the open property map of a component. Values are the JSON value
// kinds: strings, numbers, booleans, nil, and nested []any / map[string]any
// for list-valued props such as gallery images.
type Props map[string]any

// Clone deep-copies p. Nested maps and slices are copied so edits to the
// clone never reach the original.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge writes every key of patch into p, keeping keys patch does not name.
// Values are deep-copied so the caller can reuse patch afterwards.
func (p Props) Merge(patch Props) {
	for k, v := range patch {
		p[k] = cloneValue(v)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Props:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	case []map[string]any:
		s := make([]map[string]any, len(t))
		for i, m := range t {
			s[i] = cloneValue(m).(map[string]any)
		}
		return s
	case []string:
		return append([]string(nil), t...)
	case []int:
		return append([]int(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	default:
		return v
	}
}
