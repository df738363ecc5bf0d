package render

// NormalizeUniforms converts uniform values to the float32 forms Kage expects.
// Scalars become float32 and lists become []float32. Values of any other type
// are dropped.
func NormalizeUniforms(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if n, ok := toFloat32(v); ok {
			out[k] = n
			continue
		}
		if list, ok := toFloat32s(v); ok {
			out[k] = list
		}
	}
	return out
}

func toFloat32(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	case int32:
		return float32(n), true
	case int64:
		return float32(n), true
	case uint32:
		return float32(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toFloat32s(v any) ([]float32, bool) {
	switch list := v.(type) {
	case []float32:
		return list, true
	case []float64:
		out := make([]float32, len(list))
		for i, n := range list {
			out[i] = float32(n)
		}
		return out, true
	case []any:
		out := make([]float32, len(list))
		for i, item := range list {
			n, ok := toFloat32(item)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	}
	return nil, false
}
