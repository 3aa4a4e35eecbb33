package domain

// With returns a new map equal to m except that k maps to v.
// m itself is left untouched.
func With[K comparable, V any](m map[K]V, k K, v V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for mk, mv := range m {
		out[mk] = mv
	}
	out[k] = v
	return out
}

// Merge returns a new map holding every entry of base, with entries from
// overrides replacing same-key entries. Both inputs are left untouched.
func Merge[K comparable, V any](base, overrides map[K]V) map[K]V {
	out := make(map[K]V, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Without returns a new map equal to m minus the given keys.
func Without[K comparable, V any](m map[K]V, keys ...K) map[K]V {
	drop := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}

	out := make(map[K]V, len(m))
	for k, v := range m {
		if _, skip := drop[k]; skip {
			continue
		}
		out[k] = v
	}
	return out
}

// CloneValue deep-copies a JSON-like value (map[string]any, []any, scalars).
// The engine clones documents before touching them so the caller's value is
// provably untouched after an apply.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, cv := range t {
			out[k] = CloneValue(cv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, cv := range t {
			out[i] = CloneValue(cv)
		}
		return out
	default:
		// Scalars (string, float64, bool, nil, ...) are immutable by value.
		return t
	}
}
