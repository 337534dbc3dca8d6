package graph

import "math"

// Args holds the parameters of a graph node. Values are restricted to
// numbers, booleans, strings and slices thereof; constructors in the filter
// packages populate Args, executors read them back through the typed
// getters, which return the given default when a key is missing or holds an
// unusable value.
type Args map[string]any

// Float extracts a numeric argument, returning def if missing or not finite.
func (a Args) Float(key string, def float64) float64 {
	if a == nil {
		return def
	}
	switch v := a[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// Int extracts an integer argument, returning def if missing. Float values
// are accepted when they are exactly integral.
func (a Args) Int(key string, def int) int {
	if a == nil {
		return def
	}
	switch v := a[key].(type) {
	case int:
		return v
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v)
		}
		return def
	default:
		return def
	}
}

// Bool extracts a boolean argument, returning def if missing. Numeric values
// follow the usual nonzero-is-true convention.
func (a Args) Bool(key string, def bool) bool {
	if a == nil {
		return def
	}
	switch v := a[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return def
	}
}

// String extracts a string argument, returning def if missing.
func (a Args) String(key, def string) string {
	if a == nil {
		return def
	}
	if v, ok := a[key].(string); ok {
		return v
	}
	return def
}

// Floats extracts a numeric slice argument. Integer slices are widened.
// Missing keys return nil.
func (a Args) Floats(key string) []float64 {
	if a == nil {
		return nil
	}
	switch v := a[key].(type) {
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return out
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out
	default:
		return nil
	}
}

// Ints extracts an integer slice argument. Missing keys return nil.
func (a Args) Ints(key string) []int {
	if a == nil {
		return nil
	}
	switch v := a[key].(type) {
	case []int:
		out := make([]int, len(v))
		copy(out, v)
		return out
	case []float64:
		out := make([]int, len(v))
		for i, f := range v {
			out[i] = int(f)
		}
		return out
	default:
		return nil
	}
}

// Strings extracts a string slice argument. Missing keys return nil.
func (a Args) Strings(key string) []string {
	if a == nil {
		return nil
	}
	if v, ok := a[key].([]string); ok {
		out := make([]string, len(v))
		copy(out, v)
		return out
	}
	return nil
}

// Has reports whether the key is present.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// clone deep-copies the argument map so nodes stay immutable after
// construction even if the caller mutates the map it passed in.
func (a Args) clone() Args {
	if a == nil {
		return nil
	}
	out := make(Args, len(a))
	for k, v := range a {
		switch s := v.(type) {
		case []float64:
			c := make([]float64, len(s))
			copy(c, s)
			out[k] = c
		case []int:
			c := make([]int, len(s))
			copy(c, s)
			out[k] = c
		case []string:
			c := make([]string, len(s))
			copy(c, s)
			out[k] = c
		default:
			out[k] = v
		}
	}
	return out
}
