package graph

import (
	"fmt"
	"sort"
)

// NormalizePlanes validates a plane selection against the format and returns
// a sorted copy without duplicates. A nil or empty selection means all
// planes.
func NormalizePlanes(format Format, planes []int) ([]int, error) {
	n := format.NumPlanes()
	if n == 0 {
		return nil, fmt.Errorf("normalize planes: %w", ErrVariableFormat)
	}
	if len(planes) == 0 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	seen := make(map[int]bool, len(planes))
	out := make([]int, 0, len(planes))
	for _, p := range planes {
		if p < 0 || p >= n {
			return nil, fmt.Errorf("normalize planes: plane %d of %d-plane format: %w", p, n, ErrPlaneIndex)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out, nil
}

// HasPlane reports whether the normalized selection contains plane p.
func HasPlane(planes []int, p int) bool {
	for _, q := range planes {
		if q == p {
			return true
		}
	}
	return false
}

// NormalizeSeq broadens a scalar-or-list parameter to exactly n entries by
// repeating the last value, following the usual per-plane parameter
// convention. The input must have between 1 and n values.
func NormalizeSeq[T any](vals []T, n int) ([]T, error) {
	if len(vals) == 0 {
		return nil, fmt.Errorf("normalize seq: need at least one value: %w", ErrBadArgument)
	}
	if len(vals) > n {
		return nil, fmt.Errorf("normalize seq: %d values for %d planes: %w", len(vals), n, ErrBadArgument)
	}
	out := make([]T, n)
	copy(out, vals)
	for i := len(vals); i < n; i++ {
		out[i] = vals[len(vals)-1]
	}
	return out, nil
}
