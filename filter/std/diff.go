package std

import (
	"fmt"

	"github.com/cwbudde/algo-deband/graph"
)

// DiffOption mutates difference compositing parameters.
type DiffOption func(*diffConfig) error

type diffConfig struct {
	planes []int
}

// WithDiffPlanes selects the planes to process.
func WithDiffPlanes(planes ...int) DiffOption {
	return func(cfg *diffConfig) error {
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// MakeDiff computes a - b around the format's neutral value, clamped to the
// representable range. MergeDiff of the result onto b restores a wherever
// the difference survived clamping.
func MakeDiff(a, b graph.Clip, opts ...DiffOption) (graph.Clip, error) {
	return diffOp(OpMakeDiff, "std: make diff", a, b, opts)
}

// MergeDiff adds a difference clip b (as produced by MakeDiff) onto a,
// clamped to the representable range.
func MergeDiff(a, b graph.Clip, opts ...DiffOption) (graph.Clip, error) {
	return diffOp(OpMergeDiff, "std: merge diff", a, b, opts)
}

func diffOp(op, name string, a, b graph.Clip, opts []DiffOption) (graph.Clip, error) {
	if err := graph.CheckCompatible(a, b, name); err != nil {
		return graph.Clip{}, err
	}

	var cfg diffConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}
	planes, err := graph.NormalizePlanes(a.Format(), cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	return a.Invoke(op, graph.Args{"planes": planes}, b)
}
