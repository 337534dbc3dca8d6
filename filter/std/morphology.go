package std

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/graph"
)

// MorphOption mutates Maximum/Minimum parameters.
type MorphOption func(*morphConfig) error

type morphConfig struct {
	threshold float64
	planes    []int
}

func defaultMorphConfig() morphConfig {
	return morphConfig{threshold: math.Inf(1)}
}

// WithMorphThreshold limits how far a pixel may change in one pass, in the
// clip format's own scale. The default is unlimited.
func WithMorphThreshold(threshold float64) MorphOption {
	return func(cfg *morphConfig) error {
		if threshold < 0 || math.IsNaN(threshold) {
			return fmt.Errorf("std: morphology threshold must be >= 0: %g", threshold)
		}
		cfg.threshold = threshold
		return nil
	}
}

// WithMorphPlanes selects the planes to process.
func WithMorphPlanes(planes ...int) MorphOption {
	return func(cfg *morphConfig) error {
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// Maximum replaces each pixel with the largest value in its 3x3
// neighbourhood (morphological dilation).
func Maximum(clip graph.Clip, opts ...MorphOption) (graph.Clip, error) {
	return morphOp(OpMaximum, "std: maximum", clip, opts)
}

// Minimum replaces each pixel with the smallest value in its 3x3
// neighbourhood (morphological erosion).
func Minimum(clip graph.Clip, opts ...MorphOption) (graph.Clip, error) {
	return morphOp(OpMinimum, "std: minimum", clip, opts)
}

func morphOp(op, name string, clip graph.Clip, opts []MorphOption) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, name); err != nil {
		return graph.Clip{}, err
	}

	cfg := defaultMorphConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}
	planes, err := graph.NormalizePlanes(clip.Format(), cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	return clip.Invoke(op, graph.Args{
		"threshold": cfg.threshold,
		"planes":    planes,
	})
}
