package std

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/graph"
)

// BinarizeOption mutates binarize parameters.
type BinarizeOption func(*binarizeConfig) error

type binarizeConfig struct {
	thresholds []float64
	planes     []int
}

// WithBinarizeThreshold sets per-plane thresholds in the clip format's own
// scale; a single value is broadened to all planes. The default threshold is
// the middle of each plane's range.
func WithBinarizeThreshold(thresholds ...float64) BinarizeOption {
	return func(cfg *binarizeConfig) error {
		if len(thresholds) == 0 {
			return fmt.Errorf("std: binarize threshold needs at least one value: %w", graph.ErrBadArgument)
		}
		for _, t := range thresholds {
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return fmt.Errorf("std: binarize threshold must be finite: %g", t)
			}
		}
		cfg.thresholds = append([]float64(nil), thresholds...)
		return nil
	}
}

// WithBinarizePlanes selects the planes to process.
func WithBinarizePlanes(planes ...int) BinarizeOption {
	return func(cfg *binarizeConfig) error {
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// Binarize maps every pixel below the threshold to the plane's minimum and
// every pixel at or above it to the plane's peak.
func Binarize(clip graph.Clip, opts ...BinarizeOption) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "std: binarize"); err != nil {
		return graph.Clip{}, err
	}

	var cfg binarizeConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}

	format := clip.Format()
	nPlanes := format.NumPlanes()
	thresholds := cfg.thresholds
	if thresholds == nil {
		thresholds = make([]float64, nPlanes)
		for p := range thresholds {
			lo, hi := format.ValueRange(p)
			thresholds[p] = (lo + hi) / 2
		}
	}
	thresholds, err := graph.NormalizeSeq(thresholds, nPlanes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("std: binarize: %w", err)
	}

	planes, err := graph.NormalizePlanes(format, cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("std: binarize: %w", err)
	}

	return clip.Invoke(OpBinarize, graph.Args{
		"threshold": thresholds,
		"planes":    planes,
	})
}
