// Package morph grows and shrinks image regions by iterating 3x3 maximum
// and minimum filters. The debanding pipelines use it to build detail masks
// that protect edges and texture from the smoothing passes.
package morph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

const maxRadius = 128

// Option mutates morphology parameters.
type Option func(*config) error

type config struct {
	planes    []int
	threshold float64
}

func defaultMorphConfig() config {
	return config{threshold: math.Inf(1)}
}

// WithPlanes restricts processing to the given planes. Unprocessed planes
// carry the input plane through unchanged. The default processes all planes.
func WithPlanes(planes ...int) Option {
	return func(cfg *config) error {
		if len(planes) == 0 {
			return fmt.Errorf("morph: planes need at least one value: %w", graph.ErrBadArgument)
		}
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// WithThreshold caps how far a single iteration may move a pixel from its
// original value. The default is unlimited.
func WithThreshold(threshold float64) Option {
	return func(cfg *config) error {
		if threshold < 0 || math.IsNaN(threshold) {
			return fmt.Errorf("morph: threshold must be >= 0: %g", threshold)
		}
		cfg.threshold = threshold
		return nil
	}
}

// Expand dilates the clip radius times with a 3x3 maximum.
func Expand(c graph.Clip, radius int, opts ...Option) (graph.Clip, error) {
	return iterate(c, radius, opts, std.Maximum, "morph: expand")
}

// Inpand erodes the clip radius times with a 3x3 minimum.
func Inpand(c graph.Clip, radius int, opts ...Option) (graph.Clip, error) {
	return iterate(c, radius, opts, std.Minimum, "morph: inpand")
}

func iterate(
	c graph.Clip, radius int, opts []Option,
	op func(graph.Clip, ...std.MorphOption) (graph.Clip, error),
	name string,
) (graph.Clip, error) {
	cfg, err := buildConfig(c, radius, opts, name)
	if err != nil {
		return graph.Clip{}, err
	}

	stdOpts := cfg.stdOptions()
	out := c
	for i := 0; i < radius; i++ {
		out, err = op(out, stdOpts...)
		if err != nil {
			return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return out, nil
}

// RangeMask computes the per-pixel local range over a (2*radius+1)-sized
// square neighborhood as the difference between the dilated and the eroded
// clip. Flat areas map near zero, edges and texture map high.
func RangeMask(c graph.Clip, radius int, opts ...Option) (graph.Clip, error) {
	cfg, err := buildConfig(c, radius, opts, "morph: range mask")
	if err != nil {
		return graph.Clip{}, err
	}

	stdOpts := cfg.stdOptions()
	hi, lo := c, c
	for i := 0; i < radius; i++ {
		if hi, err = std.Maximum(hi, stdOpts...); err != nil {
			return graph.Clip{}, fmt.Errorf("morph: range mask: %w", err)
		}
		if lo, err = std.Minimum(lo, stdOpts...); err != nil {
			return graph.Clip{}, fmt.Errorf("morph: range mask: %w", err)
		}
	}

	planes, err := graph.NormalizePlanes(c.Format(), cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("morph: range mask: %w", err)
	}
	exprs := make([]string, c.Format().NumPlanes())
	for p := range exprs {
		if graph.HasPlane(planes, p) {
			exprs[p] = "x y -"
		}
	}
	out, err := std.Expr([]graph.Clip{hi, lo}, exprs...)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("morph: range mask: %w", err)
	}
	return out, nil
}

// buildConfig validates everything upfront so the node-building loops
// cannot fail halfway and leave a partial cascade behind.
func buildConfig(c graph.Clip, radius int, opts []Option, name string) (config, error) {
	if err := graph.CheckFixed(c, name); err != nil {
		return config{}, err
	}
	if radius < 1 || radius > maxRadius {
		return config{}, fmt.Errorf("%s: radius must be in [1, %d]: %d", name, maxRadius, radius)
	}

	cfg := defaultMorphConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	if _, err := graph.NormalizePlanes(c.Format(), cfg.planes); err != nil {
		return config{}, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

func (cfg config) stdOptions() []std.MorphOption {
	var stdOpts []std.MorphOption
	if cfg.planes != nil {
		stdOpts = append(stdOpts, std.WithMorphPlanes(cfg.planes...))
	}
	if !math.IsInf(cfg.threshold, 1) {
		stdOpts = append(stdOpts, std.WithMorphThreshold(cfg.threshold))
	}
	return stdOpts
}
