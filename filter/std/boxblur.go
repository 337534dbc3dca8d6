package std

import (
	"fmt"

	"github.com/cwbudde/algo-deband/graph"
)

const (
	maxBoxBlurRadius = 1024
	maxBoxBlurPasses = 16
)

// BoxBlurOption mutates box blur construction parameters.
type BoxBlurOption func(*boxBlurConfig) error

type boxBlurConfig struct {
	hRadius int
	hPasses int
	vRadius int
	vPasses int
	planes  []int
}

func defaultBoxBlurConfig() boxBlurConfig {
	return boxBlurConfig{hRadius: 1, hPasses: 1, vRadius: 1, vPasses: 1}
}

// WithBoxBlurRadius sets both the horizontal and vertical radius.
func WithBoxBlurRadius(radius int) BoxBlurOption {
	return func(cfg *boxBlurConfig) error {
		if radius < 0 || radius > maxBoxBlurRadius {
			return fmt.Errorf("std: box blur radius must be in [0, %d]: %d", maxBoxBlurRadius, radius)
		}
		cfg.hRadius = radius
		cfg.vRadius = radius
		return nil
	}
}

// WithBoxBlurHorizontal sets the horizontal radius and pass count. A radius
// of 0 disables horizontal blurring.
func WithBoxBlurHorizontal(radius, passes int) BoxBlurOption {
	return func(cfg *boxBlurConfig) error {
		if radius < 0 || radius > maxBoxBlurRadius {
			return fmt.Errorf("std: box blur radius must be in [0, %d]: %d", maxBoxBlurRadius, radius)
		}
		if passes < 1 || passes > maxBoxBlurPasses {
			return fmt.Errorf("std: box blur passes must be in [1, %d]: %d", maxBoxBlurPasses, passes)
		}
		cfg.hRadius = radius
		cfg.hPasses = passes
		return nil
	}
}

// WithBoxBlurVertical sets the vertical radius and pass count. A radius of 0
// disables vertical blurring.
func WithBoxBlurVertical(radius, passes int) BoxBlurOption {
	return func(cfg *boxBlurConfig) error {
		if radius < 0 || radius > maxBoxBlurRadius {
			return fmt.Errorf("std: box blur radius must be in [0, %d]: %d", maxBoxBlurRadius, radius)
		}
		if passes < 1 || passes > maxBoxBlurPasses {
			return fmt.Errorf("std: box blur passes must be in [1, %d]: %d", maxBoxBlurPasses, passes)
		}
		cfg.vRadius = radius
		cfg.vPasses = passes
		return nil
	}
}

// WithBoxBlurPlanes selects the planes to process.
func WithBoxBlurPlanes(planes ...int) BoxBlurOption {
	return func(cfg *boxBlurConfig) error {
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// BoxBlur applies a separable moving-average blur with independent
// horizontal and vertical radii and pass counts. The default is one pass at
// radius 1 in both directions. At least one direction must have a nonzero
// radius. Edges are handled by mirroring.
func BoxBlur(clip graph.Clip, opts ...BoxBlurOption) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "std: box blur"); err != nil {
		return graph.Clip{}, err
	}

	cfg := defaultBoxBlurConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}
	if cfg.hRadius == 0 && cfg.vRadius == 0 {
		return graph.Clip{}, fmt.Errorf("std: box blur: both radii are zero: %w", graph.ErrBadArgument)
	}

	planes, err := graph.NormalizePlanes(clip.Format(), cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("std: box blur: %w", err)
	}

	return clip.Invoke(OpBoxBlur, graph.Args{
		"hradius": cfg.hRadius,
		"hpasses": cfg.hPasses,
		"vradius": cfg.vRadius,
		"vpasses": cfg.vPasses,
		"planes":  planes,
	})
}
