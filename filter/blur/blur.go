// Package blur provides the smoothing prefilters of the recipe pipelines:
// a separable binomial blur and the RemoveGrain family of 3x3 cleaners.
package blur

import (
	"fmt"

	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

// maxBlurRadius keeps the binomial kernel within the 25-tap convolution
// limit (2*radius+1 taps).
const maxBlurRadius = 12

// BlurOption mutates binomial blur parameters.
type BlurOption func(*blurConfig) error

type blurConfig struct {
	planes []int
}

// WithBlurPlanes selects the planes to process.
func WithBlurPlanes(planes ...int) BlurOption {
	return func(cfg *blurConfig) error {
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// Blur applies a separable binomial blur of the given radius: the 1-D kernel
// is the Pascal triangle row of width 2*radius+1 (radius 1 gives [1 2 1]),
// applied horizontally and then vertically. Radius must be in [1, 12].
func Blur(clip graph.Clip, radius int, opts ...BlurOption) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "blur: blur"); err != nil {
		return graph.Clip{}, err
	}
	if radius < 1 || radius > maxBlurRadius {
		return graph.Clip{}, fmt.Errorf("blur: radius must be in [1, %d]: %d: %w",
			maxBlurRadius, radius, graph.ErrBadArgument)
	}

	var cfg blurConfig
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
		return graph.Clip{}, fmt.Errorf("blur: %w", err)
	}

	kernel := binomialKernel(radius)
	h, err := std.Convolution(clip, kernel,
		std.WithConvolutionMode(std.ModeHorizontal),
		std.WithConvolutionPlanes(planes...))
	if err != nil {
		return graph.Clip{}, fmt.Errorf("blur: %w", err)
	}
	v, err := std.Convolution(h, kernel,
		std.WithConvolutionMode(std.ModeVertical),
		std.WithConvolutionPlanes(planes...))
	if err != nil {
		return graph.Clip{}, fmt.Errorf("blur: %w", err)
	}
	return v, nil
}

// binomialKernel returns Pascal triangle row 2*radius.
func binomialKernel(radius int) []float64 {
	n := 2 * radius
	row := make([]float64, n+1)
	row[0] = 1
	for i := 1; i <= n; i++ {
		row[i] = row[i-1] * float64(n-i+1) / float64(i)
	}
	return row
}
