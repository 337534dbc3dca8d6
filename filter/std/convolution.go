package std

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/graph"
)

// Convolution modes. Square applies the matrix as a 3x3 or 5x5 kernel;
// Horizontal and Vertical apply it as a 1-D kernel along one axis.
const (
	ModeSquare     = "s"
	ModeHorizontal = "h"
	ModeVertical   = "v"
)

// ConvolutionOption mutates convolution construction parameters.
type ConvolutionOption func(*convolutionConfig) error

type convolutionConfig struct {
	mode    string
	divisor float64
	hasDiv  bool
	bias    float64
	planes  []int
}

func defaultConvolutionConfig() convolutionConfig {
	return convolutionConfig{mode: ModeSquare}
}

// WithConvolutionMode selects square (default), horizontal or vertical
// application of the matrix.
func WithConvolutionMode(mode string) ConvolutionOption {
	return func(cfg *convolutionConfig) error {
		switch mode {
		case ModeSquare, ModeHorizontal, ModeVertical:
			cfg.mode = mode
			return nil
		default:
			return fmt.Errorf("std: convolution mode must be %q, %q or %q: %q",
				ModeSquare, ModeHorizontal, ModeVertical, mode)
		}
	}
}

// WithConvolutionDivisor overrides the normalization divisor. The default is
// the sum of the matrix, or 1 when the matrix sums to zero.
func WithConvolutionDivisor(divisor float64) ConvolutionOption {
	return func(cfg *convolutionConfig) error {
		if divisor == 0 || math.IsNaN(divisor) || math.IsInf(divisor, 0) {
			return fmt.Errorf("std: convolution divisor must be nonzero and finite: %g", divisor)
		}
		cfg.divisor = divisor
		cfg.hasDiv = true
		return nil
	}
}

// WithConvolutionBias adds a constant to every output pixel.
func WithConvolutionBias(bias float64) ConvolutionOption {
	return func(cfg *convolutionConfig) error {
		if math.IsNaN(bias) || math.IsInf(bias, 0) {
			return fmt.Errorf("std: convolution bias must be finite: %g", bias)
		}
		cfg.bias = bias
		return nil
	}
}

// WithConvolutionPlanes selects the planes to process.
func WithConvolutionPlanes(planes ...int) ConvolutionOption {
	return func(cfg *convolutionConfig) error {
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// Convolution applies a spatial convolution. Square mode accepts 9 (3x3) or
// 25 (5x5) coefficients in row-major order; horizontal and vertical modes
// accept an odd count between 3 and 25. Edges are handled by mirroring.
func Convolution(clip graph.Clip, matrix []float64, opts ...ConvolutionOption) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "std: convolution"); err != nil {
		return graph.Clip{}, err
	}

	cfg := defaultConvolutionConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}

	switch cfg.mode {
	case ModeSquare:
		if len(matrix) != 9 && len(matrix) != 25 {
			return graph.Clip{}, fmt.Errorf("std: convolution: square matrix must have 9 or 25 entries: %d: %w",
				len(matrix), graph.ErrBadArgument)
		}
	default:
		if len(matrix) < 3 || len(matrix) > 25 || len(matrix)%2 == 0 {
			return graph.Clip{}, fmt.Errorf("std: convolution: 1-D matrix must have an odd count in [3, 25]: %d: %w",
				len(matrix), graph.ErrBadArgument)
		}
	}

	sum := 0.0
	for _, v := range matrix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return graph.Clip{}, fmt.Errorf("std: convolution: matrix entries must be finite: %g: %w",
				v, graph.ErrBadArgument)
		}
		sum += v
	}
	divisor := cfg.divisor
	if !cfg.hasDiv {
		divisor = sum
		if divisor == 0 {
			divisor = 1
		}
	}

	planes, err := graph.NormalizePlanes(clip.Format(), cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("std: convolution: %w", err)
	}

	return clip.Invoke(OpConvolution, graph.Args{
		"matrix":  append([]float64(nil), matrix...),
		"mode":    cfg.mode,
		"divisor": divisor,
		"bias":    cfg.bias,
		"planes":  planes,
	})
}
