package resize

import (
	"fmt"

	"github.com/cwbudde/algo-deband/dither"
	"github.com/cwbudde/algo-deband/graph"
)

// OpPrefix is the namespace of resize node ops; the full op name is
// OpPrefix plus the kernel name, e.g. "resize.Spline64".
const OpPrefix = "resize."

// Option mutates scale parameters.
type Option func(*scaleConfig) error

type scaleConfig struct {
	format    graph.Format
	hasFormat bool
	bits      int
	dither    dither.Mode
	hasDither bool
	colRange  graph.ColorRange
	hasRange  bool
}

// WithFormat converts the output to the given format while scaling. The
// format may change bit depth and sample type only; color family and
// subsampling must match the input.
func WithFormat(format graph.Format) Option {
	return func(cfg *scaleConfig) error {
		if !format.IsValid() {
			return fmt.Errorf("resize: invalid target format %s", format)
		}
		cfg.format = format
		cfg.hasFormat = true
		return nil
	}
}

// WithTargetBits converts the output to the given integer bit depth,
// keeping the input's family and subsampling.
func WithTargetBits(bits int) Option {
	return func(cfg *scaleConfig) error {
		if bits < 8 || bits > 32 {
			return fmt.Errorf("resize: target bits must be in [8, 32]: %d", bits)
		}
		cfg.bits = bits
		return nil
	}
}

// WithDither selects the dither mode for depth reduction. The default is
// error diffusion when precision is lost and none otherwise.
func WithDither(mode dither.Mode) Option {
	return func(cfg *scaleConfig) error {
		if !mode.Valid() {
			return fmt.Errorf("resize: invalid dither mode: %d", int(mode))
		}
		cfg.dither = mode
		cfg.hasDither = true
		return nil
	}
}

// WithRange overrides the color range assumed during format conversion.
// The default follows the format family: limited for YUV, full otherwise.
func WithRange(r graph.ColorRange) Option {
	return func(cfg *scaleConfig) error {
		if r != graph.RangeLimited && r != graph.RangeFull {
			return fmt.Errorf("resize: invalid color range: %d", int(r))
		}
		cfg.colRange = r
		cfg.hasRange = true
		return nil
	}
}

// Scaler scales clips with a fixed resampling kernel and optional format
// conversion. The zero Scaler is not usable; use the package variables or
// the Lanczos/Bicubic constructors.
type Scaler struct {
	kernel Kernel
	// Kernel parameters recorded on created nodes so executors can
	// reconstruct the kernel from the op name alone.
	params graph.Args
}

// Predefined scalers.
var (
	Point    = Scaler{kernel: PointKernel()}
	Bilinear = Scaler{kernel: BilinearKernel()}
	Spline16 = Scaler{kernel: Spline16Kernel()}
	Spline36 = Scaler{kernel: Spline36Kernel()}
	Spline64 = Scaler{kernel: Spline64Kernel()}
)

// Lanczos returns a scaler with a sinc-windowed sinc kernel of the given
// tap count. Invalid tap counts surface when the scaler is used.
func Lanczos(taps int) Scaler {
	k, err := LanczosKernel(taps)
	if err != nil {
		return Scaler{}
	}
	return Scaler{kernel: k, params: graph.Args{"taps": taps}}
}

// Bicubic returns a scaler with the two-parameter cubic kernel.
func Bicubic(b, c float64) Scaler {
	k, err := BicubicKernel(b, c)
	if err != nil {
		return Scaler{}
	}
	return Scaler{kernel: k, params: graph.Args{"b": b, "c": c}}
}

// Kernel returns the scaler's resampling kernel.
func (s Scaler) Kernel() Kernel { return s.kernel }

// Scale resamples the clip to width x height, optionally converting bit
// depth and sample type. Output dimensions must be positive and divisible
// by the format's subsampling factors.
func (s Scaler) Scale(clip graph.Clip, width, height int, opts ...Option) (graph.Clip, error) {
	if s.kernel.Weight == nil {
		return graph.Clip{}, fmt.Errorf("resize: zero scaler: %w", graph.ErrBadArgument)
	}
	name := "resize: " + s.kernel.Name
	if err := graph.CheckFixed(clip, name); err != nil {
		return graph.Clip{}, err
	}

	var cfg scaleConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}

	src := clip.Format()
	target := src
	switch {
	case cfg.hasFormat:
		target = cfg.format
	case cfg.bits != 0:
		target = src.WithBits(cfg.bits)
	}
	if target.Family != src.Family || target.SubW != src.SubW || target.SubH != src.SubH {
		return graph.Clip{}, fmt.Errorf("%s: conversion %s -> %s changes family or subsampling: %w",
			name, src, target, graph.ErrBadArgument)
	}
	if !target.IsValid() {
		return graph.Clip{}, fmt.Errorf("%s: invalid target format %s: %w", name, target, graph.ErrBadArgument)
	}

	if width <= 0 || height <= 0 {
		return graph.Clip{}, fmt.Errorf("%s: target dimensions must be positive: %dx%d: %w",
			name, width, height, graph.ErrBadArgument)
	}
	if width>>target.SubW<<target.SubW != width || height>>target.SubH<<target.SubH != height {
		return graph.Clip{}, fmt.Errorf("%s: %dx%d not divisible by subsampling of %s: %w",
			name, width, height, target, graph.ErrBadArgument)
	}

	ditherMode := cfg.dither
	if !cfg.hasDither {
		ditherMode = dither.ModeNone
		if losesPrecision(src, target) {
			ditherMode = dither.ModeErrorDiffusion
		}
	}
	colRange := graph.DefaultRange(target)
	if cfg.hasRange {
		colRange = cfg.colRange
	}

	args := graph.Args{
		"bits":   target.Bits,
		"sample": int(target.Sample),
		"dither": int(ditherMode),
		"range":  int(colRange),
	}
	for k, v := range s.params {
		args[k] = v
	}

	return clip.InvokeAs(OpPrefix+s.kernel.Name, args, graph.Props{
		Width:  width,
		Height: height,
		Format: target,
	})
}

func losesPrecision(src, target graph.Format) bool {
	if target.Sample == graph.SampleFloat {
		return false
	}
	if src.Sample == graph.SampleFloat {
		return true
	}
	return target.Bits < src.Bits
}
