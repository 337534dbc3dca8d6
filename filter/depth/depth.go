// Package depth provides bit-depth bookkeeping for multi-stage pipelines:
// conversion, promote-and-restore helpers and cross-depth value scaling.
//
// The recipe packages promote their working clip to 16-bit integer
// precision, run their stages and restore the caller's depth at the end;
// Expect and To carry that round trip. Conversions that would not change
// the clip are free: no node is created and the clip is returned as is.
package depth

import (
	"fmt"

	"github.com/cwbudde/algo-deband/dither"
	"github.com/cwbudde/algo-deband/filter/resize"
	"github.com/cwbudde/algo-deband/graph"
)

// Option mutates depth conversion parameters.
type Option func(*config) error

type config struct {
	dither    dither.Mode
	hasDither bool
	colRange  graph.ColorRange
	hasRange  bool
}

// WithDither selects the dither mode for depth reduction. The default is
// error diffusion when precision is lost and none otherwise.
func WithDither(mode dither.Mode) Option {
	return func(cfg *config) error {
		if !mode.Valid() {
			return fmt.Errorf("depth: invalid dither mode: %d", int(mode))
		}
		cfg.dither = mode
		cfg.hasDither = true
		return nil
	}
}

// WithRange overrides the color range assumed during conversion. The
// default follows the format family: limited for YUV, full otherwise.
func WithRange(r graph.ColorRange) Option {
	return func(cfg *config) error {
		if r != graph.RangeLimited && r != graph.RangeFull {
			return fmt.Errorf("depth: invalid color range: %d", int(r))
		}
		cfg.colRange = r
		cfg.hasRange = true
		return nil
	}
}

// To converts the clip to the given bit depth. Bits in [8, 31] yield
// integer storage, 32 yields single precision float. When the clip is
// already stored that way To returns it unchanged without creating a node.
func To(clip graph.Clip, bits int, opts ...Option) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "depth: to"); err != nil {
		return graph.Clip{}, err
	}
	if bits < 8 || bits > 32 {
		return graph.Clip{}, fmt.Errorf("depth: to: bits must be in [8, 32]: %d: %w",
			bits, graph.ErrBadArgument)
	}

	var cfg config
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
	target.Bits = bits
	if bits == 32 {
		target.Sample = graph.SampleFloat
	} else {
		target.Sample = graph.SampleInteger
	}
	if target == src {
		return clip, nil
	}

	scaleOpts := []resize.Option{resize.WithFormat(target)}
	if cfg.hasDither {
		scaleOpts = append(scaleOpts, resize.WithDither(cfg.dither))
	}
	if cfg.hasRange {
		scaleOpts = append(scaleOpts, resize.WithRange(cfg.colRange))
	}
	out, err := resize.Point.Scale(clip, clip.Width(), clip.Height(), scaleOpts...)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("depth: to: %w", err)
	}
	return out, nil
}

// Expect converts the clip to the expected bit depth and returns the
// original effective depth (32 for float input) so callers can restore it
// with To once their work is done.
func Expect(clip graph.Clip, bits int, opts ...Option) (graph.Clip, int, error) {
	if err := graph.CheckFixed(clip, "depth: expect"); err != nil {
		return graph.Clip{}, 0, err
	}
	original := clip.Format().Bits
	if clip.Format().Sample == graph.SampleFloat {
		original = 32
	}
	out, err := To(clip, bits, opts...)
	if err != nil {
		return graph.Clip{}, 0, err
	}
	return out, original, nil
}
