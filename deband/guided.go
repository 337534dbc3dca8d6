package deband

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/filter/blur"
	"github.com/cwbudde/algo-deband/filter/guided"
	"github.com/cwbudde/algo-deband/filter/limit"
	"github.com/cwbudde/algo-deband/filter/morph"
	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

const (
	maxGuidedRadius = 1024

	defaultGuidedStrength = 0.3
)

// GuidedOption mutates the guided recipe configuration.
type GuidedOption func(*guidedConfig) error

type guidedConfig struct {
	radius     int
	strength   float64
	mode       guided.Mode
	planes     []int
	limitThr   []float64
	maskRadius int
	maskThr    []float64
	rangeIn    graph.ColorRange
	hasRange   bool
}

func defaultGuidedConfig() guidedConfig {
	return guidedConfig{
		strength: defaultGuidedStrength,
		mode:     guided.ModeGradient,
	}
}

// WithGuidedRadius sets the filtering window radius. Zero picks a radius
// from the clip height (one per 540 lines). Range: [0, 1024].
func WithGuidedRadius(radius int) GuidedOption {
	return func(cfg *guidedConfig) error {
		if radius < 0 || radius > maxGuidedRadius {
			return fmt.Errorf("deband: guided: radius must be in [0, %d]: %d", maxGuidedRadius, radius)
		}
		cfg.radius = radius
		return nil
	}
}

// WithGuidedStrength sets the smoothing regularization in nominal [0,1]
// squared units. The default is 0.3.
func WithGuidedStrength(strength float64) GuidedOption {
	return func(cfg *guidedConfig) error {
		if strength <= 0 || math.IsNaN(strength) || math.IsInf(strength, 0) {
			return fmt.Errorf("deband: guided: strength must be positive and finite: %g", strength)
		}
		cfg.strength = strength
		return nil
	}
}

// WithGuidedMode selects the guided filter's regularization mode. The
// default is guided.ModeGradient.
func WithGuidedMode(mode guided.Mode) GuidedOption {
	return func(cfg *guidedConfig) error {
		if !mode.Valid() {
			return fmt.Errorf("deband: guided: invalid mode %d: %w", int(mode), graph.ErrBadArgument)
		}
		cfg.mode = mode
		return nil
	}
}

// WithGuidedPlanes restricts processing to the given planes. The default
// processes all planes.
func WithGuidedPlanes(planes ...int) GuidedOption {
	return func(cfg *guidedConfig) error {
		if len(planes) == 0 {
			return fmt.Errorf("deband: guided: planes need at least one value: %w", graph.ErrBadArgument)
		}
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// WithGuidedLimit bounds the smoothing against the source with the given
// per-plane thresholds in 8-bit scale. Disabled by default.
func WithGuidedLimit(thr ...float64) GuidedOption {
	return func(cfg *guidedConfig) error {
		if err := checkLimitThresholds("deband: guided", thr); err != nil {
			return err
		}
		cfg.limitThr = append([]float64(nil), thr...)
		return nil
	}
}

// WithGuidedMaskRadius protects detail behind a local-range mask built at
// the given morphology radius. Zero (the default) disables the mask.
func WithGuidedMaskRadius(radius int) GuidedOption {
	return func(cfg *guidedConfig) error {
		if radius < 0 || radius > 128 {
			return fmt.Errorf("deband: guided: mask radius must be in [0, 128]: %d", radius)
		}
		cfg.maskRadius = radius
		return nil
	}
}

// WithGuidedMaskThresholds overrides the per-plane binarize thresholds of
// the detail mask. All zero skips binarization and uses the raw local
// range. The default derives the thresholds from depth and color range.
func WithGuidedMaskThresholds(thr ...float64) GuidedOption {
	return func(cfg *guidedConfig) error {
		if len(thr) == 0 {
			return fmt.Errorf("deband: guided: mask thresholds need at least one value: %w", graph.ErrBadArgument)
		}
		for _, t := range thr {
			if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
				return fmt.Errorf("deband: guided: mask threshold must be >= 0: %g", t)
			}
		}
		cfg.maskThr = append([]float64(nil), thr...)
		return nil
	}
}

// WithGuidedRange declares the clip's color range for the automatic mask
// thresholds. The default derives it from the color family.
func WithGuidedRange(r graph.ColorRange) GuidedOption {
	return func(cfg *guidedConfig) error {
		cfg.rangeIn = r
		cfg.hasRange = true
		return nil
	}
}

// Guided debands with an edge-preserving guided filter instead of a
// banding-detection plugin. Optional limiting clips the smoothing back
// toward the source, and an optional local-range mask restores the source
// over detailed regions: the mask is binarized, cleaned with three
// RemoveGrain passes and applied with MaskedMerge.
func Guided(clip graph.Clip, opts ...GuidedOption) (graph.Clip, error) {
	const name = "deband: guided"
	if err := graph.CheckFixed(clip, name); err != nil {
		return graph.Clip{}, err
	}

	cfg := defaultGuidedConfig()
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
	planes, err := graph.NormalizePlanes(format, cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(cfg.limitThr) > nPlanes {
		return graph.Clip{}, fmt.Errorf("%s: %d limit thresholds for %d planes", name, len(cfg.limitThr), nPlanes)
	}
	if len(cfg.maskThr) > nPlanes {
		return graph.Clip{}, fmt.Errorf("%s: %d mask thresholds for %d planes", name, len(cfg.maskThr), nPlanes)
	}

	radius := cfg.radius
	if radius == 0 {
		radius = (clip.Height() + 539) / 540
	}

	out, err := guided.Filter(clip, graph.Clip{}, radius, cfg.strength, cfg.mode,
		guided.WithPlanes(planes...))
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	if cfg.limitThr != nil {
		out, err = limit.Filter(out, clip, limit.WithThresholds(cfg.limitThr...))
		if err != nil {
			return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
		}
	}

	if cfg.maskRadius > 0 {
		mask, err := detailMask(clip, cfg, planes)
		if err != nil {
			return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
		}
		out, err = std.MaskedMerge(out, clip, mask, std.WithMaskedMergePlanes(planes...))
		if err != nil {
			return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return out, nil
}

// detailMask builds the mask that protects texture from the smoothing:
// local range, optional binarization, three cleaning passes.
func detailMask(clip graph.Clip, cfg guidedConfig, planes []int) (graph.Clip, error) {
	mask, err := morph.RangeMask(clip, cfg.maskRadius, morph.WithPlanes(planes...))
	if err != nil {
		return graph.Clip{}, err
	}

	thr := cfg.maskThr
	if thr == nil {
		rangeIn := graph.DefaultRange(clip.Format())
		if cfg.hasRange {
			rangeIn = cfg.rangeIn
		}
		thr = maskBinarizeThresholds(clip.Format(), rangeIn)
		thr = thr[:min(len(thr), clip.Format().NumPlanes())]
	}
	if !allZeroFloats(thr) {
		mask, err = std.Binarize(mask,
			std.WithBinarizeThreshold(thr...),
			std.WithBinarizePlanes(planes...))
		if err != nil {
			return graph.Clip{}, err
		}
	}

	for _, mode := range []blur.RGMode{blur.RGPairClipRound, blur.RGMeanNoCenter, blur.RGLineClip} {
		if mask, err = blur.RemoveGrain(mask, mode); err != nil {
			return graph.Clip{}, err
		}
	}
	return mask, nil
}

// maskBinarizeThresholds picks a cut-off of 1.5 units in 8-bit scale,
// adjusted to the sample type and color range.
func maskBinarizeThresholds(format graph.Format, rangeIn graph.ColorRange) []float64 {
	if format.Sample == graph.SampleFloat {
		if rangeIn == graph.RangeFull {
			return []float64{1.5 / 255}
		}
		return []float64{1.5 / 219, 1.5 / 224}
	}
	return []float64{1.5 * float64(int64(1)<<(format.Bits-8))}
}

func allZeroFloats(vals []float64) bool {
	for _, v := range vals {
		if v != 0 {
			return false
		}
	}
	return true
}
