package deband

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/filter/blur"
	"github.com/cwbudde/algo-deband/filter/depth"
	"github.com/cwbudde/algo-deband/filter/limit"
	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

// Prefilter blurs a clip before debanding. The planes argument names the
// planes the caller wants processed; implementations that cannot restrict
// themselves may process all planes.
type Prefilter func(clip graph.Clip, planes []int) (graph.Clip, error)

// PrefilterFunc adapts a plane-unaware filter into a Prefilter.
func PrefilterFunc(fn func(graph.Clip) (graph.Clip, error)) Prefilter {
	return func(clip graph.Clip, _ []int) (graph.Clip, error) {
		return fn(clip)
	}
}

// PFOption mutates the prefilter recipe configuration.
type PFOption func(*pfConfig) error

type pfConfig struct {
	radius     int
	thresholds []int
	grain      []int
	debander   Debander
	prefilter  Prefilter
	planes     []int
	limitThr   []float64
	brightThr  []float64
	elast      float64
}

func defaultPFConfig() pfConfig {
	return pfConfig{
		radius:     defaultF3kdbRadius,
		thresholds: []int{defaultF3kdbThreshold},
		grain:      []int{0},
		planes:     []int{0},
		elast:      2.5,
	}
}

// WithPFRadius sets the banding detection range. Range: [1, 64]. The
// default is 16.
func WithPFRadius(radius int) PFOption {
	return func(cfg *pfConfig) error {
		if err := checkF3kdbRadius(radius); err != nil {
			return err
		}
		cfg.radius = radius
		return nil
	}
}

// WithPFThresholds sets the per-plane detection thresholds. The default
// is 30.
func WithPFThresholds(thresholds ...int) PFOption {
	return func(cfg *pfConfig) error {
		if err := checkF3kdbThresholds(thresholds); err != nil {
			return err
		}
		cfg.thresholds = append([]int(nil), thresholds...)
		return nil
	}
}

// WithPFGrain adds grain in the debanding pass (luma and chroma amounts).
// The default is no grain.
func WithPFGrain(grain ...int) PFOption {
	return func(cfg *pfConfig) error {
		if err := checkF3kdbGrain(grain); err != nil {
			return err
		}
		if len(grain) > 2 {
			return fmt.Errorf("deband: prefilter: grain takes at most 2 values, got %d", len(grain))
		}
		cfg.grain = append([]int(nil), grain...)
		return nil
	}
}

// WithPFDebander debands through a custom debander instead of a default
// F3kdb.
func WithPFDebander(d Debander) PFOption {
	return func(cfg *pfConfig) error {
		if d == nil {
			return fmt.Errorf("deband: prefilter: nil debander: %w", graph.ErrBadArgument)
		}
		cfg.debander = d
		return nil
	}
}

// WithPFPrefilter replaces the default blur prefilter.
func WithPFPrefilter(fn Prefilter) PFOption {
	return func(cfg *pfConfig) error {
		if fn == nil {
			return fmt.Errorf("deband: prefilter: nil prefilter: %w", graph.ErrBadArgument)
		}
		cfg.prefilter = fn
		return nil
	}
}

// WithPFPlanes sets the planes handed to the prefilter. The default is
// luma only.
func WithPFPlanes(planes ...int) PFOption {
	return func(cfg *pfConfig) error {
		if len(planes) == 0 {
			return fmt.Errorf("deband: prefilter: planes need at least one value: %w", graph.ErrBadArgument)
		}
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// WithPFLimit sets the per-plane limiting thresholds in 8-bit scale.
func WithPFLimit(thr ...float64) PFOption {
	return func(cfg *pfConfig) error {
		if err := checkLimitThresholds("deband: prefilter", thr); err != nil {
			return err
		}
		cfg.limitThr = append([]float64(nil), thr...)
		return nil
	}
}

// WithPFBrightLimit sets separate limiting thresholds for pixels the
// debanding brightened.
func WithPFBrightLimit(thr ...float64) PFOption {
	return func(cfg *pfConfig) error {
		if err := checkLimitThresholds("deband: prefilter", thr); err != nil {
			return err
		}
		cfg.brightThr = append([]float64(nil), thr...)
		return nil
	}
}

// WithPFElasticity sets the limiting falloff ratio. Range: [1, 32]. The
// default is 2.5.
func WithPFElasticity(elast float64) PFOption {
	return func(cfg *pfConfig) error {
		if elast < 1 || elast > 32 || math.IsNaN(elast) {
			return fmt.Errorf("deband: prefilter: elasticity must be in [1, 32]: %g", elast)
		}
		cfg.elast = elast
		return nil
	}
}

// F3kPF debands a blurred copy of the clip and restores the detail after.
// The hardwired prefilter is a 3x3 weighted blur on all planes followed by
// a 3x3 average on luma, which makes the debanding bite very fast; the
// result behaves like gradient smoothing without a detail mask. Limiting
// defaults to threshold 0.3 on all planes with elasticity 2.5.
func F3kPF(clip graph.Clip, opts ...PFOption) (graph.Clip, error) {
	cfg := defaultPFConfig()
	cfg.limitThr = []float64{0.3}
	cfg.prefilter = func(c graph.Clip, planes []int) (graph.Clip, error) {
		out, err := std.Convolution(c, []float64{1, 2, 1, 2, 4, 2, 1, 2, 1})
		if err != nil {
			return graph.Clip{}, err
		}
		return std.Convolution(out,
			[]float64{1, 1, 1, 1, 1, 1, 1, 1, 1},
			std.WithConvolutionPlanes(planes...))
	}
	return prefilterDeband(clip, cfg, opts, "deband: f3kpf")
}

// PFDeband is the debander-generic prefilter pipeline: blur, deband the
// blur, limit against the blur and merge the detail difference back.
// The default prefilter is a binomial blur of radius 2 on luma; limiting
// defaults to threshold 76 on luma only with elasticity 2.5.
func PFDeband(clip graph.Clip, opts ...PFOption) (graph.Clip, error) {
	cfg := defaultPFConfig()
	cfg.limitThr = []float64{76, 0}
	cfg.prefilter = func(c graph.Clip, planes []int) (graph.Clip, error) {
		return blur.Blur(c, 2, blur.WithBlurPlanes(planes...))
	}
	return prefilterDeband(clip, cfg, opts, "deband: pfdeband")
}

func prefilterDeband(clip graph.Clip, cfg pfConfig, opts []PFOption, name string) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, name); err != nil {
		return graph.Clip{}, err
	}
	defaultLimit := cfg.limitThr
	cfg.limitThr = nil
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}

	nPlanes := clip.Format().NumPlanes()
	if cfg.limitThr == nil {
		cfg.limitThr = defaultLimit[:min(len(defaultLimit), nPlanes)]
	} else if len(cfg.limitThr) > nPlanes {
		return graph.Clip{}, fmt.Errorf("%s: %d limit thresholds for %d planes", name, len(cfg.limitThr), nPlanes)
	}
	if len(cfg.brightThr) > nPlanes {
		return graph.Clip{}, fmt.Errorf("%s: %d bright thresholds for %d planes", name, len(cfg.brightThr), nPlanes)
	}
	planes, err := graph.NormalizePlanes(clip.Format(), cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	debander := cfg.debander
	if debander == nil {
		if debander, err = NewF3kdb(); err != nil {
			return graph.Clip{}, err
		}
	}

	work, bits, err := depth.Expect(clip, 16)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	blurred, err := cfg.prefilter(work, planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: prefilter: %w", name, err)
	}
	if err := graph.CheckCompatible(work, blurred, name); err != nil {
		return graph.Clip{}, fmt.Errorf("%s: prefilter changed the clip geometry: %w", name, err)
	}

	diff, err := std.MakeDiff(work, blurred)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	deband, err := debander.Deband(blurred, Params{
		Radius:     cfg.radius,
		Thresholds: cfg.thresholds,
		Grain:      cfg.grain,
	})
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	limitOpts := []limit.Option{
		limit.WithThresholds(cfg.limitThr...),
		limit.WithElasticity(cfg.elast),
	}
	if cfg.brightThr != nil {
		limitOpts = append(limitOpts, limit.WithBrightThresholds(cfg.brightThr...))
	}
	limited, err := limit.Filter(deband, blurred, limitOpts...)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	out, err := std.MergeDiff(limited, diff)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	out, err = depth.To(out, bits)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
