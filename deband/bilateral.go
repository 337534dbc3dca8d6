package deband

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/filter/depth"
	"github.com/cwbudde/algo-deband/filter/limit"
	"github.com/cwbudde/algo-deband/graph"
)

const (
	// Stage radii are scaled up to 4/3 of the configured radius, which in
	// turn must stay inside the plugin's detection range. The lower bound
	// keeps the finest stage at a radius of at least 1.
	minBilateralRadius = 2
	maxBilateralRadius = 48

	defaultBilateralRadius    = 16
	defaultBilateralThreshold = 65
)

// BilateralOption mutates the three-stage recipe configuration.
type BilateralOption func(*bilateralConfig) error

type bilateralConfig struct {
	radius     int
	thresholds []int
	grain      []int
	debander   Debander
	limitThr   []float64
	brightThr  []float64
	elast      float64
}

func defaultBilateralConfig() bilateralConfig {
	return bilateralConfig{
		radius:     defaultBilateralRadius,
		thresholds: []int{defaultBilateralThreshold},
		grain:      []int{0},
		elast:      3.0,
	}
}

// WithBilateralRadius sets the base banding detection range; the three
// stages run at 4/3, 2/3 and 1/3 of it. Range: [2, 48]. The default is 16.
func WithBilateralRadius(radius int) BilateralOption {
	return func(cfg *bilateralConfig) error {
		if radius < minBilateralRadius || radius > maxBilateralRadius {
			return fmt.Errorf("deband: bilateral: radius must be in [%d, %d]: %d",
				minBilateralRadius, maxBilateralRadius, radius)
		}
		cfg.radius = radius
		return nil
	}
}

// WithBilateralThresholds sets the per-plane detection thresholds used by
// stages two and three; stage one runs at half strength. The default is 65.
func WithBilateralThresholds(thresholds ...int) BilateralOption {
	return func(cfg *bilateralConfig) error {
		if err := checkF3kdbThresholds(thresholds); err != nil {
			return err
		}
		cfg.thresholds = append([]int(nil), thresholds...)
		return nil
	}
}

// WithBilateralGrain adds grain after the limiting pass (luma and chroma
// amounts). The default is no grain.
func WithBilateralGrain(grain ...int) BilateralOption {
	return func(cfg *bilateralConfig) error {
		if err := checkF3kdbGrain(grain); err != nil {
			return err
		}
		if len(grain) > 2 {
			return fmt.Errorf("deband: bilateral: grain takes at most 2 values, got %d", len(grain))
		}
		cfg.grain = append([]int(nil), grain...)
		return nil
	}
}

// WithBilateralDebander runs the stages through a custom debander instead
// of a default F3kdb.
func WithBilateralDebander(d Debander) BilateralOption {
	return func(cfg *bilateralConfig) error {
		if d == nil {
			return fmt.Errorf("deband: bilateral: nil debander: %w", graph.ErrBadArgument)
		}
		cfg.debander = d
		return nil
	}
}

// WithBilateralLimit sets the per-plane limiting thresholds in 8-bit scale.
func WithBilateralLimit(thr ...float64) BilateralOption {
	return func(cfg *bilateralConfig) error {
		if err := checkLimitThresholds("deband: bilateral", thr); err != nil {
			return err
		}
		cfg.limitThr = append([]float64(nil), thr...)
		return nil
	}
}

// WithBilateralBrightLimit sets separate limiting thresholds for pixels the
// debanding brightened.
func WithBilateralBrightLimit(thr ...float64) BilateralOption {
	return func(cfg *bilateralConfig) error {
		if err := checkLimitThresholds("deband: bilateral", thr); err != nil {
			return err
		}
		cfg.brightThr = append([]float64(nil), thr...)
		return nil
	}
}

// WithBilateralElasticity sets the limiting falloff ratio. Range: [1, 32].
// The default is 3.
func WithBilateralElasticity(elast float64) BilateralOption {
	return func(cfg *bilateralConfig) error {
		if elast < 1 || elast > 32 || math.IsNaN(elast) {
			return fmt.Errorf("deband: bilateral: elasticity must be in [1, 32]: %g", elast)
		}
		cfg.elast = elast
		return nil
	}
}

// F3kBilateral runs three F3kdb stages from coarse to fine radius, then
// limits the final stage against the middle one with the source as
// reference, blending the aggressive result back wherever it strays. A
// last-resort filter for extreme banding; luma/chroma thresholds around
// 40 to 60 are the useful range. Limiting defaults to threshold 0.6 on all
// planes with elasticity 3.
func F3kBilateral(clip graph.Clip, opts ...BilateralOption) (graph.Clip, error) {
	cfg := defaultBilateralConfig()
	cfg.limitThr = []float64{0.6}
	return bilateral(clip, cfg, opts, "deband: f3kbilateral")
}

// MDBBilateral is the debander-generic variant of F3kBilateral: the three
// stages run through any Debander (default F3kdb) and limiting defaults to
// threshold 153 on luma only, leaving chroma at the middle stage's result.
func MDBBilateral(clip graph.Clip, opts ...BilateralOption) (graph.Clip, error) {
	cfg := defaultBilateralConfig()
	cfg.limitThr = []float64{153, 0}
	return bilateral(clip, cfg, opts, "deband: mdbbilateral")
}

func bilateral(clip graph.Clip, cfg bilateralConfig, opts []BilateralOption, name string) (graph.Clip, error) {
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

	// Node construction below must not fail halfway, so every limiting
	// parameter is checked against the clip before the first stage runs.
	nPlanes := clip.Format().NumPlanes()
	if cfg.limitThr == nil {
		cfg.limitThr = defaultLimit[:min(len(defaultLimit), nPlanes)]
	} else if len(cfg.limitThr) > nPlanes {
		return graph.Clip{}, fmt.Errorf("%s: %d limit thresholds for %d planes", name, len(cfg.limitThr), nPlanes)
	}
	if len(cfg.brightThr) > nPlanes {
		return graph.Clip{}, fmt.Errorf("%s: %d bright thresholds for %d planes", name, len(cfg.brightThr), nPlanes)
	}

	debander := cfg.debander
	if debander == nil {
		var err error
		if debander, err = NewF3kdb(); err != nil {
			return graph.Clip{}, err
		}
	}

	rad1 := int(math.Round(float64(cfg.radius) * 4 / 3))
	rad2 := int(math.Round(float64(cfg.radius) * 2 / 3))
	rad3 := int(math.Round(float64(cfg.radius) / 3))

	// Stage one runs at half threshold so the coarse pass cannot flatten
	// real gradients before the finer stages see them.
	halved := make([]int, len(cfg.thresholds))
	for i, t := range cfg.thresholds {
		halved[i] = max(1, t/2)
	}

	work, bits, err := depth.Expect(clip, 16)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	db1, err := debander.Deband(work, Params{Radius: rad1, Thresholds: halved, Grain: []int{0}})
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	db2, err := debander.Deband(db1, Params{Radius: rad2, Thresholds: cfg.thresholds, Grain: []int{0}})
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	db3, err := debander.Deband(db2, Params{Radius: rad3, Thresholds: cfg.thresholds, Grain: []int{0}})
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	limitOpts := []limit.Option{
		limit.WithRef(work),
		limit.WithThresholds(cfg.limitThr...),
		limit.WithElasticity(cfg.elast),
	}
	if cfg.brightThr != nil {
		limitOpts = append(limitOpts, limit.WithBrightThresholds(cfg.brightThr...))
	}
	out, err := limit.Filter(db3, db2, limitOpts...)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	if !allZeroInts(cfg.grain) {
		if out, err = debander.Grain(out, cfg.grain...); err != nil {
			return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
		}
	}

	out, err = depth.To(out, bits)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
