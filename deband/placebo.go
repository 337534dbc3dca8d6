package deband

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/graph"
)

// OpPlacebo names the plugin node Placebo emits.
const OpPlacebo = "placebo.Deband"

const (
	maxPlaceboIterations = 16

	defaultPlaceboRadius     = 16.0
	defaultPlaceboThreshold  = 4.0
	defaultPlaceboIterations = 1
	defaultPlaceboGrain      = 6.0
)

// PlaceboOption mutates Placebo configuration.
type PlaceboOption func(*placeboConfig) error

type placeboConfig struct {
	radius     float64
	thresholds []float64
	iterations int
	grain      float64
}

func defaultPlaceboConfig() placeboConfig {
	return placeboConfig{
		radius:     defaultPlaceboRadius,
		thresholds: []float64{defaultPlaceboThreshold},
		iterations: defaultPlaceboIterations,
		grain:      defaultPlaceboGrain,
	}
}

// WithPlaceboRadius sets the initial debanding radius in pixels. The radius
// grows with each iteration. The default is 16.
func WithPlaceboRadius(radius float64) PlaceboOption {
	return func(cfg *placeboConfig) error {
		if radius < 1 || math.IsNaN(radius) || math.IsInf(radius, 0) {
			return fmt.Errorf("deband: placebo: radius must be >= 1: %g", radius)
		}
		cfg.radius = radius
		return nil
	}
}

// WithPlaceboThresholds sets per-plane debanding cut-off thresholds (up to
// three values, the last one repeats). A plane with threshold 0 passes
// through untouched. The default is 4.
func WithPlaceboThresholds(thresholds ...float64) PlaceboOption {
	return func(cfg *placeboConfig) error {
		if err := checkPlaceboThresholds(thresholds); err != nil {
			return err
		}
		cfg.thresholds = append([]float64(nil), thresholds...)
		return nil
	}
}

// WithPlaceboIterations sets how many debanding rounds the shader runs.
// Range: [1, 16]. The default is 1.
func WithPlaceboIterations(iterations int) PlaceboOption {
	return func(cfg *placeboConfig) error {
		if iterations < 1 || iterations > maxPlaceboIterations {
			return fmt.Errorf("deband: placebo: iterations must be in [1, %d]: %d",
				maxPlaceboIterations, iterations)
		}
		cfg.iterations = iterations
		return nil
	}
}

// WithPlaceboGrain sets the grain strength added after debanding. The
// default is 6.
func WithPlaceboGrain(grain float64) PlaceboOption {
	return func(cfg *placeboConfig) error {
		if grain < 0 || math.IsNaN(grain) || math.IsInf(grain, 0) {
			return fmt.Errorf("deband: placebo: grain must be >= 0: %g", grain)
		}
		cfg.grain = grain
		return nil
	}
}

// Placebo drives libplacebo's debanding shader. The shader works per plane,
// so one node is emitted per group of planes sharing a threshold, with the
// plane selection packed into a bitmask argument.
type Placebo struct {
	cfg placeboConfig
}

// NewPlacebo returns a debander with the given options applied over the
// shader defaults (radius 16, threshold 4, 1 iteration, grain 6).
func NewPlacebo(opts ...PlaceboOption) (*Placebo, error) {
	cfg := defaultPlaceboConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Placebo{cfg: cfg}, nil
}

// Radius returns the configured debanding radius.
func (p *Placebo) Radius() float64 { return p.cfg.radius }

// Deband appends the shader passes over clip. Zero fields in params fall
// back to the configured defaults; integer Params values convert to the
// shader's float parameters and only the first grain value is used. Planes
// whose threshold is zero are skipped; if nothing is left to do the clip
// is returned unchanged.
func (p *Placebo) Deband(clip graph.Clip, params Params) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "deband: placebo"); err != nil {
		return graph.Clip{}, err
	}

	radius := p.cfg.radius
	if params.Radius != 0 {
		if params.Radius < 1 {
			return graph.Clip{}, fmt.Errorf("deband: placebo: radius must be >= 1: %d", params.Radius)
		}
		radius = float64(params.Radius)
	}
	thresholds := p.cfg.thresholds
	if params.Thresholds != nil {
		thresholds = make([]float64, len(params.Thresholds))
		for i, t := range params.Thresholds {
			thresholds[i] = float64(t)
		}
		if err := checkPlaceboThresholds(thresholds); err != nil {
			return graph.Clip{}, err
		}
	}
	grain := p.cfg.grain
	if params.Grain != nil {
		if len(params.Grain) == 0 {
			return graph.Clip{}, fmt.Errorf("deband: placebo: grain needs at least one value: %w", graph.ErrBadArgument)
		}
		if params.Grain[0] < 0 {
			return graph.Clip{}, fmt.Errorf("deband: placebo: grain must be >= 0: %d", params.Grain[0])
		}
		grain = float64(params.Grain[0])
	}

	nPlanes := clip.Format().NumPlanes()
	thr, err := graph.NormalizeSeq(thresholds, nPlanes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("deband: placebo: %w", err)
	}

	out := clip
	for _, group := range groupPlanes(thr) {
		if group.threshold == 0 && grain == 0 {
			continue
		}
		out, err = out.Invoke(OpPlacebo, graph.Args{
			"planes":     group.mask,
			"threshold":  group.threshold,
			"radius":     radius,
			"iterations": p.cfg.iterations,
			"grain":      grain,
		})
		if err != nil {
			return graph.Clip{}, err
		}
	}
	return out, nil
}

// Grain adds grain without debanding: shader passes with zero threshold.
// Empty or all-zero amounts fall back to the configured grain; if that is
// zero too, the clip is returned unchanged.
func (p *Placebo) Grain(clip graph.Clip, amount ...int) (graph.Clip, error) {
	if len(amount) == 0 {
		if p.cfg.grain == 0 {
			return clip, nil
		}
		return p.Deband(clip, Params{Thresholds: []int{0}})
	}
	if amount[0] < 0 {
		return graph.Clip{}, fmt.Errorf("deband: placebo: grain must be >= 0: %d", amount[0])
	}
	if amount[0] == 0 {
		return clip, nil
	}
	return p.Deband(clip, Params{Thresholds: []int{0}, Grain: amount[:1]})
}

// PlaceboDeband is the convenience entry point for a single Placebo pass.
func PlaceboDeband(clip graph.Clip, opts ...PlaceboOption) (graph.Clip, error) {
	p, err := NewPlacebo(opts...)
	if err != nil {
		return graph.Clip{}, err
	}
	return p.Deband(clip, Params{})
}

type planeGroup struct {
	mask      int
	threshold float64
}

// groupPlanes buckets planes sharing a threshold into bitmasks, keeping
// first-seen order so node construction stays deterministic.
func groupPlanes(thresholds []float64) []planeGroup {
	var groups []planeGroup
	for p, t := range thresholds {
		found := false
		for i := range groups {
			if groups[i].threshold == t {
				groups[i].mask |= 1 << p
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, planeGroup{mask: 1 << p, threshold: t})
		}
	}
	return groups
}

func checkPlaceboThresholds(thresholds []float64) error {
	if len(thresholds) == 0 {
		return fmt.Errorf("deband: placebo: thresholds need at least one value: %w", graph.ErrBadArgument)
	}
	for _, t := range thresholds {
		if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("deband: placebo: threshold must be >= 0: %g", t)
		}
	}
	return nil
}
