// Package guided implements the guided image filter as a composition of
// box-mean and expression nodes. Guided filtering smooths a clip while
// following the structure of a guide image, which makes it a strong
// debander for shallow gradients: flat regions are averaged, edges in the
// guide survive.
package guided

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

const (
	maxRadius = 1024

	// Variance floor for the edge-aware modes, in nominal [0,1]^2 units.
	epsFloor = 1e-6
)

// Mode selects the regularization strategy.
type Mode int

const (
	// ModeOriginal applies a constant regularization everywhere.
	ModeOriginal Mode = iota
	// ModeWeighted scales the regularization down where local variance is
	// high, preserving edges more aggressively.
	ModeWeighted
	// ModeGradient weights in the gradient (square root of variance)
	// domain, adapting more gently than ModeWeighted.
	ModeGradient

	modeCount
)

var modeNames = map[Mode]string{
	ModeOriginal: "Original",
	ModeWeighted: "Weighted",
	ModeGradient: "Gradient",
}

// String returns a human-readable mode name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether the mode is one of the defined constants.
func (m Mode) Valid() bool {
	return m >= ModeOriginal && m < modeCount
}

// Option mutates guided filter parameters.
type Option func(*config) error

type config struct {
	planes []int
}

// WithPlanes restricts processing to the given planes. Unprocessed planes
// carry the input plane through unchanged. The default processes all planes.
func WithPlanes(planes ...int) Option {
	return func(cfg *config) error {
		if len(planes) == 0 {
			return fmt.Errorf("guided: planes need at least one value: %w", graph.ErrBadArgument)
		}
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// Filter runs the guided image filter over clip with the given window
// radius and regularization strength eps (in nominal [0,1] squared units,
// scaled internally to the clip's value range). A zero guide filters the
// clip by its own structure.
//
// The construction follows the standard pipeline: window means of input and
// guide, variance and covariance, the a/b coefficient planes, box-smoothed
// coefficients and the recombination q = meanA*guide + meanB.
func Filter(clip, guide graph.Clip, radius int, eps float64, mode Mode, opts ...Option) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "guided: filter"); err != nil {
		return graph.Clip{}, err
	}
	selfGuided := guide.IsZero()
	if !selfGuided {
		if err := graph.CheckCompatible(clip, guide, "guided: filter"); err != nil {
			return graph.Clip{}, err
		}
	}
	if radius < 1 || radius > maxRadius {
		return graph.Clip{}, fmt.Errorf("guided: filter: radius must be in [1, %d]: %d", maxRadius, radius)
	}
	if eps <= 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		return graph.Clip{}, fmt.Errorf("guided: filter: eps must be positive and finite: %g", eps)
	}
	if !mode.Valid() {
		return graph.Clip{}, fmt.Errorf("guided: filter: invalid mode %d: %w", int(mode), graph.ErrBadArgument)
	}

	cfg := config{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}
	format := clip.Format()
	planes, err := graph.NormalizePlanes(format, cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("guided: filter: %w", err)
	}

	valueRange := 1.0
	if format.Sample == graph.SampleInteger {
		valueRange = float64(int64(1)<<format.Bits - 1)
	}

	b := builder{radius: radius, planes: planes, nPlanes: format.NumPlanes()}
	out, err := b.build(clip, guide, selfGuided, eps, valueRange, mode)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("guided: filter: %w", err)
	}
	return out, nil
}

// builder keeps the shared per-call parameters out of every helper
// signature. All validation happens before build runs, so the node cascade
// cannot fail halfway.
type builder struct {
	radius  int
	planes  []int
	nPlanes int
}

func (b builder) build(clip, guide graph.Clip, selfGuided bool, eps, valueRange float64, mode Mode) (graph.Clip, error) {
	meanI, err := b.box(orSelf(guide, clip))
	if err != nil {
		return graph.Clip{}, err
	}
	meanP := meanI
	if !selfGuided {
		if meanP, err = b.box(clip); err != nil {
			return graph.Clip{}, err
		}
	}

	sqI, err := b.expr([]graph.Clip{orSelf(guide, clip)}, "x x *")
	if err != nil {
		return graph.Clip{}, err
	}
	corrI, err := b.box(sqI)
	if err != nil {
		return graph.Clip{}, err
	}
	varI, err := b.expr([]graph.Clip{corrI, meanI}, "x y y * -")
	if err != nil {
		return graph.Clip{}, err
	}

	covIP := varI
	if !selfGuided {
		prodIP, err := b.expr([]graph.Clip{guide, clip}, "x y *")
		if err != nil {
			return graph.Clip{}, err
		}
		corrIP, err := b.box(prodIP)
		if err != nil {
			return graph.Clip{}, err
		}
		if covIP, err = b.expr([]graph.Clip{corrIP, meanI, meanP}, "x y z * -"); err != nil {
			return graph.Clip{}, err
		}
	}

	var coefA graph.Clip
	if selfGuided {
		coefA, err = b.expr([]graph.Clip{varI}, coefExpr(mode, "x", eps, valueRange))
	} else {
		coefA, err = b.expr([]graph.Clip{covIP, varI}, coefExpr(mode, "y", eps, valueRange))
	}
	if err != nil {
		return graph.Clip{}, err
	}
	coefB, err := b.expr([]graph.Clip{meanP, coefA, meanI}, "x y z * -")
	if err != nil {
		return graph.Clip{}, err
	}

	meanA, err := b.box(coefA)
	if err != nil {
		return graph.Clip{}, err
	}
	meanB, err := b.box(coefB)
	if err != nil {
		return graph.Clip{}, err
	}

	if selfGuided {
		return b.expr([]graph.Clip{clip, meanA, meanB}, "y x * z +")
	}
	return b.expr([]graph.Clip{clip, guide, meanA, meanB}, "z y * a +")
}

func (b builder) box(c graph.Clip) (graph.Clip, error) {
	return std.BoxBlur(c,
		std.WithBoxBlurHorizontal(b.radius, 1),
		std.WithBoxBlurVertical(b.radius, 1),
		std.WithBoxBlurPlanes(b.planes...),
	)
}

// expr applies src on the selected planes and copies the first input
// elsewhere.
func (b builder) expr(clips []graph.Clip, src string) (graph.Clip, error) {
	exprs := make([]string, b.nPlanes)
	for p := range exprs {
		if graph.HasPlane(b.planes, p) {
			exprs[p] = src
		}
	}
	return std.Expr(clips, exprs...)
}

// coefExpr builds the a-coefficient expression. The covariance is always
// token x; v names the variance token ("x" when self-guided collapses the
// two). Variance is clamped at zero before use since the box means carry
// rounding noise.
func coefExpr(mode Mode, v string, eps, valueRange float64) string {
	epsS := eps * valueRange * valueRange
	clamped := v + " 0 max"
	switch mode {
	case ModeWeighted:
		floor := epsFloor * valueRange * valueRange
		k := epsS * (epsS + floor)
		return fmt.Sprintf("x %s %s %s %s + / + /",
			clamped, num(k), clamped, num(floor))
	case ModeGradient:
		floor := math.Sqrt(epsFloor) * valueRange
		k := epsS * (math.Sqrt(epsS) + floor)
		return fmt.Sprintf("x %s %s %s sqrt %s + / + /",
			clamped, num(k), clamped, num(floor))
	default:
		return fmt.Sprintf("x %s %s + /", clamped, num(epsS))
	}
}

func orSelf(guide, clip graph.Clip) graph.Clip {
	if guide.IsZero() {
		return clip
	}
	return guide
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
