// Package limit bounds how far a filtered clip may deviate from its source,
// with an elastic falloff between "keep the filtered value" and "revert to
// the source". The debanding pipelines use it to clip each refinement stage
// back toward the original wherever debanding would destroy wanted detail.
package limit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

const (
	defaultThreshold  = 0.6
	defaultElasticity = 3.0
	maxElasticity     = 32.0
)

// Option mutates limit filter parameters.
type Option func(*config) error

type config struct {
	ref       graph.Clip
	thr       []float64
	brightThr []float64
	elast     float64
}

func defaultLimitConfig() config {
	return config{
		thr:   []float64{defaultThreshold},
		elast: defaultElasticity,
	}
}

// WithRef limits deviation against a separate reference clip instead of the
// source: the decision distance is |flt - ref| while the blended value still
// interpolates between flt and src.
func WithRef(ref graph.Clip) Option {
	return func(cfg *config) error {
		if ref.IsZero() {
			return fmt.Errorf("limit: nil reference clip: %w", graph.ErrBadClip)
		}
		cfg.ref = ref
		return nil
	}
}

// WithThresholds sets per-plane deviation thresholds in 8-bit scale (255
// spans the full range regardless of the clip's depth). A single value is
// broadened to all planes. A threshold of 0 passes the source through for
// that plane; a threshold of 255 or more keeps the filtered plane
// unconditionally. The default is 0.6.
func WithThresholds(thr ...float64) Option {
	return func(cfg *config) error {
		if len(thr) == 0 {
			return fmt.Errorf("limit: thresholds need at least one value: %w", graph.ErrBadArgument)
		}
		for _, t := range thr {
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return fmt.Errorf("limit: threshold must be finite: %g", t)
			}
		}
		cfg.thr = append([]float64(nil), thr...)
		return nil
	}
}

// WithBrightThresholds sets separate thresholds for positive deviation
// (filtered brighter than source), in 8-bit scale. The default is the
// regular thresholds.
func WithBrightThresholds(thr ...float64) Option {
	return func(cfg *config) error {
		if len(thr) == 0 {
			return fmt.Errorf("limit: bright thresholds need at least one value: %w", graph.ErrBadArgument)
		}
		for _, t := range thr {
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return fmt.Errorf("limit: bright threshold must be finite: %g", t)
			}
		}
		cfg.brightThr = append([]float64(nil), thr...)
		return nil
	}
}

// WithElasticity sets the soft falloff ratio: deviations between thr and
// thr*elast blend linearly from the filtered value back to the source.
// Range: [1, 32]; 1 gives a hard threshold. The default is 3.
func WithElasticity(elast float64) Option {
	return func(cfg *config) error {
		if elast < 1 || elast > maxElasticity || math.IsNaN(elast) {
			return fmt.Errorf("limit: elasticity must be in [1, %g]: %g", maxElasticity, elast)
		}
		cfg.elast = elast
		return nil
	}
}

// Filter limits flt against src plane by plane:
//
//	d = |flt - ref|          (ref defaults to src)
//	d <= thr                 keep flt
//	d >= thr*elast           revert to src
//	otherwise                src + (flt-src) * (thr*elast - d) / (thr*elast - thr)
//
// Thresholds are in 8-bit scale and scale with the clip's depth. When every
// plane degenerates to one of the inputs the corresponding clip is returned
// directly without creating a node.
func Filter(flt, src graph.Clip, opts ...Option) (graph.Clip, error) {
	if err := graph.CheckCompatible(flt, src, "limit: filter"); err != nil {
		return graph.Clip{}, err
	}

	cfg := defaultLimitConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}

	hasRef := !cfg.ref.IsZero()
	if hasRef {
		if err := graph.CheckCompatible(flt, cfg.ref, "limit: filter"); err != nil {
			return graph.Clip{}, err
		}
	}
	if cfg.brightThr == nil {
		cfg.brightThr = cfg.thr
	}

	format := flt.Format()
	nPlanes := format.NumPlanes()
	thr, err := graph.NormalizeSeq(cfg.thr, nPlanes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("limit: filter: %w", err)
	}
	brightThr, err := graph.NormalizeSeq(cfg.brightThr, nPlanes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("limit: filter: %w", err)
	}

	valueRange := 1.0
	if format.Sample == graph.SampleInteger {
		valueRange = float64(int64(1)<<format.Bits - 1)
	}

	exprs := make([]string, nPlanes)
	allSrc, allFlt := true, true
	for p := 0; p < nPlanes; p++ {
		e := planeExpr(thr[p]*valueRange/255, brightThr[p]*valueRange/255, cfg.elast, valueRange, hasRef)
		exprs[p] = e
		if e != "y" {
			allSrc = false
		}
		if e != "" {
			allFlt = false
		}
	}
	if allSrc {
		return src, nil
	}
	if allFlt {
		return flt, nil
	}

	clips := []graph.Clip{flt, src}
	if hasRef {
		clips = append(clips, cfg.ref)
	}
	out, err := std.Expr(clips, exprs...)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("limit: filter: %w", err)
	}
	return out, nil
}

// planeExpr builds the limiting expression for one plane with thresholds
// already scaled to the clip's value range. Inputs are x=flt, y=src and,
// when hasRef, z=ref.
func planeExpr(thr, brightThr, elast, valueRange float64, hasRef bool) string {
	switch {
	case thr <= 0 && brightThr <= 0:
		return "y"
	case thr >= valueRange && brightThr >= valueRange:
		return ""
	}

	dark := branchExpr(thr, elast, valueRange, hasRef)
	if brightThr == thr {
		return dark
	}
	bright := branchExpr(brightThr, elast, valueRange, hasRef)
	return "x y > " + bright + " " + dark + " ?"
}

func branchExpr(thr, elast, valueRange float64, hasRef bool) string {
	difAbs := "x y - abs"
	if hasRef {
		difAbs = "x z - abs"
	}
	switch {
	case thr <= 0:
		return "y"
	case thr >= valueRange:
		return "x"
	case elast <= 1:
		return fmt.Sprintf("%s %s <= x y ?", difAbs, num(thr))
	}

	thrMax := thr * elast
	slope := 1 / (thrMax - thr)
	var b strings.Builder
	b.WriteString(difAbs)
	b.WriteString(" ")
	b.WriteString(num(thr))
	b.WriteString(" <= x ")
	b.WriteString(difAbs)
	b.WriteString(" ")
	b.WriteString(num(thrMax))
	b.WriteString(" >= y y x y - ")
	b.WriteString(num(thrMax))
	b.WriteString(" ")
	b.WriteString(difAbs)
	b.WriteString(" - * ")
	b.WriteString(num(slope))
	b.WriteString(" * + ? ?")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
