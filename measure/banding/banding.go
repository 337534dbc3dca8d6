// Package banding quantifies banding artifacts in a rendered frame. The
// analysis works on the horizontal step profile of one plane: the mean
// absolute column-to-column difference, averaged over all rows. Banding
// shows up in that profile as long near-zero plateaus separated by sharp
// spikes; smooth gradients and textured content spread the same mass evenly
// across columns.
package banding

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-deband/graph"
)

const (
	defaultMinRunLength  = 8
	defaultLowBandCutoff = 0.25

	// Auto flat threshold: three quarters of an 8-bit step in the plane's
	// own scale. A genuine banding jump is at least one full step; smooth
	// gradients on frames of reasonable width stay well below it.
	autoThresholdStep = 0.75
)

// Config holds banding analysis parameters. The zero value selects plane 0
// with automatic thresholds.
type Config struct {
	// Plane is the plane index to analyze.
	Plane int
	// FlatThreshold is the column difference (in the frame's own scale)
	// above which a column counts as a step edge. Zero or negative derives
	// it from the frame format.
	FlatThreshold float64
	// MinRunLength is the shortest edge-free run counted as a plateau.
	// Zero or negative selects 8.
	MinRunLength int
	// LowBandCutoff is the fraction of the profile spectrum's Nyquist bin
	// below which energy counts as low-band. Zero or negative selects 0.25.
	LowBandCutoff float64
	// FFTSize overrides the profile FFT length. Zero or negative rounds
	// the profile length up to the next power of two.
	FFTSize int
}

// Result holds banding measurement results.
type Result struct {
	// PlateauRatio is the fraction of profile columns lying in edge-free
	// runs of at least MinRunLength columns.
	PlateauRatio float64
	// MeanRunLength is the average length of the edge-free runs.
	MeanRunLength float64
	// StepDensity is the fraction of profile columns classified as edges.
	StepDensity float64
	// LowBandRatio is the share of the profile spectrum's energy (DC
	// excluded) below the configured cutoff.
	LowBandRatio float64
	// BandingScore combines step mass share and plateau coverage into
	// [0, 1]; 0 means no detectable banding.
	BandingScore float64
}

// Calculator performs banding analysis on frame planes.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with normalized configuration.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: normalizeConfig(cfg)}
}

// Analyze is a one-shot banding analysis of one frame.
func Analyze(frame *graph.Frame, cfg Config) (Result, error) {
	return NewCalculator(cfg).Analyze(frame)
}

// Analyze measures banding on the configured plane of the frame.
func (c *Calculator) Analyze(frame *graph.Frame) (Result, error) {
	if frame == nil {
		return Result{}, fmt.Errorf("banding: nil frame: %w", graph.ErrBadArgument)
	}
	if c.cfg.Plane < 0 || c.cfg.Plane >= len(frame.Planes) {
		return Result{}, fmt.Errorf("banding: plane %d of %d: %w",
			c.cfg.Plane, len(frame.Planes), graph.ErrPlaneIndex)
	}

	pw, ph := frame.PlaneDims(c.cfg.Plane)
	if pw < 2 {
		return Result{}, fmt.Errorf("banding: plane %d is %d columns wide, need at least 2: %w",
			c.cfg.Plane, pw, graph.ErrBadArgument)
	}

	profile := stepProfile(frame.Planes[c.cfg.Plane], pw, ph)

	thr := c.cfg.FlatThreshold
	if thr <= 0 {
		thr = autoFlatThreshold(frame.Format, c.cfg.Plane)
	}
	return c.AnalyzeProfile(profile, thr), nil
}

// AnalyzeProfile measures banding on a precomputed step profile with the
// given edge threshold. It is the deterministic core behind Analyze and is
// exported for callers that build profiles themselves.
func (c *Calculator) AnalyzeProfile(profile []float64, flatThreshold float64) Result {
	if len(profile) == 0 || flatThreshold <= 0 {
		return Result{}
	}

	var (
		stepMass  float64
		totalMass float64
		edges     int
	)
	runs := make([]int, 0, 16)
	run := 0
	for _, d := range profile {
		totalMass += d
		if d > flatThreshold {
			stepMass += d
			edges++
			if run > 0 {
				runs = append(runs, run)
				run = 0
			}
			continue
		}
		run++
	}
	if run > 0 {
		runs = append(runs, run)
	}

	res := Result{
		StepDensity:  float64(edges) / float64(len(profile)),
		LowBandRatio: c.lowBandRatio(profile),
	}

	plateauCols := 0
	runTotal := 0
	for _, r := range runs {
		runTotal += r
		if r >= c.cfg.MinRunLength {
			plateauCols += r
		}
	}
	res.PlateauRatio = float64(plateauCols) / float64(len(profile))
	if len(runs) > 0 {
		res.MeanRunLength = float64(runTotal) / float64(len(runs))
	}

	if totalMass > 0 {
		res.BandingScore = stepMass / totalMass * res.PlateauRatio
	}
	return res
}

// stepProfile returns the mean absolute horizontal difference per column
// transition, averaged over all rows.
func stepProfile(plane []float64, pw, ph int) []float64 {
	profile := make([]float64, pw-1)
	for y := 0; y < ph; y++ {
		row := plane[y*pw : (y+1)*pw]
		for x := range profile {
			profile[x] += math.Abs(row[x+1] - row[x])
		}
	}
	scale := 1.0 / float64(ph)
	for x := range profile {
		profile[x] *= scale
	}
	return profile
}

// lowBandRatio reports the energy share of the mean-removed profile
// spectrum below the cutoff. A flat or empty profile yields zero.
func (c *Calculator) lowBandRatio(profile []float64) float64 {
	n := c.cfg.FFTSize
	if n <= 0 {
		n = nextPowerOf2(len(profile))
	}
	if n < 4 || n < len(profile) {
		return 0
	}

	mean := 0.0
	for _, d := range profile {
		mean += d
	}
	mean /= float64(len(profile))

	in := make([]complex128, n)
	for i, d := range profile {
		in[i] = complex(d-mean, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return 0
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return 0
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := 0; i < bins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	cutoff := clampInt(int(math.Round(c.cfg.LowBandCutoff*float64(bins-1))), 1, bins-1)

	low := 0.0
	total := 0.0
	for i := 1; i < bins; i++ {
		total += mag[i]
		if i <= cutoff {
			low += mag[i]
		}
	}
	if total <= 0 {
		return 0
	}
	return low / total
}

// autoFlatThreshold derives the edge threshold from the plane's value range.
func autoFlatThreshold(format graph.Format, plane int) float64 {
	lo, hi := format.ValueRange(plane)
	return autoThresholdStep * (hi - lo) / 255
}

func normalizeConfig(cfg Config) Config {
	if cfg.MinRunLength <= 0 {
		cfg.MinRunLength = defaultMinRunLength
	}
	if cfg.LowBandCutoff <= 0 || cfg.LowBandCutoff > 1 {
		cfg.LowBandCutoff = defaultLowBandCutoff
	}
	if cfg.FFTSize < 0 {
		cfg.FFTSize = 0
	}
	return cfg
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
