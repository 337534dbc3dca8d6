// Package dither quantizes continuous plane values to integer code space
// with optional dithering. It is the depth-reduction backend of the
// reference executor; the resize and depth filter packages only carry the
// selected [Mode] through the graph.
package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// bayer8 is the classic 8x8 ordered dither index matrix.
var bayer8 = [8][8]int{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// Quantizer rounds continuous plane values to integer code values using the
// configured dither mode and clamps them to a code range. Instances are not
// safe for concurrent use; create one per goroutine.
type Quantizer struct {
	mode      Mode
	amplitude float64
	rng       *rand.Rand

	// Error-diffusion row buffers, grown on demand.
	errCur  []float64
	errNext []float64
}

// NewQuantizer creates a quantizer for the given mode.
func NewQuantizer(mode Mode, opts ...Option) (*Quantizer, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("dither: invalid mode: %d", int(mode))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		mode:      mode,
		amplitude: cfg.amplitude,
	}
	if cfg.hasSeed {
		q.rng = rand.New(rand.NewPCG(cfg.seed, 0x9e3779b97f4a7c15))
	} else {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return q, nil
}

// Mode returns the dither mode.
func (q *Quantizer) Mode() Mode { return q.mode }

// Amplitude returns the random noise amplitude in quantization steps.
func (q *Quantizer) Amplitude() float64 { return q.amplitude }

// QuantizePlane rounds src into dst, clamping results to [lo, hi]. The
// slices must both hold width*height row-major values; dst may alias src.
func (q *Quantizer) QuantizePlane(dst, src []float64, width, height int, lo, hi float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("dither: plane dimensions must be positive: %dx%d", width, height)
	}
	if len(src) != width*height || len(dst) != width*height {
		return fmt.Errorf("dither: plane size mismatch: src=%d dst=%d want=%d",
			len(src), len(dst), width*height)
	}
	if hi < lo {
		return fmt.Errorf("dither: empty code range [%g, %g]", lo, hi)
	}

	switch q.mode {
	case ModeOrdered:
		q.quantizeOrdered(dst, src, width, height, lo, hi)
	case ModeRandom:
		q.quantizeRandom(dst, src, lo, hi)
	case ModeErrorDiffusion:
		q.quantizeErrorDiffusion(dst, src, width, height, lo, hi)
	default:
		for i, v := range src {
			dst[i] = clamp(math.Round(v), lo, hi)
		}
	}
	return nil
}

func (q *Quantizer) quantizeOrdered(dst, src []float64, width, height int, lo, hi float64) {
	for y := 0; y < height; y++ {
		row := src[y*width : (y+1)*width]
		out := dst[y*width : (y+1)*width]
		for x, v := range row {
			// floor(v + bayer01) reproduces the fractional part as a
			// spatial pattern without bias.
			b := (float64(bayer8[y&7][x&7]) + 0.5) / 64
			out[x] = clamp(math.Floor(v+b), lo, hi)
		}
	}
}

func (q *Quantizer) quantizeRandom(dst, src []float64, lo, hi float64) {
	for i, v := range src {
		noise := q.amplitude * (q.rng.Float64() - q.rng.Float64())
		dst[i] = clamp(math.Round(v+noise), lo, hi)
	}
}

func (q *Quantizer) quantizeErrorDiffusion(dst, src []float64, width, height int, lo, hi float64) {
	if cap(q.errCur) < width+2 {
		q.errCur = make([]float64, width+2)
		q.errNext = make([]float64, width+2)
	}
	cur := q.errCur[:width+2]
	next := q.errNext[:width+2]
	for i := range cur {
		cur[i] = 0
		next[i] = 0
	}

	for y := 0; y < height; y++ {
		row := src[y*width : (y+1)*width]
		out := dst[y*width : (y+1)*width]
		for x, v := range row {
			// Error buffers are offset by one so x-1 never underflows.
			want := v + cur[x+1]
			got := clamp(math.Round(want), lo, hi)
			out[x] = got

			e := want - got
			cur[x+2] += e * 7 / 16
			next[x] += e * 3 / 16
			next[x+1] += e * 5 / 16
			next[x+2] += e * 1 / 16
		}
		cur, next = next, cur
		for i := range next {
			next[i] = 0
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
