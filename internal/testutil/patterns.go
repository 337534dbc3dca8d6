package testutil

import (
	"math/rand"
)

// Flat returns a width*height plane filled with value.
func Flat(width, height int, value float64) []float64 {
	out := make([]float64, width*height)
	for i := range out {
		out[i] = value
	}
	return out
}

// SmoothRamp returns a horizontal gradient from lo at the left edge to hi at
// the right edge, identical on every row.
func SmoothRamp(width, height int, lo, hi float64) []float64 {
	out := make([]float64, width*height)
	row := make([]float64, width)
	for x := range row {
		t := 0.0
		if width > 1 {
			t = float64(x) / float64(width-1)
		}
		row[x] = lo + (hi-lo)*t
	}
	for y := 0; y < height; y++ {
		copy(out[y*width:(y+1)*width], row)
	}
	return out
}

// BandedRamp returns a horizontal gradient quantized to steps distinct
// levels, the classic banding test pattern: flat plateaus separated by
// abrupt jumps. The first plateau is exactly lo, the last exactly hi.
func BandedRamp(width, height int, lo, hi float64, steps int) []float64 {
	if steps < 2 {
		return Flat(width, height, lo)
	}
	out := make([]float64, width*height)
	row := make([]float64, width)
	for x := range row {
		t := 0.0
		if width > 1 {
			t = float64(x) / float64(width-1)
		}
		idx := int(t * float64(steps))
		if idx >= steps {
			idx = steps - 1
		}
		row[x] = lo + (hi-lo)*float64(idx)/float64(steps-1)
	}
	for y := 0; y < height; y++ {
		copy(out[y*width:(y+1)*width], row)
	}
	return out
}

// Noise returns a plane of uniform noise in [-amplitude, amplitude] with a
// fixed seed for reproducibility.
func Noise(seed int64, amplitude float64, width, height int) []float64 {
	out := make([]float64, width*height)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse returns a zero plane with a single 1.0 at (x, y). Out-of-bounds
// positions yield an all-zero plane.
func Impulse(width, height, x, y int) []float64 {
	out := make([]float64, width*height)
	if x >= 0 && x < width && y >= 0 && y < height {
		out[y*width+x] = 1
	}
	return out
}
