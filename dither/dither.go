package dither

import "fmt"

// Mode selects the dithering strategy used when quantizing plane values to
// integer code space.
type Mode int

const (
	// ModeNone rounds to the nearest code value (no dither).
	ModeNone Mode = iota
	// ModeOrdered uses an 8x8 Bayer threshold matrix.
	ModeOrdered
	// ModeRandom adds triangular (TPDF) noise before rounding.
	ModeRandom
	// ModeErrorDiffusion applies Floyd-Steinberg error diffusion.
	ModeErrorDiffusion

	modeCount // sentinel for validation
)

var modeNames = [modeCount]string{
	"None", "Ordered", "Random", "ErrorDiffusion",
}

// String returns the mode name.
func (m Mode) String() string {
	if m >= 0 && m < modeCount {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= 0 && m < modeCount
}
