package graph

import "fmt"

// Frame holds decoded pixel data for one frame. Planes store rows
// contiguously (row-major, no padding) as float64 in the format's own scale:
// integer formats carry code values (0..2^bits-1 nominal), float formats
// carry nominal values ([0, 1] intensity, [-0.5, 0.5] chroma). Values are
// not required to be whole or in range between processing steps; executors
// quantize where their op semantics demand it.
type Frame struct {
	Format Format
	Width  int
	Height int
	Planes [][]float64
}

// NewFrame allocates a zeroed frame of the given format and size.
func NewFrame(format Format, width, height int) (*Frame, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("frame: invalid format %s: %w", format, ErrBadArgument)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame: dimensions must be positive: %dx%d: %w", width, height, ErrBadArgument)
	}
	if width>>format.SubW<<format.SubW != width || height>>format.SubH<<format.SubH != height {
		return nil, fmt.Errorf("frame: %dx%d not divisible by subsampling of %s: %w",
			width, height, format, ErrBadArgument)
	}
	f := &Frame{
		Format: format,
		Width:  width,
		Height: height,
		Planes: make([][]float64, format.NumPlanes()),
	}
	for p := range f.Planes {
		pw, ph := format.PlaneDimensions(p, width, height)
		f.Planes[p] = make([]float64, pw*ph)
	}
	return f, nil
}

// PlaneDims returns the pixel dimensions of the given plane.
func (f *Frame) PlaneDims(plane int) (int, int) {
	return f.Format.PlaneDimensions(plane, f.Width, f.Height)
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Format: f.Format,
		Width:  f.Width,
		Height: f.Height,
		Planes: make([][]float64, len(f.Planes)),
	}
	for p, src := range f.Planes {
		dst := make([]float64, len(src))
		copy(dst, src)
		out.Planes[p] = dst
	}
	return out
}
