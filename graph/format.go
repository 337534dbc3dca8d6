package graph

import (
	"fmt"
)

// ColorFamily identifies the color model of a clip format.
type ColorFamily int

const (
	FamilyUndefined ColorFamily = iota
	FamilyGray
	FamilyYUV
	FamilyRGB
)

// String returns the family name.
func (cf ColorFamily) String() string {
	switch cf {
	case FamilyGray:
		return "Gray"
	case FamilyYUV:
		return "YUV"
	case FamilyRGB:
		return "RGB"
	default:
		return "Undefined"
	}
}

// SampleType distinguishes integer and floating point pixel storage.
type SampleType int

const (
	SampleInteger SampleType = iota
	SampleFloat
)

// String returns the sample type name.
func (st SampleType) String() string {
	if st == SampleFloat {
		return "Float"
	}
	return "Integer"
}

// ColorRange describes the nominal value range of integer pixel data.
// Limited range reserves headroom and footroom (16-235 luma, 16-240 chroma
// at 8 bits); full range uses the whole code space.
type ColorRange int

const (
	RangeLimited ColorRange = iota
	RangeFull
)

// String returns the range name.
func (cr ColorRange) String() string {
	if cr == RangeFull {
		return "Full"
	}
	return "Limited"
}

// Format describes how pixels of a clip are stored: color family, sample
// type, bit depth and chroma subsampling. SubW and SubH are log2 horizontal
// and vertical subsampling factors and are only meaningful for YUV.
//
// The zero Format means the clip has no statically known format (variable
// format). Filters in this module require fixed formats and reject variable
// clips at construction time.
type Format struct {
	Family ColorFamily
	Sample SampleType
	Bits   int
	SubW   int
	SubH   int
}

// Predefined formats. The names follow the usual video conventions:
// a trailing S marks single precision float storage, RGB names carry the
// total bit count across the three planes.
var (
	Gray8  = Format{Family: FamilyGray, Sample: SampleInteger, Bits: 8}
	Gray10 = Format{Family: FamilyGray, Sample: SampleInteger, Bits: 10}
	Gray16 = Format{Family: FamilyGray, Sample: SampleInteger, Bits: 16}
	GrayS  = Format{Family: FamilyGray, Sample: SampleFloat, Bits: 32}

	YUV420P8  = Format{Family: FamilyYUV, Sample: SampleInteger, Bits: 8, SubW: 1, SubH: 1}
	YUV420P10 = Format{Family: FamilyYUV, Sample: SampleInteger, Bits: 10, SubW: 1, SubH: 1}
	YUV420P16 = Format{Family: FamilyYUV, Sample: SampleInteger, Bits: 16, SubW: 1, SubH: 1}
	YUV422P8  = Format{Family: FamilyYUV, Sample: SampleInteger, Bits: 8, SubW: 1}
	YUV444P8  = Format{Family: FamilyYUV, Sample: SampleInteger, Bits: 8}
	YUV444P16 = Format{Family: FamilyYUV, Sample: SampleInteger, Bits: 16}
	YUV444PS  = Format{Family: FamilyYUV, Sample: SampleFloat, Bits: 32}

	RGB24 = Format{Family: FamilyRGB, Sample: SampleInteger, Bits: 8}
	RGB48 = Format{Family: FamilyRGB, Sample: SampleInteger, Bits: 16}
	RGBS  = Format{Family: FamilyRGB, Sample: SampleFloat, Bits: 32}
)

// IsVariable reports whether the format is the zero value, meaning the clip
// carries no statically known format.
func (f Format) IsVariable() bool {
	return f == Format{}
}

// IsValid reports whether the format describes a representable pixel layout.
// The zero (variable) format is not valid.
func (f Format) IsValid() bool {
	if f.IsVariable() {
		return false
	}
	switch f.Family {
	case FamilyGray, FamilyRGB:
		if f.SubW != 0 || f.SubH != 0 {
			return false
		}
	case FamilyYUV:
		if f.SubW < 0 || f.SubW > 2 || f.SubH < 0 || f.SubH > 2 {
			return false
		}
	default:
		return false
	}
	switch f.Sample {
	case SampleInteger:
		return f.Bits >= 8 && f.Bits <= 32
	case SampleFloat:
		return f.Bits == 32
	default:
		return false
	}
}

// NumPlanes returns the plane count of the format: 1 for Gray, 3 otherwise,
// 0 for a variable format.
func (f Format) NumPlanes() int {
	switch f.Family {
	case FamilyGray:
		return 1
	case FamilyYUV, FamilyRGB:
		return 3
	default:
		return 0
	}
}

// PlaneDimensions returns the pixel dimensions of the given plane for a clip
// of the given size, accounting for chroma subsampling.
func (f Format) PlaneDimensions(plane, width, height int) (int, int) {
	if f.Family == FamilyYUV && plane > 0 {
		return width >> f.SubW, height >> f.SubH
	}
	return width, height
}

// NeutralValue returns the value representing "no difference" for difference
// compositing on the given plane: the mid-point of the code space for
// integer formats, 0 for float formats.
func (f Format) NeutralValue(plane int) float64 {
	if f.Sample == SampleFloat {
		return 0
	}
	return float64(int64(1) << (f.Bits - 1))
}

// PeakValue returns the largest representable value on the given plane:
// 2^bits-1 for integer formats, 1 for float luma and 0.5 for float chroma.
func (f Format) PeakValue(plane int) float64 {
	if f.Sample == SampleFloat {
		if f.Family == FamilyYUV && plane > 0 {
			return 0.5
		}
		return 1
	}
	return float64(int64(1)<<f.Bits - 1)
}

// ValueRange returns the representable value interval on the given plane.
// Integer planes span [0, 2^bits-1]. Float luma and RGB planes span [0, 1];
// float chroma planes are centered on zero and span [-0.5, 0.5].
func (f Format) ValueRange(plane int) (lo, hi float64) {
	if f.Sample == SampleFloat {
		if f.Family == FamilyYUV && plane > 0 {
			return -0.5, 0.5
		}
		return 0, 1
	}
	return 0, float64(int64(1)<<f.Bits - 1)
}

// IsChromaPlane reports whether the given plane index holds chroma data.
func (f Format) IsChromaPlane(plane int) bool {
	return f.Family == FamilyYUV && plane > 0
}

// DefaultRange returns the conventional color range for the format's family:
// limited for YUV, full for Gray and RGB.
func DefaultRange(f Format) ColorRange {
	if f.Family == FamilyYUV {
		return RangeLimited
	}
	return RangeFull
}

// WithBits returns a copy of the format at the given integer bit depth, or
// float storage when bits is 32 and the format was already float. Converting
// a float format to bits below 32 yields integer storage.
func (f Format) WithBits(bits int) Format {
	out := f
	out.Bits = bits
	if bits < 32 {
		out.Sample = SampleInteger
	}
	return out
}

// String renders the conventional format name, e.g. "YUV420P8", "GrayS",
// "RGB24". The zero format renders as "Variable".
func (f Format) String() string {
	if f.IsVariable() {
		return "Variable"
	}
	switch f.Family {
	case FamilyGray:
		if f.Sample == SampleFloat {
			return "GrayS"
		}
		return fmt.Sprintf("Gray%d", f.Bits)
	case FamilyRGB:
		if f.Sample == SampleFloat {
			return "RGBS"
		}
		return fmt.Sprintf("RGB%d", 3*f.Bits)
	case FamilyYUV:
		ss := subsamplingName(f.SubW, f.SubH)
		if f.Sample == SampleFloat {
			return fmt.Sprintf("YUV%sPS", ss)
		}
		return fmt.Sprintf("YUV%sP%d", ss, f.Bits)
	default:
		return fmt.Sprintf("Format(%d,%d,%d,%d,%d)", f.Family, f.Sample, f.Bits, f.SubW, f.SubH)
	}
}

func subsamplingName(subW, subH int) string {
	switch [2]int{subW, subH} {
	case [2]int{0, 0}:
		return "444"
	case [2]int{1, 0}:
		return "422"
	case [2]int{1, 1}:
		return "420"
	case [2]int{2, 0}:
		return "411"
	case [2]int{2, 2}:
		return "410"
	case [2]int{0, 1}:
		return "440"
	default:
		return fmt.Sprintf("ss%dx%d", subW, subH)
	}
}
