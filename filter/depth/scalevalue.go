package depth

import (
	"fmt"

	"github.com/cwbudde/algo-deband/graph"
)

// ScaleOption mutates value scaling parameters.
type ScaleOption func(*scaleValueConfig) error

type scaleValueConfig struct {
	rangeIn     graph.ColorRange
	rangeOut    graph.ColorRange
	hasRangeOut bool
	chroma      bool
	offsets     bool
}

// WithRangeIn sets the color range the input value is expressed in.
// The default is limited.
func WithRangeIn(r graph.ColorRange) ScaleOption {
	return func(cfg *scaleValueConfig) error {
		if r != graph.RangeLimited && r != graph.RangeFull {
			return fmt.Errorf("depth: invalid color range: %d", int(r))
		}
		cfg.rangeIn = r
		return nil
	}
}

// WithRangeOut sets the color range of the output value. The default is the
// input range.
func WithRangeOut(r graph.ColorRange) ScaleOption {
	return func(cfg *scaleValueConfig) error {
		if r != graph.RangeLimited && r != graph.RangeFull {
			return fmt.Errorf("depth: invalid color range: %d", int(r))
		}
		cfg.rangeOut = r
		cfg.hasRangeOut = true
		return nil
	}
}

// WithChroma scales the value on the chroma scale (different limited-range
// peak, zero-centered float).
func WithChroma(chroma bool) ScaleOption {
	return func(cfg *scaleValueConfig) error {
		cfg.chroma = chroma
		return nil
	}
}

// WithOffsets additionally translates the representation offsets (the
// limited-range footroom and the integer chroma center) instead of scaling
// raw magnitudes.
func WithOffsets(enabled bool) ScaleOption {
	return func(cfg *scaleValueConfig) error {
		cfg.offsets = enabled
		return nil
	}
}

// ScaleValue rescales a value between bit depths. Depth 32 means float
// scale (peak 1); integer depths use the full-range peak 2^bits-1 or the
// limited-range peaks 235 and 240 (luma/chroma) shifted to the depth. By
// default only magnitudes are scaled; WithOffsets also moves the
// representation offsets.
//
// Thresholds given "in 8-bit scale" convert to a clip's depth as
// ScaleValue(thr, 8, bits) with the ranges defaulted to the clip's.
func ScaleValue(value float64, fromBits, toBits int, opts ...ScaleOption) (float64, error) {
	if fromBits < 8 || fromBits > 32 {
		return 0, fmt.Errorf("depth: scale value: source bits must be in [8, 32]: %d: %w",
			fromBits, graph.ErrBadArgument)
	}
	if toBits < 8 || toBits > 32 {
		return 0, fmt.Errorf("depth: scale value: target bits must be in [8, 32]: %d: %w",
			toBits, graph.ErrBadArgument)
	}

	cfg := scaleValueConfig{rangeIn: graph.RangeLimited}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return 0, err
		}
	}
	if !cfg.hasRangeOut {
		cfg.rangeOut = cfg.rangeIn
	}

	if fromBits == toBits && cfg.rangeIn == cfg.rangeOut {
		return value, nil
	}

	out := value
	if cfg.offsets {
		out -= rangeOffset(fromBits, cfg.rangeIn, cfg.chroma)
	}
	out *= peakValue(toBits, cfg.rangeOut, cfg.chroma) / peakValue(fromBits, cfg.rangeIn, cfg.chroma)
	if cfg.offsets {
		out += rangeOffset(toBits, cfg.rangeOut, cfg.chroma)
	}
	return out, nil
}

// peakValue returns the nominal peak for the depth: 1 for float, 2^bits-1
// for full range, 235/240 shifted to the depth for limited range.
func peakValue(bits int, r graph.ColorRange, chroma bool) float64 {
	if bits == 32 {
		return 1
	}
	if r == graph.RangeFull {
		return float64(int64(1)<<bits - 1)
	}
	peak8 := int64(235)
	if chroma {
		peak8 = 240
	}
	return float64(peak8 << (bits - 8))
}

// rangeOffset returns the representation offset for the depth: the chroma
// center for integer storage, the limited-range footroom for luma.
func rangeOffset(bits int, r graph.ColorRange, chroma bool) float64 {
	if bits == 32 {
		return 0
	}
	if chroma {
		return float64(int64(1) << (bits - 1))
	}
	if r == graph.RangeLimited {
		return float64(int64(16) << (bits - 8))
	}
	return 0
}
