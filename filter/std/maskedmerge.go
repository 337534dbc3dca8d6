package std

import (
	"fmt"

	"github.com/cwbudde/algo-deband/graph"
)

// MaskedMergeOption mutates masked merge parameters.
type MaskedMergeOption func(*maskedMergeConfig) error

type maskedMergeConfig struct {
	planes []int
}

// WithMaskedMergePlanes selects the planes to process.
func WithMaskedMergePlanes(planes ...int) MaskedMergeOption {
	return func(cfg *maskedMergeConfig) error {
		cfg.planes = append([]int(nil), planes...)
		return nil
	}
}

// MaskedMerge blends b over a weighted by mask: peak-valued mask pixels take
// b, zero mask pixels keep a. The mask must either match a's format exactly
// or be a single-plane clip of the same dimensions, sample type and bit
// depth, in which case its only plane drives every selected plane (chroma
// planes read the mask at subsampled coordinates).
func MaskedMerge(a, b, mask graph.Clip, opts ...MaskedMergeOption) (graph.Clip, error) {
	const name = "std: masked merge"
	if err := graph.CheckCompatible(a, b, name); err != nil {
		return graph.Clip{}, err
	}
	if err := graph.CheckFixed(mask, name); err != nil {
		return graph.Clip{}, err
	}
	if mask.Graph() != a.Graph() {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, graph.ErrGraphMismatch)
	}

	firstPlane := false
	mf, af := mask.Format(), a.Format()
	switch {
	case mf == af:
	case mf.NumPlanes() == 1 && mf.Sample == af.Sample && mf.Bits == af.Bits:
		firstPlane = true
	default:
		return graph.Clip{}, fmt.Errorf("%s: mask format %s does not fit clip format %s: %w",
			name, mf, af, graph.ErrFormatMismatch)
	}
	if mask.Width() != a.Width() || mask.Height() != a.Height() {
		return graph.Clip{}, fmt.Errorf("%s: mask is %dx%d, clip is %dx%d: %w",
			name, mask.Width(), mask.Height(), a.Width(), a.Height(), graph.ErrDimensionMismatch)
	}

	var cfg maskedMergeConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}
	planes, err := graph.NormalizePlanes(af, cfg.planes)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	return a.Invoke(OpMaskedMerge, graph.Args{
		"planes":      planes,
		"first_plane": firstPlane,
	}, b, mask)
}
