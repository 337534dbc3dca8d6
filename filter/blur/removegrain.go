package blur

import (
	"fmt"

	"github.com/cwbudde/algo-deband/graph"
)

// OpRemoveGrain is the op name of RemoveGrain nodes.
const OpRemoveGrain = "rgvs.RemoveGrain"

// RGMode selects a RemoveGrain cleaning rule. The numeric values match the
// classic mode numbers; only the modes used by the debanding pipelines are
// supported.
type RGMode int

const (
	// RGCopy leaves the plane unchanged.
	RGCopy RGMode = 0
	// RGClamp clips each pixel to the min/max of its 8 neighbours.
	RGClamp RGMode = 1
	// RGMedian replaces each pixel with the median of its 3x3 neighbourhood.
	RGMedian RGMode = 4
	// RGBinomialBlur applies the [1 2 1; 2 4 2; 1 2 1]/16 kernel.
	RGBinomialBlur RGMode = 11
	// RGBinomialBlur12 is identical to RGBinomialBlur (kept for mode-number
	// compatibility).
	RGBinomialBlur12 RGMode = 12
	// RGOppositeClamp clips using the extrema of opposite neighbour pairs.
	RGOppositeClamp RGMode = 17
	// RGLineClip clips to the opposite pair closest to the pixel.
	RGLineClip RGMode = 18
	// RGMeanNoCenter replaces each pixel with the mean of its 8 neighbours.
	RGMeanNoCenter RGMode = 19
	// RGMean replaces each pixel with the mean of the 3x3 neighbourhood.
	RGMean RGMode = 20
	// RGPairClipTrunc clips to the smallest and largest opposite pair means.
	RGPairClipTrunc RGMode = 21
	// RGPairClipRound is the rounding variant of RGPairClipTrunc; on float
	// pipelines both are identical.
	RGPairClipRound RGMode = 22
)

var rgModeNames = map[RGMode]string{
	RGCopy:           "Copy",
	RGClamp:          "Clamp",
	RGMedian:         "Median",
	RGBinomialBlur:   "BinomialBlur",
	RGBinomialBlur12: "BinomialBlur12",
	RGOppositeClamp:  "OppositeClamp",
	RGLineClip:       "LineClip",
	RGMeanNoCenter:   "MeanNoCenter",
	RGMean:           "Mean",
	RGPairClipTrunc:  "PairClipTrunc",
	RGPairClipRound:  "PairClipRound",
}

// String returns the mode name.
func (m RGMode) String() string {
	if name, ok := rgModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("RGMode(%d)", int(m))
}

// Valid reports whether m is a supported mode.
func (m RGMode) Valid() bool {
	_, ok := rgModeNames[m]
	return ok
}

// RemoveGrain applies a 3x3 cleaning rule per plane. One mode per plane; a
// single mode is broadened to all planes. The debanding pipelines use it to
// smooth binarized detail masks (modes 22, 19, 18).
func RemoveGrain(clip graph.Clip, modes ...RGMode) (graph.Clip, error) {
	if err := graph.CheckFixed(clip, "blur: remove grain"); err != nil {
		return graph.Clip{}, err
	}
	if len(modes) == 0 {
		return graph.Clip{}, fmt.Errorf("blur: remove grain: no modes given: %w", graph.ErrBadArgument)
	}
	for _, m := range modes {
		if !m.Valid() {
			return graph.Clip{}, fmt.Errorf("blur: remove grain: unsupported mode %d: %w",
				int(m), graph.ErrBadArgument)
		}
	}

	normalized, err := graph.NormalizeSeq(modes, clip.Format().NumPlanes())
	if err != nil {
		return graph.Clip{}, fmt.Errorf("blur: remove grain: %w", err)
	}
	modeInts := make([]int, len(normalized))
	for i, m := range normalized {
		modeInts[i] = int(m)
	}

	return clip.Invoke(OpRemoveGrain, graph.Args{"mode": modeInts})
}
