package engine

import "github.com/cwbudde/algo-deband/graph"

// newFrame allocates the output frame for a node.
func newFrame(clip graph.Clip) (*graph.Frame, error) {
	return graph.NewFrame(clip.Format(), clip.Width(), clip.Height())
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mirrorIndex reflects an out-of-range index back into [0, n) without
// repeating the edge sample. Indices further out than one plane width
// keep bouncing until they land inside.
func mirrorIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// extendRow copies row into the middle of ext and fills radius samples of
// mirrored margin on both sides. ext must hold len(row)+2*radius values.
func extendRow(ext, row []float64, radius int) {
	w := len(row)
	copy(ext[radius:], row)
	for i := 0; i < radius; i++ {
		ext[radius-1-i] = row[mirrorIndex(i+1, w)]
		ext[radius+w+i] = row[mirrorIndex(w-2-i, w)]
	}
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
