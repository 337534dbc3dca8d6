package deband

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/graph"
)

// Params overrides a debander's configuration for a single call. The zero
// value keeps the debander's own defaults: Radius 0 means "use the
// configured radius" and nil slices mean "use the configured thresholds or
// grain". Non-nil slices are explicit, so Thresholds: []int{0} disables
// banding detection rather than falling back.
type Params struct {
	Radius     int
	Thresholds []int
	Grain      []int
}

// Debander is the capability the multi-stage recipes build on: one
// debanding pass and one grain-only pass.
type Debander interface {
	// Deband appends one debanding pass over clip.
	Deband(clip graph.Clip, p Params) (graph.Clip, error)
	// Grain adds grain without debanding. Empty or all-zero amounts return
	// the clip unchanged.
	Grain(clip graph.Clip, amount ...int) (graph.Clip, error)
}

func checkLimitThresholds(name string, thr []float64) error {
	if len(thr) == 0 {
		return fmt.Errorf("%s: limit thresholds need at least one value: %w", name, graph.ErrBadArgument)
	}
	for _, t := range thr {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%s: limit threshold must be finite: %g", name, t)
		}
	}
	return nil
}
