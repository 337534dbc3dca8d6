package engine

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-deband/graph"
)

// opRemoveGrain applies the classic 3x3 cleaning rules. Border pixels are
// copied unprocessed, matching the reference behavior of the plugin family
// the op name comes from.
func opRemoveGrain(req Request) (*graph.Frame, error) {
	if len(req.Inputs) != 1 {
		return nil, errors.New("remove grain: want one input")
	}
	modes := req.Clip.Args().Ints("mode")
	if len(modes) == 0 {
		return nil, errors.New("remove grain: no modes")
	}
	src := req.Inputs[0]

	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, dst := range out.Planes {
		sp := src.Planes[p]
		copy(dst, sp)

		mode := modes[len(modes)-1]
		if p < len(modes) {
			mode = modes[p]
		}
		pw, ph := out.PlaneDims(p)
		if mode == 0 || pw < 3 || ph < 3 {
			continue
		}
		for y := 1; y < ph-1; y++ {
			for x := 1; x < pw-1; x++ {
				i := y*pw + x
				n := [8]float64{
					sp[i-pw-1], sp[i-pw], sp[i-pw+1],
					sp[i-1], sp[i+1],
					sp[i+pw-1], sp[i+pw], sp[i+pw+1],
				}
				dst[i] = rgPixel(mode, sp[i], n)
			}
		}
	}
	return out, nil
}

// rgPixel evaluates one cleaning rule. Neighbours are ordered top-left to
// bottom-right; opposite pairs are (0,7), (1,6), (2,5), (3,4).
func rgPixel(mode int, c float64, n [8]float64) float64 {
	switch mode {
	case 1:
		lo, hi := n[0], n[0]
		for _, v := range n[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		return clampF(c, lo, hi)
	case 4:
		return median9(c, n)
	case 11, 12:
		return (4*c + 2*(n[1]+n[3]+n[4]+n[6]) + n[0] + n[2] + n[5] + n[7]) / 16
	case 17:
		lower := pairFold(n, math.Min, math.Max)
		upper := pairFold(n, math.Max, math.Min)
		return clampF(c, math.Min(lower, upper), math.Max(lower, upper))
	case 18:
		best, lo, hi := math.Inf(1), c, c
		for k := 0; k < 4; k++ {
			p1, p2 := n[k], n[7-k]
			d := math.Max(math.Abs(c-p1), math.Abs(c-p2))
			if d < best {
				best = d
				lo, hi = math.Min(p1, p2), math.Max(p1, p2)
			}
		}
		return clampF(c, lo, hi)
	case 19:
		sum := 0.0
		for _, v := range n {
			sum += v
		}
		return sum / 8
	case 20:
		sum := c
		for _, v := range n {
			sum += v
		}
		return sum / 9
	case 21, 22:
		lo, hi := math.Inf(1), math.Inf(-1)
		for k := 0; k < 4; k++ {
			avg := (n[k] + n[7-k]) / 2
			lo = math.Min(lo, avg)
			hi = math.Max(hi, avg)
		}
		return clampF(c, lo, hi)
	default:
		return c
	}
}

// pairFold reduces each opposite neighbour pair with within and folds the
// four results with across.
func pairFold(n [8]float64, within, across func(float64, float64) float64) float64 {
	out := within(n[0], n[7])
	for k := 1; k < 4; k++ {
		out = across(out, within(n[k], n[7-k]))
	}
	return out
}

func median9(c float64, n [8]float64) float64 {
	v := [9]float64{c, n[0], n[1], n[2], n[3], n[4], n[5], n[6], n[7]}
	for i := 1; i < len(v); i++ {
		x := v[i]
		j := i - 1
		for j >= 0 && v[j] > x {
			v[j+1] = v[j]
			j--
		}
		v[j+1] = x
	}
	return v[4]
}
