package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-deband/dither"
	"github.com/cwbudde/algo-deband/filter/resize"
	"github.com/cwbudde/algo-deband/graph"
)

// opResample handles every resize.* op: separable kernel resampling in the
// source value scale, then range-based rescaling when the bit depth or
// sample type changes, then quantization for integer targets through the
// dither package.
func opResample(req Request) (*graph.Frame, error) {
	if len(req.Inputs) != 1 {
		return nil, errors.New("resample: want one input")
	}
	kernel, err := kernelForOp(req.Clip.Op(), req.Clip.Args())
	if err != nil {
		return nil, err
	}

	src := req.Inputs[0]
	target := req.Clip.Format()
	args := req.Clip.Args()
	colRange := graph.ColorRange(args.Int("range", int(graph.DefaultRange(target))))
	convert := src.Format.Sample != target.Sample || src.Format.Bits != target.Bits

	var quant *dither.Quantizer
	if target.Sample == graph.SampleInteger {
		mode := dither.Mode(args.Int("dither", int(dither.ModeNone)))
		if quant, err = dither.NewQuantizer(mode); err != nil {
			return nil, err
		}
	}

	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, dst := range out.Planes {
		spw, sph := src.PlaneDims(p)
		tpw, tph := out.PlaneDims(p)
		resamplePlane(dst, src.Planes[p], spw, sph, tpw, tph, kernel)

		if convert {
			for i := range dst {
				nominal := toNominal(dst[i], src.Format, p, colRange)
				dst[i] = fromNominal(nominal, target, p, colRange)
			}
		}
		if quant != nil {
			lo, hi := target.ValueRange(p)
			if err := quant.QuantizePlane(dst, dst, tpw, tph, lo, hi); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// kernelForOp rebuilds the resampling kernel from the op name and the
// parameters the scaler recorded on the node.
func kernelForOp(op string, args graph.Args) (resize.Kernel, error) {
	switch strings.TrimPrefix(op, resize.OpPrefix) {
	case "Point":
		return resize.PointKernel(), nil
	case "Bilinear":
		return resize.BilinearKernel(), nil
	case "Spline16":
		return resize.Spline16Kernel(), nil
	case "Spline36":
		return resize.Spline36Kernel(), nil
	case "Spline64":
		return resize.Spline64Kernel(), nil
	case "Lanczos":
		return resize.LanczosKernel(args.Int("taps", 3))
	case "Bicubic":
		return resize.BicubicKernel(args.Float("b", 1.0/3), args.Float("c", 1.0/3))
	default:
		return resize.Kernel{}, fmt.Errorf("resample: no kernel for op %q", op)
	}
}

// axisWeights holds the precomputed tap windows of one resampling axis.
// Taps are contiguous; out-of-range taps are folded onto the edge samples.
type axisWeights struct {
	first   []int
	weights [][]float64
}

func buildWeights(k resize.Kernel, srcN, dstN int) axisWeights {
	aw := axisWeights{
		first:   make([]int, dstN),
		weights: make([][]float64, dstN),
	}
	scale := float64(srcN) / float64(dstN)
	support := k.Support
	step := 1.0
	if scale > 1 {
		// Downscaling stretches the kernel so it keeps covering one
		// destination sample's worth of source.
		support *= scale
		step = 1 / scale
	}

	for j := 0; j < dstN; j++ {
		center := (float64(j)+0.5)*scale - 0.5

		if k.Support <= 0.5 {
			// Width-1 kernels stay nearest-neighbour at every scale.
			aw.first[j] = clampInt(int(math.Floor(center+0.5)), 0, srcN-1)
			aw.weights[j] = []float64{1}
			continue
		}

		left := int(math.Ceil(center - support))
		right := int(math.Floor(center + support))
		if right < left {
			right = left
		}
		cl := clampInt(left, 0, srcN-1)
		cr := clampInt(right, 0, srcN-1)
		w := make([]float64, cr-cl+1)
		sum := 0.0
		for i := left; i <= right; i++ {
			wv := k.Weight((center - float64(i)) * step)
			w[clampInt(i, 0, srcN-1)-cl] += wv
			sum += wv
		}
		if sum == 0 {
			w = []float64{1}
			cl = clampInt(int(math.Round(center)), 0, srcN-1)
		} else {
			vecmath.ScaleBlockInPlace(w, 1/sum)
		}
		aw.first[j] = cl
		aw.weights[j] = w
	}
	return aw
}

// resamplePlane resamples one plane with separable passes. An axis whose
// size does not change is passed through untouched, so same-size resize
// nodes reduce to pure format conversion. The horizontal pass is a
// per-pixel dot product over the tap window; the vertical pass accumulates
// weighted whole rows.
func resamplePlane(dst, src []float64, sw, sh, tw, th int, k resize.Kernel) {
	mid := src
	if sw != tw {
		mid = make([]float64, tw*sh)
		aw := buildWeights(k, sw, tw)
		for y := 0; y < sh; y++ {
			row := src[y*sw : (y+1)*sw]
			outRow := mid[y*tw : (y+1)*tw]
			for j := 0; j < tw; j++ {
				w := aw.weights[j]
				f := aw.first[j]
				outRow[j] = vecmath.DotProduct(w, row[f:f+len(w)])
			}
		}
	}

	if sh == th {
		copy(dst, mid)
		return
	}
	aw := buildWeights(k, sh, th)
	tmp := make([]float64, tw)
	for j := 0; j < th; j++ {
		outRow := dst[j*tw : (j+1)*tw]
		zero(outRow)
		f := aw.first[j]
		for t, wv := range aw.weights[j] {
			vecmath.ScaleBlock(tmp, mid[(f+t)*tw:(f+t+1)*tw], wv)
			vecmath.AddBlockInPlace(outRow, tmp)
		}
	}
}

// toNominal maps a value from the format's own scale to the nominal scale:
// [0, 1] for intensity, [-0.5, 0.5] for chroma. Integer formats follow the
// given color range convention.
func toNominal(v float64, f graph.Format, plane int, r graph.ColorRange) float64 {
	if f.Sample == graph.SampleFloat {
		return v
	}
	s := float64(int64(1) << (f.Bits - 8))
	if f.IsChromaPlane(plane) {
		offset := float64(int64(1) << (f.Bits - 1))
		if r == graph.RangeLimited {
			return (v - offset) / (224 * s)
		}
		return (v - offset) / float64(int64(1)<<f.Bits-1)
	}
	if r == graph.RangeLimited {
		return (v - 16*s) / (219 * s)
	}
	return v / float64(int64(1)<<f.Bits-1)
}

// fromNominal is the inverse of toNominal.
func fromNominal(v float64, f graph.Format, plane int, r graph.ColorRange) float64 {
	if f.Sample == graph.SampleFloat {
		return v
	}
	s := float64(int64(1) << (f.Bits - 8))
	if f.IsChromaPlane(plane) {
		offset := float64(int64(1) << (f.Bits - 1))
		if r == graph.RangeLimited {
			return v*(224*s) + offset
		}
		return v*float64(int64(1)<<f.Bits-1) + offset
	}
	if r == graph.RangeLimited {
		return v*(219*s) + 16*s
	}
	return v * float64(int64(1)<<f.Bits-1)
}
