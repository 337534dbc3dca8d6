package engine

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-deband/graph"
)

func opMakeDiff(req Request) (*graph.Frame, error) {
	if len(req.Inputs) != 2 {
		return nil, errors.New("make diff: want two inputs")
	}
	planes := req.Clip.Args().Ints("planes")
	a, b := req.Inputs[0], req.Inputs[1]
	format := req.Clip.Format()

	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, dst := range out.Planes {
		if !graph.HasPlane(planes, p) {
			copy(dst, a.Planes[p])
			continue
		}
		vecmath.ScaleBlock(dst, b.Planes[p], -1)
		vecmath.AddBlockInPlace(dst, a.Planes[p])
		neutral := format.NeutralValue(p)
		lo, hi := format.ValueRange(p)
		for i := range dst {
			dst[i] = clampF(dst[i]+neutral, lo, hi)
		}
	}
	return out, nil
}

func opMergeDiff(req Request) (*graph.Frame, error) {
	if len(req.Inputs) != 2 {
		return nil, errors.New("merge diff: want two inputs")
	}
	planes := req.Clip.Args().Ints("planes")
	a, b := req.Inputs[0], req.Inputs[1]
	format := req.Clip.Format()

	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, dst := range out.Planes {
		if !graph.HasPlane(planes, p) {
			copy(dst, a.Planes[p])
			continue
		}
		vecmath.AddBlock(dst, a.Planes[p], b.Planes[p])
		neutral := format.NeutralValue(p)
		lo, hi := format.ValueRange(p)
		for i := range dst {
			dst[i] = clampF(dst[i]-neutral, lo, hi)
		}
	}
	return out, nil
}

func opMaskedMerge(req Request) (*graph.Frame, error) {
	if len(req.Inputs) != 3 {
		return nil, errors.New("masked merge: want three inputs")
	}
	args := req.Clip.Args()
	planes := args.Ints("planes")
	firstPlane := args.Bool("first_plane", false)
	a, b, mask := req.Inputs[0], req.Inputs[1], req.Inputs[2]
	format := req.Clip.Format()

	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, dst := range out.Planes {
		if !graph.HasPlane(planes, p) {
			copy(dst, a.Planes[p])
			continue
		}
		av, bv := a.Planes[p], b.Planes[p]

		if firstPlane && format.IsChromaPlane(p) {
			// Chroma reads the full-size mask plane at subsampled
			// coordinates.
			pw, ph := out.PlaneDims(p)
			mp := mask.Planes[0]
			mw := mask.Width
			peak := mask.Format.PeakValue(0)
			for y := 0; y < ph; y++ {
				my := (y << format.SubH) * mw
				for x := 0; x < pw; x++ {
					i := y*pw + x
					w := clampF(mp[my+(x<<format.SubW)]/peak, 0, 1)
					dst[i] = av[i] + (bv[i]-av[i])*w
				}
			}
			continue
		}

		mp := mask.Planes[0]
		peak := mask.Format.PeakValue(0)
		if !firstPlane {
			mp = mask.Planes[p]
			peak = mask.Format.PeakValue(p)
		}
		for i := range dst {
			w := clampF(mp[i]/peak, 0, 1)
			dst[i] = av[i] + (bv[i]-av[i])*w
		}
	}
	return out, nil
}

func opBinarize(req Request) (*graph.Frame, error) {
	if len(req.Inputs) != 1 {
		return nil, errors.New("binarize: want one input")
	}
	args := req.Clip.Args()
	thresholds := args.Floats("threshold")
	planes := args.Ints("planes")
	src := req.Inputs[0]
	format := req.Clip.Format()

	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, dst := range out.Planes {
		if !graph.HasPlane(planes, p) || p >= len(thresholds) {
			copy(dst, src.Planes[p])
			continue
		}
		thr := thresholds[p]
		lo, hi := format.ValueRange(p)
		sp := src.Planes[p]
		for i := range dst {
			if sp[i] < thr {
				dst[i] = lo
			} else {
				dst[i] = hi
			}
		}
	}
	return out, nil
}

func opMaximum(req Request) (*graph.Frame, error) {
	return morphOp(req, true)
}

func opMinimum(req Request) (*graph.Frame, error) {
	return morphOp(req, false)
}

func morphOp(req Request, dilate bool) (*graph.Frame, error) {
	if len(req.Inputs) != 1 {
		return nil, errors.New("morphology: want one input")
	}
	args := req.Clip.Args()
	threshold := args.Float("threshold", math.Inf(1))
	planes := args.Ints("planes")
	src := req.Inputs[0]

	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, dst := range out.Planes {
		if !graph.HasPlane(planes, p) {
			copy(dst, src.Planes[p])
			continue
		}
		pw, ph := out.PlaneDims(p)
		sp := src.Planes[p]
		for y := 0; y < ph; y++ {
			for x := 0; x < pw; x++ {
				c := sp[y*pw+x]
				m := c
				for dy := -1; dy <= 1; dy++ {
					sy := mirrorIndex(y+dy, ph) * pw
					for dx := -1; dx <= 1; dx++ {
						v := sp[sy+mirrorIndex(x+dx, pw)]
						if dilate && v > m {
							m = v
						}
						if !dilate && v < m {
							m = v
						}
					}
				}
				if dilate {
					dst[y*pw+x] = math.Min(m, c+threshold)
				} else {
					dst[y*pw+x] = math.Max(m, c-threshold)
				}
			}
		}
	}
	return out, nil
}
