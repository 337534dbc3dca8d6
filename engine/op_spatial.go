package engine

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

func opConvolution(req Request) (*graph.Frame, error) {
	if len(req.Inputs) != 1 {
		return nil, errors.New("convolution: want one input")
	}
	args := req.Clip.Args()
	matrix := args.Floats("matrix")
	mode := args.String("mode", std.ModeSquare)
	divisor := args.Float("divisor", 1)
	bias := args.Float("bias", 0)
	planes := args.Ints("planes")
	if len(matrix) == 0 {
		return nil, errors.New("convolution: empty matrix")
	}
	if divisor == 0 {
		return nil, errors.New("convolution: zero divisor")
	}

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
		switch mode {
		case std.ModeHorizontal:
			convolveH(dst, src.Planes[p], pw, ph, matrix, divisor, bias)
		case std.ModeVertical:
			convolveV(dst, src.Planes[p], pw, ph, matrix, divisor, bias)
		case std.ModeSquare:
			side := 3
			if len(matrix) == 25 {
				side = 5
			}
			if len(matrix) != side*side {
				return nil, fmt.Errorf("convolution: square matrix has %d entries", len(matrix))
			}
			convolveSquare(dst, src.Planes[p], pw, ph, matrix, side, divisor, bias)
		default:
			return nil, fmt.Errorf("convolution: unknown mode %q", mode)
		}
	}
	return out, nil
}

// convolveH runs a 1-D kernel along each row. Rows are copied into a
// mirror-extended scratch buffer so every tap becomes a contiguous block
// for the vector kernels.
func convolveH(dst, src []float64, width, height int, kernel []float64, divisor, bias float64) {
	radius := len(kernel) / 2
	ext := make([]float64, width+2*radius)
	acc := make([]float64, width)
	tmp := make([]float64, width)

	for y := 0; y < height; y++ {
		row := src[y*width : (y+1)*width]
		extendRow(ext, row, radius)
		zero(acc)
		for t, w := range kernel {
			vecmath.ScaleBlock(tmp, ext[t:t+width], w)
			vecmath.AddBlockInPlace(acc, tmp)
		}
		finishRow(dst[y*width:(y+1)*width], acc, divisor, bias)
	}
}

// convolveV runs a 1-D kernel down each column, expressed as weighted whole
// rows so the inner loop stays block-shaped.
func convolveV(dst, src []float64, width, height int, kernel []float64, divisor, bias float64) {
	radius := len(kernel) / 2
	acc := make([]float64, width)
	tmp := make([]float64, width)

	for y := 0; y < height; y++ {
		zero(acc)
		for t, w := range kernel {
			sy := mirrorIndex(y+t-radius, height)
			vecmath.ScaleBlock(tmp, src[sy*width:(sy+1)*width], w)
			vecmath.AddBlockInPlace(acc, tmp)
		}
		finishRow(dst[y*width:(y+1)*width], acc, divisor, bias)
	}
}

func convolveSquare(dst, src []float64, width, height int, matrix []float64, side int, divisor, bias float64) {
	radius := side / 2
	ext := make([]float64, width+2*radius)
	acc := make([]float64, width)
	tmp := make([]float64, width)

	for y := 0; y < height; y++ {
		zero(acc)
		for ky := 0; ky < side; ky++ {
			sy := mirrorIndex(y+ky-radius, height)
			extendRow(ext, src[sy*width:(sy+1)*width], radius)
			for kx := 0; kx < side; kx++ {
				vecmath.ScaleBlock(tmp, ext[kx:kx+width], matrix[ky*side+kx])
				vecmath.AddBlockInPlace(acc, tmp)
			}
		}
		finishRow(dst[y*width:(y+1)*width], acc, divisor, bias)
	}
}

func finishRow(dst, acc []float64, divisor, bias float64) {
	vecmath.ScaleBlock(dst, acc, 1/divisor)
	if bias != 0 {
		for i := range dst {
			dst[i] += bias
		}
	}
}

func opBoxBlur(req Request) (*graph.Frame, error) {
	if len(req.Inputs) != 1 {
		return nil, errors.New("box blur: want one input")
	}
	args := req.Clip.Args()
	hRadius := args.Int("hradius", 0)
	hPasses := args.Int("hpasses", 1)
	vRadius := args.Int("vradius", 0)
	vPasses := args.Int("vpasses", 1)
	planes := args.Ints("planes")

	src := req.Inputs[0]
	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, dst := range out.Planes {
		copy(dst, src.Planes[p])
		if !graph.HasPlane(planes, p) {
			continue
		}
		pw, ph := out.PlaneDims(p)
		if hRadius > 0 {
			for pass := 0; pass < hPasses; pass++ {
				boxBlurRows(dst, pw, ph, hRadius)
			}
		}
		if vRadius > 0 {
			for pass := 0; pass < vPasses; pass++ {
				boxBlurCols(dst, pw, ph, vRadius)
			}
		}
	}
	return out, nil
}

// boxBlurLine writes the moving average of ext into dst. ext holds
// len(dst)+2*radius mirror-extended samples.
func boxBlurLine(dst, ext []float64, radius int) {
	window := 2*radius + 1
	inv := 1 / float64(window)
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += ext[i]
	}
	dst[0] = sum * inv
	for x := 1; x < len(dst); x++ {
		sum += ext[x+2*radius] - ext[x-1]
		dst[x] = sum * inv
	}
}

func boxBlurRows(data []float64, width, height, radius int) {
	ext := make([]float64, width+2*radius)
	for y := 0; y < height; y++ {
		row := data[y*width : (y+1)*width]
		extendRow(ext, row, radius)
		boxBlurLine(row, ext, radius)
	}
}

func boxBlurCols(data []float64, width, height, radius int) {
	ext := make([]float64, height+2*radius)
	col := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = data[y*width+x]
		}
		extendRow(ext, col, radius)
		boxBlurLine(col, ext, radius)
		for y := 0; y < height; y++ {
			data[y*width+x] = col[y]
		}
	}
}
