package engine_test

import (
	"context"
	"testing"

	"github.com/cwbudde/algo-deband/engine"
	"github.com/cwbudde/algo-deband/filter/blur"
	"github.com/cwbudde/algo-deband/filter/depth"
	"github.com/cwbudde/algo-deband/filter/resize"
	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
	"github.com/cwbudde/algo-deband/internal/testutil"
)

func render(t *testing.T, clip graph.Clip) *graph.Frame {
	t.Helper()
	e, err := engine.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f, err := e.RenderFrame(context.Background(), clip, 0)
	if err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	return f
}

func grayClip(t *testing.T, g *graph.Graph, width, height int, pixels []float64) graph.Clip {
	t.Helper()
	return testutil.SourceClip(t, g, testutil.PlaneFrame(t, graph.Gray8, width, height, pixels))
}

func TestExprCombinesInputs(t *testing.T) {
	g := graph.New()
	a := grayClip(t, g, 4, 4, testutil.Flat(4, 4, 10))
	b := grayClip(t, g, 4, 4, testutil.Flat(4, 4, 20))

	sum, err := std.Expr([]graph.Clip{a, b}, "x y +")
	if err != nil {
		t.Fatalf("Expr() error = %v", err)
	}
	f := render(t, sum)
	for i, v := range f.Planes[0] {
		if v != 30 {
			t.Fatalf("pixel %d = %g, want 30", i, v)
		}
	}
}

func TestExprEmptyCopiesFirstInput(t *testing.T) {
	g := graph.New()
	pixels := testutil.BandedRamp(16, 4, 0, 255, 4)
	a := grayClip(t, g, 16, 4, pixels)
	b := grayClip(t, g, 16, 4, testutil.Flat(16, 4, 99))

	out, err := std.Expr([]graph.Clip{a, b}, "")
	if err != nil {
		t.Fatalf("Expr() error = %v", err)
	}
	f := render(t, out)
	for i, v := range f.Planes[0] {
		if v != pixels[i] {
			t.Fatalf("pixel %d = %g, want %g", i, v, pixels[i])
		}
	}
}

func TestMakeDiffMergeDiffRoundTrip(t *testing.T) {
	g := graph.New()
	pixels := testutil.SmoothRamp(16, 4, 100, 140)
	a := grayClip(t, g, 16, 4, pixels)
	b := grayClip(t, g, 16, 4, testutil.Flat(16, 4, 120))

	diff, err := std.MakeDiff(a, b)
	if err != nil {
		t.Fatalf("MakeDiff() error = %v", err)
	}
	restored, err := std.MergeDiff(b, diff)
	if err != nil {
		t.Fatalf("MergeDiff() error = %v", err)
	}

	f := render(t, restored)
	for i, v := range f.Planes[0] {
		if v != pixels[i] {
			t.Fatalf("pixel %d = %g, want %g", i, v, pixels[i])
		}
	}
}

func TestConvolutionIdentity(t *testing.T) {
	g := graph.New()
	pixels := testutil.BandedRamp(16, 8, 0, 255, 8)
	clip := grayClip(t, g, 16, 8, pixels)

	out, err := std.Convolution(clip, []float64{0, 0, 0, 0, 1, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Convolution() error = %v", err)
	}
	f := render(t, out)
	for i, v := range f.Planes[0] {
		if v != pixels[i] {
			t.Fatalf("pixel %d = %g, want %g", i, v, pixels[i])
		}
	}
}

func TestConvolutionPreservesFlat(t *testing.T) {
	g := graph.New()
	clip := grayClip(t, g, 8, 8, testutil.Flat(8, 8, 80))

	// The f3kpf prefilter kernel: normalized by its sum of 16.
	out, err := std.Convolution(clip, []float64{1, 2, 1, 2, 4, 2, 1, 2, 1})
	if err != nil {
		t.Fatalf("Convolution() error = %v", err)
	}
	f := render(t, out)
	for i, v := range f.Planes[0] {
		if v != 80 {
			t.Fatalf("pixel %d = %g, want 80", i, v)
		}
	}
}

func TestBoxBlurPreservesFlat(t *testing.T) {
	g := graph.New()
	clip := grayClip(t, g, 12, 12, testutil.Flat(12, 12, 50))

	out, err := std.BoxBlur(clip, std.WithBoxBlurRadius(3))
	if err != nil {
		t.Fatalf("BoxBlur() error = %v", err)
	}
	f := render(t, out)
	for i, v := range f.Planes[0] {
		if v != 50 {
			t.Fatalf("pixel %d = %g, want 50", i, v)
		}
	}
}

func TestBinarize(t *testing.T) {
	g := graph.New()
	pixels := []float64{
		0, 100, 127, 128,
		129, 200, 255, 64,
	}
	clip := grayClip(t, g, 4, 2, pixels)

	out, err := std.Binarize(clip, std.WithBinarizeThreshold(128))
	if err != nil {
		t.Fatalf("Binarize() error = %v", err)
	}
	f := render(t, out)
	for i, v := range f.Planes[0] {
		want := 0.0
		if pixels[i] >= 128 {
			want = 255
		}
		if v != want {
			t.Fatalf("pixel %d = %g, want %g", i, v, want)
		}
	}
}

func TestMaximumExpandsBrightSpot(t *testing.T) {
	g := graph.New()
	pixels := testutil.Flat(8, 8, 10)
	pixels[4*8+4] = 200
	clip := grayClip(t, g, 8, 8, pixels)

	out, err := std.Maximum(clip)
	if err != nil {
		t.Fatalf("Maximum() error = %v", err)
	}
	f := render(t, out)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := 10.0
			if x >= 3 && x <= 5 && y >= 3 && y <= 5 {
				want = 200
			}
			if got := f.Planes[0][y*8+x]; got != want {
				t.Fatalf("pixel (%d,%d) = %g, want %g", x, y, got, want)
			}
		}
	}
}

func TestRemoveGrainPreservesFlat(t *testing.T) {
	modes := []blur.RGMode{
		blur.RGClamp, blur.RGMedian, blur.RGBinomialBlur, blur.RGBinomialBlur12,
		blur.RGLineClip, blur.RGMeanNoCenter, blur.RGMean,
		blur.RGPairClipTrunc, blur.RGPairClipRound,
	}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			g := graph.New()
			clip := grayClip(t, g, 8, 8, testutil.Flat(8, 8, 77))

			out, err := blur.RemoveGrain(clip, mode)
			if err != nil {
				t.Fatalf("RemoveGrain() error = %v", err)
			}
			f := render(t, out)
			for i, v := range f.Planes[0] {
				if v != 77 {
					t.Fatalf("pixel %d = %g, want 77", i, v)
				}
			}
		})
	}
}

func TestResizeSameSizeIsIdentity(t *testing.T) {
	g := graph.New()
	// Six steps over [0, 255] keep every level a whole code value, so the
	// final quantization of the resize op cannot mask a real change.
	pixels := testutil.BandedRamp(32, 8, 0, 255, 6)
	clip := grayClip(t, g, 32, 8, pixels)

	out, err := resize.Spline64.Scale(clip, 32, 8)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}
	f := render(t, out)
	for i, v := range f.Planes[0] {
		if v != pixels[i] {
			t.Fatalf("pixel %d = %g, want %g", i, v, pixels[i])
		}
	}
}

func TestResizeRoundTripDimensions(t *testing.T) {
	g := graph.New()
	clip := grayClip(t, g, 64, 48, testutil.Flat(64, 48, 100))

	down, err := resize.Spline64.Scale(clip, 32, 24)
	if err != nil {
		t.Fatalf("Scale(down) error = %v", err)
	}
	up, err := resize.Spline64.Scale(down, 64, 48)
	if err != nil {
		t.Fatalf("Scale(up) error = %v", err)
	}

	f := render(t, up)
	if f.Width != 64 || f.Height != 48 || f.Format != graph.Gray8 {
		t.Fatalf("frame = %dx%d %s, want 64x48 %s", f.Width, f.Height, f.Format, graph.Gray8)
	}
	// Tap windows are normalized, so a flat plane survives both directions.
	for i, v := range f.Planes[0] {
		if v != 100 {
			t.Fatalf("pixel %d = %g, want 100", i, v)
		}
	}
}

func TestDepthRoundTripValues(t *testing.T) {
	g := graph.New()
	clip := grayClip(t, g, 8, 8, testutil.Flat(8, 8, 128))

	wide, err := depth.To(clip, 16)
	if err != nil {
		t.Fatalf("To(16) error = %v", err)
	}
	f := render(t, wide)
	if f.Format.Bits != 16 {
		t.Fatalf("promoted bits = %d, want 16", f.Format.Bits)
	}
	// Full-range gray: 128/255 of the 8-bit scale lands on 128*257.
	for i, v := range f.Planes[0] {
		if v != 128*257 {
			t.Fatalf("pixel %d = %g, want %d", i, v, 128*257)
		}
	}

	back, err := depth.To(wide, 8)
	if err != nil {
		t.Fatalf("To(8) error = %v", err)
	}
	f = render(t, back)
	if f.Format.Bits != 8 {
		t.Fatalf("restored bits = %d, want 8", f.Format.Bits)
	}
	for i, v := range f.Planes[0] {
		if v != 128 {
			t.Fatalf("pixel %d = %g, want 128", i, v)
		}
	}
}
