package limit

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
	"github.com/cwbudde/algo-deband/graph/expr"
)

func testClips(t *testing.T, format graph.Format) (*graph.Graph, graph.Clip, graph.Clip) {
	t.Helper()
	g := graph.New()
	flt, err := graph.BlankClip(g, 640, 480, format, 24)
	if err != nil {
		t.Fatalf("BlankClip() error = %v", err)
	}
	src, err := graph.BlankClip(g, 640, 480, format, 24)
	if err != nil {
		t.Fatalf("BlankClip() error = %v", err)
	}
	return g, flt, src
}

// refLimit mirrors the elastic limiting formula with thresholds already
// scaled to the value range.
func refLimit(flt, src, ref, thr, elast float64) float64 {
	d := math.Abs(flt - ref)
	thrMax := thr * elast
	switch {
	case d <= thr:
		return flt
	case d >= thrMax:
		return src
	default:
		return src + (flt-src)*(thrMax-d)/(thrMax-thr)
	}
}

func TestFilterNode(t *testing.T) {
	_, flt, src := testClips(t, graph.YUV420P8)

	out, err := Filter(flt, src)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if got := out.Op(); got != std.OpExpr {
		t.Fatalf("Filter() op = %q, want %q", got, std.OpExpr)
	}
	inputs := out.Inputs()
	if len(inputs) != 2 || inputs[0] != flt || inputs[1] != src {
		t.Fatalf("Filter() inputs = %v, want [flt src]", inputs)
	}
	exprs := out.Args().Strings("expr")
	if len(exprs) != 3 {
		t.Fatalf("Filter() exprs = %d, want 3", len(exprs))
	}
	for i, e := range exprs {
		if e != exprs[0] {
			t.Fatalf("Filter() plane %d expr %q differs from plane 0 %q", i, e, exprs[0])
		}
		if !strings.HasPrefix(e, "x y - abs ") || !strings.HasSuffix(e, "? ?") {
			t.Fatalf("Filter() plane %d expr = %q, want elastic ladder", i, e)
		}
	}
}

func TestFilterSemantics(t *testing.T) {
	_, flt, src := testClips(t, graph.YUV420P8)

	out, err := Filter(flt, src, WithThresholds(2), WithElasticity(3))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	prog, err := expr.Parse(out.Args().Strings("expr")[0], 2)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ev := prog.Evaluator()

	// thr=2 and elast=3 give a flat zone up to 2, a revert zone from 6.
	const srcVal = 100.0
	for x := 92.0; x <= 108; x += 0.25 {
		got := ev.Eval([]float64{x, srcVal})
		want := refLimit(x, srcVal, srcVal, 2, 3)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("Eval(%g, %g) = %g, want %g", x, srcVal, got, want)
		}
	}
}

func TestFilterHardThreshold(t *testing.T) {
	_, flt, src := testClips(t, graph.YUV420P8)

	out, err := Filter(flt, src, WithThresholds(2), WithElasticity(1))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	prog, err := expr.Parse(out.Args().Strings("expr")[0], 2)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ev := prog.Evaluator()

	cases := []struct {
		x, y, want float64
	}{
		{101, 100, 101}, // within threshold, keep filtered
		{102, 100, 102}, // at threshold, keep filtered
		{103, 100, 100}, // beyond threshold, revert
		{97, 100, 100},
	}
	for _, tc := range cases {
		if got := ev.Eval([]float64{tc.x, tc.y}); got != tc.want {
			t.Fatalf("Eval(%g, %g) = %g, want %g", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestFilterWithRef(t *testing.T) {
	g, flt, src := testClips(t, graph.YUV420P8)
	ref, err := graph.BlankClip(g, 640, 480, graph.YUV420P8, 24)
	if err != nil {
		t.Fatalf("BlankClip() error = %v", err)
	}

	out, err := Filter(flt, src, WithRef(ref), WithThresholds(2), WithElasticity(3))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	inputs := out.Inputs()
	if len(inputs) != 3 || inputs[2] != ref {
		t.Fatalf("Filter() inputs = %v, want [flt src ref]", inputs)
	}
	e := out.Args().Strings("expr")[0]
	if !strings.Contains(e, "x z - abs") {
		t.Fatalf("Filter() expr = %q, want reference distance x z - abs", e)
	}

	prog, err := expr.Parse(e, 3)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ev := prog.Evaluator()

	// Distance is measured against ref while the blend runs flt to src.
	for x := 92.0; x <= 108; x += 0.5 {
		got := ev.Eval([]float64{x, 99, 100})
		want := refLimit(x, 99, 100, 2, 3)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("Eval(%g, 99, 100) = %g, want %g", x, got, want)
		}
	}
}

func TestFilterBrightThresholds(t *testing.T) {
	_, flt, src := testClips(t, graph.YUV420P8)

	out, err := Filter(flt, src, WithThresholds(1), WithBrightThresholds(3), WithElasticity(2))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	e := out.Args().Strings("expr")[0]
	if !strings.HasPrefix(e, "x y > ") {
		t.Fatalf("Filter() expr = %q, want bright/dark split", e)
	}

	prog, err := expr.Parse(e, 2)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ev := prog.Evaluator()

	for x := 94.0; x <= 106; x += 0.25 {
		thr := 1.0
		if x > 100 {
			thr = 3.0
		}
		got := ev.Eval([]float64{x, 100})
		want := refLimit(x, 100, 100, thr, 2)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("Eval(%g, 100) = %g, want %g", x, got, want)
		}
	}
}

func TestFilterThresholdScaling(t *testing.T) {
	_, flt, src := testClips(t, graph.YUV420P16)

	out, err := Filter(flt, src, WithThresholds(0.6))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	e := out.Args().Strings("expr")[0]
	want := strconv.FormatFloat(0.6*65535/255, 'g', -1, 64)
	if !strings.Contains(e, " "+want+" ") {
		t.Fatalf("Filter() expr = %q, want 16-bit threshold %s", e, want)
	}
}

func TestFilterFloatScaling(t *testing.T) {
	_, flt, src := testClips(t, graph.YUV444PS)

	out, err := Filter(flt, src, WithThresholds(2))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	e := out.Args().Strings("expr")[0]
	want := strconv.FormatFloat(2.0/255, 'g', -1, 64)
	if !strings.Contains(e, " "+want+" ") {
		t.Fatalf("Filter() expr = %q, want float threshold %s", e, want)
	}
}

func TestFilterPassThrough(t *testing.T) {
	g, flt, src := testClips(t, graph.YUV420P8)
	before := g.NodeCount()

	out, err := Filter(flt, src, WithThresholds(0))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if out != src {
		t.Fatalf("Filter(thr=0) = %v, want src clip", out)
	}

	out, err = Filter(flt, src, WithThresholds(255))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if out != flt {
		t.Fatalf("Filter(thr=255) = %v, want flt clip", out)
	}
	if got := g.NodeCount(); got != before {
		t.Fatalf("NodeCount() = %d, want %d after pass-through", got, before)
	}
}

func TestFilterMixedPlanes(t *testing.T) {
	_, flt, src := testClips(t, graph.YUV420P8)

	out, err := Filter(flt, src, WithThresholds(0.6, 0))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	exprs := out.Args().Strings("expr")
	if exprs[0] == "y" || exprs[1] != "y" || exprs[2] != "y" {
		t.Fatalf("Filter() exprs = %q, want elastic luma and src chroma", exprs)
	}
}

func TestFilterValidation(t *testing.T) {
	g, flt, src := testClips(t, graph.YUV420P8)
	small, err := graph.BlankClip(g, 320, 240, graph.YUV420P8, 24)
	if err != nil {
		t.Fatalf("BlankClip() error = %v", err)
	}
	before := g.NodeCount()

	cases := []struct {
		name string
		call func() (graph.Clip, error)
	}{
		{"zero flt", func() (graph.Clip, error) {
			return Filter(graph.Clip{}, src)
		}},
		{"mismatched src", func() (graph.Clip, error) {
			return Filter(flt, small)
		}},
		{"zero ref", func() (graph.Clip, error) {
			return Filter(flt, src, WithRef(graph.Clip{}))
		}},
		{"mismatched ref", func() (graph.Clip, error) {
			return Filter(flt, src, WithRef(small))
		}},
		{"empty thresholds", func() (graph.Clip, error) {
			return Filter(flt, src, WithThresholds())
		}},
		{"non-finite threshold", func() (graph.Clip, error) {
			return Filter(flt, src, WithThresholds(math.NaN()))
		}},
		{"too many thresholds", func() (graph.Clip, error) {
			return Filter(flt, src, WithThresholds(1, 2, 3, 4))
		}},
		{"empty bright thresholds", func() (graph.Clip, error) {
			return Filter(flt, src, WithBrightThresholds())
		}},
		{"elasticity below one", func() (graph.Clip, error) {
			return Filter(flt, src, WithElasticity(0.5))
		}},
		{"elasticity above limit", func() (graph.Clip, error) {
			return Filter(flt, src, WithElasticity(64))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.call(); err == nil {
				t.Fatalf("Filter() expected error")
			}
			if got := g.NodeCount(); got != before {
				t.Fatalf("NodeCount() = %d, want %d after failed call", got, before)
			}
		})
	}
}

func BenchmarkFilter(b *testing.B) {
	b.ReportAllocs()
	g := graph.New()
	flt, _ := graph.BlankClip(g, 1920, 1080, graph.YUV420P16, 240)
	src, _ := graph.BlankClip(g, 1920, 1080, graph.YUV420P16, 240)
	for i := 0; i < b.N; i++ {
		if _, err := Filter(flt, src); err != nil {
			b.Fatal(err)
		}
	}
}
