package guided

import (
	"math"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
	"github.com/cwbudde/algo-deband/graph/expr"
)

func testClip(t *testing.T) (*graph.Graph, graph.Clip) {
	t.Helper()
	g := graph.New()
	c, err := graph.BlankClip(g, 640, 480, graph.YUV420P16, 24)
	if err != nil {
		t.Fatalf("BlankClip() error = %v", err)
	}
	return g, c
}

func TestFilterSelfGuided(t *testing.T) {
	g, c := testClip(t)
	before := g.NodeCount()

	out, err := Filter(c, graph.Clip{}, 4, 0.3, ModeOriginal)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	// Means, squared guide, its mean, variance, both coefficient planes,
	// their means and the recombination.
	if got := g.NodeCount() - before; got != 9 {
		t.Fatalf("Filter() added %d nodes, want 9", got)
	}
	if got := out.Op(); got != std.OpExpr {
		t.Fatalf("Filter() op = %q, want %q", got, std.OpExpr)
	}
	inputs := out.Inputs()
	if len(inputs) != 3 || inputs[0] != c {
		t.Fatalf("Filter() inputs = %d, want [clip meanA meanB]", len(inputs))
	}
	if inputs[1].Op() != std.OpBoxBlur || inputs[2].Op() != std.OpBoxBlur {
		t.Fatalf("Filter() coefficient inputs = [%q %q], want box means",
			inputs[1].Op(), inputs[2].Op())
	}
	want := []string{"y x * z +", "y x * z +", "y x * z +"}
	if got := out.Args().Strings("expr"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter() exprs = %q, want %q", got, want)
	}
}

func TestFilterWithGuide(t *testing.T) {
	g, c := testClip(t)
	guide, err := graph.BlankClip(g, 640, 480, graph.YUV420P16, 24)
	if err != nil {
		t.Fatalf("BlankClip() error = %v", err)
	}
	before := g.NodeCount()

	out, err := Filter(c, guide, 4, 0.3, ModeOriginal)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if got := g.NodeCount() - before; got != 13 {
		t.Fatalf("Filter() added %d nodes, want 13", got)
	}
	inputs := out.Inputs()
	if len(inputs) != 4 || inputs[0] != c || inputs[1] != guide {
		t.Fatalf("Filter() inputs = %d, want [clip guide meanA meanB]", len(inputs))
	}
	want := []string{"z y * a +", "z y * a +", "z y * a +"}
	if got := out.Args().Strings("expr"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter() exprs = %q, want %q", got, want)
	}
}

func TestFilterBoxRadius(t *testing.T) {
	_, c := testClip(t)

	out, err := Filter(c, graph.Clip{}, 7, 0.3, ModeOriginal)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	box := out.Inputs()[1]
	args := box.Args()
	if got := args.Int("hradius", 0); got != 7 {
		t.Fatalf("hradius = %d, want 7", got)
	}
	if got := args.Int("vradius", 0); got != 7 {
		t.Fatalf("vradius = %d, want 7", got)
	}
	if got := args.Int("hpasses", 0); got != 1 {
		t.Fatalf("hpasses = %d, want 1", got)
	}
}

// coefficient reference formulas with thresholds scaled to an 8-bit range.
func refCoef(mode Mode, cov, v, eps float64) float64 {
	const valueRange = 255.0
	epsS := eps * valueRange * valueRange
	if v < 0 {
		v = 0
	}
	switch mode {
	case ModeWeighted:
		floor := epsFloor * valueRange * valueRange
		k := epsS * (epsS + floor)
		return cov / (v + k/(v+floor))
	case ModeGradient:
		floor := math.Sqrt(epsFloor) * valueRange
		k := epsS * (math.Sqrt(epsS) + floor)
		return cov / (v + k/(math.Sqrt(v)+floor))
	default:
		return cov / (v + epsS)
	}
}

func TestCoefficientSemantics(t *testing.T) {
	for _, mode := range []Mode{ModeOriginal, ModeWeighted, ModeGradient} {
		t.Run(mode.String(), func(t *testing.T) {
			g := graph.New()
			c, err := graph.BlankClip(g, 64, 64, graph.Gray8, 1)
			if err != nil {
				t.Fatalf("BlankClip() error = %v", err)
			}
			guide, err := graph.BlankClip(g, 64, 64, graph.Gray8, 1)
			if err != nil {
				t.Fatalf("BlankClip() error = %v", err)
			}
			out, err := Filter(c, guide, 2, 0.05, mode)
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}

			// The a-coefficient node feeds the first box mean input of the
			// recombination; walk to it and pull its expression.
			coefA := out.Inputs()[2].Inputs()[0]
			if coefA.Op() != std.OpExpr {
				t.Fatalf("coefficient node op = %q, want %q", coefA.Op(), std.OpExpr)
			}
			prog, err := expr.Parse(coefA.Args().Strings("expr")[0], 2)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			ev := prog.Evaluator()

			cases := []struct{ cov, v float64 }{
				{0, 0}, {10, 0}, {10, 50}, {120, 500}, {3000, 4000}, {5, -2},
			}
			for _, tc := range cases {
				got := ev.Eval([]float64{tc.cov, tc.v})
				want := refCoef(mode, tc.cov, tc.v, 0.05)
				if math.Abs(got-want) > 1e-12*math.Max(1, math.Abs(want)) {
					t.Fatalf("coef(%g, %g) = %g, want %g", tc.cov, tc.v, got, want)
				}
			}

			// Edge preservation ordering along the self-guided diagonal
			// (cov = var): flat areas smooth hard, strong edges keep a near 1.
			low := ev.Eval([]float64{100, 100})
			high := ev.Eval([]float64{10000, 10000})
			if low >= high || high >= 1 {
				t.Fatalf("coef ordering broken: flat %g, edge %g", low, high)
			}
		})
	}
}

func TestFilterPlanes(t *testing.T) {
	_, c := testClip(t)

	out, err := Filter(c, graph.Clip{}, 4, 0.3, ModeGradient, WithPlanes(0))
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	want := []string{"y x * z +", "", ""}
	if got := out.Args().Strings("expr"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter() exprs = %q, want %q", got, want)
	}
}

func TestModeString(t *testing.T) {
	cases := []struct {
		mode Mode
		want string
	}{
		{ModeOriginal, "Original"},
		{ModeWeighted, "Weighted"},
		{ModeGradient, "Gradient"},
		{Mode(9), "Mode(9)"},
	}
	for _, tc := range cases {
		if got := tc.mode.String(); got != tc.want {
			t.Fatalf("Mode(%d).String() = %q, want %q", int(tc.mode), got, tc.want)
		}
	}
	if Mode(9).Valid() {
		t.Fatal("Mode(9).Valid() = true, want false")
	}
	if !ModeGradient.Valid() {
		t.Fatal("ModeGradient.Valid() = false, want true")
	}
}

func TestFilterValidation(t *testing.T) {
	g, c := testClip(t)
	small, err := graph.BlankClip(g, 320, 240, graph.YUV420P16, 24)
	if err != nil {
		t.Fatalf("BlankClip() error = %v", err)
	}
	before := g.NodeCount()

	cases := []struct {
		name string
		call func() (graph.Clip, error)
	}{
		{"zero clip", func() (graph.Clip, error) {
			return Filter(graph.Clip{}, graph.Clip{}, 4, 0.3, ModeOriginal)
		}},
		{"mismatched guide", func() (graph.Clip, error) {
			return Filter(c, small, 4, 0.3, ModeOriginal)
		}},
		{"zero radius", func() (graph.Clip, error) {
			return Filter(c, graph.Clip{}, 0, 0.3, ModeOriginal)
		}},
		{"radius too large", func() (graph.Clip, error) {
			return Filter(c, graph.Clip{}, maxRadius+1, 0.3, ModeOriginal)
		}},
		{"zero eps", func() (graph.Clip, error) {
			return Filter(c, graph.Clip{}, 4, 0, ModeOriginal)
		}},
		{"negative eps", func() (graph.Clip, error) {
			return Filter(c, graph.Clip{}, 4, -1, ModeOriginal)
		}},
		{"nan eps", func() (graph.Clip, error) {
			return Filter(c, graph.Clip{}, 4, math.NaN(), ModeOriginal)
		}},
		{"invalid mode", func() (graph.Clip, error) {
			return Filter(c, graph.Clip{}, 4, 0.3, Mode(9))
		}},
		{"bad plane", func() (graph.Clip, error) {
			return Filter(c, graph.Clip{}, 4, 0.3, ModeOriginal, WithPlanes(5))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.call(); err == nil {
				t.Fatalf("expected error")
			}
			if got := g.NodeCount(); got != before {
				t.Fatalf("NodeCount() = %d, want %d after failed call", got, before)
			}
		})
	}
}
