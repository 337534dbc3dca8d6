package deband

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

func TestF3kBilateralStructure(t *testing.T) {
	g, clip := testClip(t, graph.YUV420P16)

	out, err := F3kBilateral(clip)
	if err != nil {
		t.Fatalf("F3kBilateral() error = %v", err)
	}
	// Three staged passes and the limiting expression; 16-bit input needs
	// no depth conversion.
	if got := g.NodeCount(); got != 5 {
		t.Fatalf("NodeCount = %d, want 5", got)
	}
	if got := out.Op(); got != std.OpExpr {
		t.Fatalf("F3kBilateral() op = %q, want %q", got, std.OpExpr)
	}

	inputs := out.Inputs()
	if len(inputs) != 3 {
		t.Fatalf("limiter inputs = %d, want 3 (filtered, source, reference)", len(inputs))
	}
	if inputs[2] != clip {
		t.Fatal("limiter reference is not the source clip")
	}

	db3, db2 := inputs[0], inputs[1]
	if db3.Inputs()[0] != db2 {
		t.Fatal("final stage does not consume the middle stage")
	}
	db1 := db2.Inputs()[0]
	if db1.Inputs()[0] != clip {
		t.Fatal("first stage does not consume the source clip")
	}

	// Stage radii run coarse to fine at 4/3, 2/3 and 1/3 of the base 16.
	for _, tt := range []struct {
		stage  graph.Clip
		radius int
		thr    int
	}{
		{db1, 21, 32},
		{db2, 11, 65},
		{db3, 5, 65},
	} {
		if got := tt.stage.Op(); got != OpF3kdb {
			t.Fatalf("stage op = %q, want %q", got, OpF3kdb)
		}
		args := tt.stage.Args()
		if got := args.Int("range", -1); got != tt.radius {
			t.Errorf("stage radius = %d, want %d", got, tt.radius)
		}
		if got := args.Int("y", -1); got != tt.thr {
			t.Errorf("stage threshold = %d, want %d", got, tt.thr)
		}
		if got := args.Int("grainy", -1); got != 0 {
			t.Errorf("stage grainy = %d, want 0", got)
		}
	}
}

func TestMDBBilateralLimitsLumaOnly(t *testing.T) {
	_, clip := testClip(t, graph.YUV420P16)

	out, err := MDBBilateral(clip)
	if err != nil {
		t.Fatalf("MDBBilateral() error = %v", err)
	}
	exprs := out.Args().Strings("expr")
	if len(exprs) != 3 {
		t.Fatalf("limiter exprs = %d, want 3", len(exprs))
	}
	if exprs[0] == "y" {
		t.Error("luma expr passes the middle stage through, want limiting ladder")
	}
	// Chroma thresholds default to zero: the middle stage wins outright.
	if exprs[1] != "y" || exprs[2] != "y" {
		t.Errorf("chroma exprs = %q, %q, want %q", exprs[1], exprs[2], "y")
	}
}

func TestMDBBilateralGray(t *testing.T) {
	g := graph.New()
	clip, err := graph.BlankClip(g, 640, 480, graph.Gray16, 24)
	if err != nil {
		t.Fatalf("BlankClip() error = %v", err)
	}

	// The default luma/chroma limit thresholds must trim to the single plane.
	out, err := MDBBilateral(clip)
	if err != nil {
		t.Fatalf("MDBBilateral() error = %v", err)
	}
	if got := out.Op(); got != std.OpExpr {
		t.Fatalf("MDBBilateral() op = %q, want %q", got, std.OpExpr)
	}
	if got := len(out.Args().Strings("expr")); got != 1 {
		t.Fatalf("limiter exprs = %d, want 1", got)
	}
}

func TestBilateralOptions(t *testing.T) {
	_, clip := testClip(t, graph.YUV420P16)

	out, err := F3kBilateral(clip,
		WithBilateralRadius(12),
		WithBilateralThresholds(40, 30),
		WithBilateralLimit(1.2),
		WithBilateralElasticity(2),
	)
	if err != nil {
		t.Fatalf("F3kBilateral() error = %v", err)
	}

	db3 := out.Inputs()[0]
	db2 := db3.Inputs()[0]
	db1 := db2.Inputs()[0]
	// Radius 12 scales to stages of 16, 8 and 4.
	if got := db1.Args().Int("range", -1); got != 16 {
		t.Errorf("stage 1 radius = %d, want 16", got)
	}
	if got := db2.Args().Int("range", -1); got != 8 {
		t.Errorf("stage 2 radius = %d, want 8", got)
	}
	if got := db3.Args().Int("range", -1); got != 4 {
		t.Errorf("stage 3 radius = %d, want 4", got)
	}
	if got := db1.Args().Int("y", -1); got != 20 {
		t.Errorf("stage 1 luma threshold = %d, want 20", got)
	}
	if got := db1.Args().Int("cb", -1); got != 15 {
		t.Errorf("stage 1 chroma threshold = %d, want 15", got)
	}
	if got := db2.Args().Int("y", -1); got != 40 {
		t.Errorf("stage 2 luma threshold = %d, want 40", got)
	}
}

func TestBilateralGrain(t *testing.T) {
	_, clip := testClip(t, graph.YUV420P16)

	out, err := F3kBilateral(clip, WithBilateralGrain(12))
	if err != nil {
		t.Fatalf("F3kBilateral() error = %v", err)
	}
	// Grain lands in a trailing zero-threshold pass after the limiter.
	if got := out.Op(); got != OpF3kdb {
		t.Fatalf("F3kBilateral() op = %q, want %q", got, OpF3kdb)
	}
	args := out.Args()
	if got := args.Int("y", -1); got != 0 {
		t.Errorf("grain pass threshold = %d, want 0", got)
	}
	if got := args.Int("grainy", -1); got != 12 {
		t.Errorf("grain pass grainy = %d, want 12", got)
	}
	if got := out.Inputs()[0].Op(); got != std.OpExpr {
		t.Fatalf("grain pass input op = %q, want %q", got, std.OpExpr)
	}
}

func TestBilateralDepthRoundTrip(t *testing.T) {
	g, clip := testClip(t, graph.YUV420P8)

	out, err := F3kBilateral(clip)
	if err != nil {
		t.Fatalf("F3kBilateral() error = %v", err)
	}
	// Promote, three stages, limiter, restore.
	if got := g.NodeCount(); got != 7 {
		t.Fatalf("NodeCount = %d, want 7", got)
	}
	if got := out.Format().Bits; got != 8 {
		t.Fatalf("output bits = %d, want 8", got)
	}
	if got := out.Op(); got != "resize.Point" {
		t.Fatalf("restore op = %q, want resize.Point", got)
	}

	limiter := out.Inputs()[0]
	if got := limiter.Format().Bits; got != 16 {
		t.Fatalf("limiter bits = %d, want 16", got)
	}
	db1 := limiter.Inputs()[0].Inputs()[0].Inputs()[0]
	work := db1.Inputs()[0]
	if got := work.Op(); got != "resize.Point" {
		t.Fatalf("promote op = %q, want resize.Point", got)
	}
	if work.Inputs()[0] != clip {
		t.Fatal("promote node does not consume the source clip")
	}
}

func TestBilateralCustomDebander(t *testing.T) {
	_, clip := testClip(t, graph.YUV420P16)

	p, err := NewPlacebo()
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}
	out, err := MDBBilateral(clip, WithBilateralDebander(p))
	if err != nil {
		t.Fatalf("MDBBilateral() error = %v", err)
	}

	db3 := out.Inputs()[0]
	if got := db3.Op(); got != OpPlacebo {
		t.Fatalf("stage op = %q, want %q", got, OpPlacebo)
	}
	// Integer stage radii convert to the shader's float parameter.
	if got := db3.Args().Float("radius", -1); got != 5 {
		t.Errorf("stage 3 radius = %g, want 5", got)
	}
	if got := db3.Args().Float("threshold", -1); got != 65 {
		t.Errorf("stage 3 threshold = %g, want 65", got)
	}
}

func TestBilateralValidation(t *testing.T) {
	g, clip := testClip(t, graph.YUV420P16)

	tests := []struct {
		name string
		call func() error
	}{
		{"radius too small", func() error { _, err := F3kBilateral(clip, WithBilateralRadius(1)); return err }},
		{"radius too large", func() error { _, err := F3kBilateral(clip, WithBilateralRadius(49)); return err }},
		{"no thresholds", func() error { _, err := F3kBilateral(clip, WithBilateralThresholds()); return err }},
		{"threshold range", func() error { _, err := F3kBilateral(clip, WithBilateralThresholds(512)); return err }},
		{"grain arity", func() error { _, err := F3kBilateral(clip, WithBilateralGrain(1, 2, 3)); return err }},
		{"grain negative", func() error { _, err := F3kBilateral(clip, WithBilateralGrain(-1)); return err }},
		{"nil debander", func() error { _, err := F3kBilateral(clip, WithBilateralDebander(nil)); return err }},
		{"no limit values", func() error { _, err := F3kBilateral(clip, WithBilateralLimit()); return err }},
		{"limit not finite", func() error { _, err := F3kBilateral(clip, WithBilateralLimit(math.NaN())); return err }},
		{"bright not finite", func() error { _, err := F3kBilateral(clip, WithBilateralBrightLimit(math.Inf(1))); return err }},
		{"elasticity too small", func() error { _, err := F3kBilateral(clip, WithBilateralElasticity(0.5)); return err }},
		{"elasticity too large", func() error { _, err := F3kBilateral(clip, WithBilateralElasticity(33)); return err }},
		{"too many limit values", func() error { _, err := F3kBilateral(clip, WithBilateralLimit(1, 1, 1, 1)); return err }},
		{"too many bright values", func() error { _, err := F3kBilateral(clip, WithBilateralBrightLimit(1, 1, 1, 1)); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := g.NodeCount()
			if err := tt.call(); err == nil {
				t.Fatal("expected error, got nil")
			}
			if g.NodeCount() != nodes {
				t.Fatalf("failed call created nodes: %d -> %d", nodes, g.NodeCount())
			}
		})
	}
}
