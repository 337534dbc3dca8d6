package deband

import (
	"testing"

	"github.com/cwbudde/algo-deband/graph"
)

func TestPlaceboDebandNode(t *testing.T) {
	g, clip := testClip(t, graph.YUV420P8)

	out, err := PlaceboDeband(clip)
	if err != nil {
		t.Fatalf("PlaceboDeband() error = %v", err)
	}
	if got := g.NodeCount(); got != 2 {
		t.Fatalf("NodeCount = %d, want 2 (source and one shader pass)", got)
	}
	if got := out.Op(); got != OpPlacebo {
		t.Fatalf("PlaceboDeband() op = %q, want %q", got, OpPlacebo)
	}

	args := out.Args()
	if got := args.Int("planes", -1); got != 0b111 {
		t.Errorf("arg planes = %#b, want 0b111", got)
	}
	if got := args.Float("threshold", -1); got != 4 {
		t.Errorf("arg threshold = %g, want 4", got)
	}
	if got := args.Float("radius", -1); got != 16 {
		t.Errorf("arg radius = %g, want 16", got)
	}
	if got := args.Int("iterations", -1); got != 1 {
		t.Errorf("arg iterations = %d, want 1", got)
	}
	if got := args.Float("grain", -1); got != 6 {
		t.Errorf("arg grain = %g, want 6", got)
	}
}

func TestPlaceboGrouping(t *testing.T) {
	g, clip := testClip(t, graph.YUV420P8)

	p, err := NewPlacebo(WithPlaceboThresholds(4, 2, 2))
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}
	out, err := p.Deband(clip, Params{})
	if err != nil {
		t.Fatalf("Deband() error = %v", err)
	}
	if got := g.NodeCount(); got != 3 {
		t.Fatalf("NodeCount = %d, want 3 (source and two shader passes)", got)
	}

	// Chroma shares a threshold and lands in the second pass.
	if got := out.Args().Int("planes", -1); got != 0b110 {
		t.Errorf("second pass planes = %#b, want 0b110", got)
	}
	if got := out.Args().Float("threshold", -1); got != 2 {
		t.Errorf("second pass threshold = %g, want 2", got)
	}
	luma := out.Inputs()[0]
	if got := luma.Op(); got != OpPlacebo {
		t.Fatalf("first pass op = %q, want %q", got, OpPlacebo)
	}
	if got := luma.Args().Int("planes", -1); got != 0b001 {
		t.Errorf("first pass planes = %#b, want 0b001", got)
	}
	if got := luma.Args().Float("threshold", -1); got != 4 {
		t.Errorf("first pass threshold = %g, want 4", got)
	}
	if inputs := luma.Inputs(); len(inputs) != 1 || inputs[0] != clip {
		t.Fatalf("first pass inputs = %v, want [clip]", inputs)
	}
}

func TestPlaceboSkipsZeroThreshold(t *testing.T) {
	g, clip := testClip(t, graph.YUV420P8)

	p, err := NewPlacebo(WithPlaceboThresholds(4, 0), WithPlaceboGrain(0))
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}
	out, err := p.Deband(clip, Params{})
	if err != nil {
		t.Fatalf("Deband() error = %v", err)
	}
	if got := g.NodeCount(); got != 2 {
		t.Fatalf("NodeCount = %d, want 2 (zero-threshold chroma skipped)", got)
	}
	if got := out.Args().Int("planes", -1); got != 0b001 {
		t.Errorf("arg planes = %#b, want 0b001", got)
	}

	// Nothing left to do returns the clip unchanged.
	p, err = NewPlacebo(WithPlaceboThresholds(0), WithPlaceboGrain(0))
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}
	nodes := g.NodeCount()
	out, err = p.Deband(clip, Params{})
	if err != nil {
		t.Fatalf("Deband() error = %v", err)
	}
	if out != clip {
		t.Fatal("all-zero Deband() should return the input clip")
	}
	if g.NodeCount() != nodes {
		t.Fatalf("all-zero Deband() created nodes: %d -> %d", nodes, g.NodeCount())
	}
}

func TestPlaceboGrainKeepsZeroThresholdPass(t *testing.T) {
	_, clip := testClip(t, graph.YUV420P8)

	// Grain alone still needs the shader pass even with debanding off.
	p, err := NewPlacebo(WithPlaceboThresholds(0))
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}
	out, err := p.Deband(clip, Params{})
	if err != nil {
		t.Fatalf("Deband() error = %v", err)
	}
	if got := out.Op(); got != OpPlacebo {
		t.Fatalf("Deband() op = %q, want %q", got, OpPlacebo)
	}
	if got := out.Args().Float("threshold", -1); got != 0 {
		t.Errorf("arg threshold = %g, want 0", got)
	}
	if got := out.Args().Float("grain", -1); got != 6 {
		t.Errorf("arg grain = %g, want 6", got)
	}
}

func TestPlaceboParams(t *testing.T) {
	_, clip := testClip(t, graph.YUV420P8)

	p, err := NewPlacebo()
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}
	out, err := p.Deband(clip, Params{Radius: 24, Thresholds: []int{3}, Grain: []int{2}})
	if err != nil {
		t.Fatalf("Deband() error = %v", err)
	}
	args := out.Args()
	if got := args.Float("radius", -1); got != 24 {
		t.Errorf("arg radius = %g, want 24", got)
	}
	if got := args.Float("threshold", -1); got != 3 {
		t.Errorf("arg threshold = %g, want 3", got)
	}
	if got := args.Float("grain", -1); got != 2 {
		t.Errorf("arg grain = %g, want 2", got)
	}
}

func TestPlaceboGrainMethod(t *testing.T) {
	g, clip := testClip(t, graph.YUV420P8)

	p, err := NewPlacebo()
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}
	out, err := p.Grain(clip, 8)
	if err != nil {
		t.Fatalf("Grain() error = %v", err)
	}
	if got := out.Args().Float("threshold", -1); got != 0 {
		t.Errorf("arg threshold = %g, want 0", got)
	}
	if got := out.Args().Float("grain", -1); got != 8 {
		t.Errorf("arg grain = %g, want 8", got)
	}
	if got := out.Args().Int("planes", -1); got != 0b111 {
		t.Errorf("arg planes = %#b, want 0b111", got)
	}

	nodes := g.NodeCount()
	if out, err = p.Grain(clip, 0); err != nil || out != clip {
		t.Fatalf("Grain(0) should return the input clip, error = %v", err)
	}
	if g.NodeCount() != nodes {
		t.Fatalf("Grain(0) created nodes: %d -> %d", nodes, g.NodeCount())
	}

	// No amount falls back to the configured grain.
	out, err = p.Grain(clip)
	if err != nil {
		t.Fatalf("Grain() error = %v", err)
	}
	if got := out.Args().Float("grain", -1); got != 6 {
		t.Errorf("arg grain = %g, want 6", got)
	}

	quiet, err := NewPlacebo(WithPlaceboGrain(0))
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}
	nodes = g.NodeCount()
	if out, err = quiet.Grain(clip); err != nil || out != clip {
		t.Fatalf("Grain() with zero configured grain should return the input clip, error = %v", err)
	}
	if g.NodeCount() != nodes {
		t.Fatalf("no-op Grain() created nodes: %d -> %d", nodes, g.NodeCount())
	}
}

func TestPlaceboValidation(t *testing.T) {
	g, clip := testClip(t, graph.YUV420P8)
	p, err := NewPlacebo()
	if err != nil {
		t.Fatalf("NewPlacebo() error = %v", err)
	}

	tests := []struct {
		name string
		call func() error
	}{
		{"radius too small", func() error { _, err := NewPlacebo(WithPlaceboRadius(0.5)); return err }},
		{"no thresholds", func() error { _, err := NewPlacebo(WithPlaceboThresholds()); return err }},
		{"threshold negative", func() error { _, err := NewPlacebo(WithPlaceboThresholds(-1)); return err }},
		{"iterations too small", func() error { _, err := NewPlacebo(WithPlaceboIterations(0)); return err }},
		{"iterations too large", func() error { _, err := NewPlacebo(WithPlaceboIterations(17)); return err }},
		{"grain negative", func() error { _, err := NewPlacebo(WithPlaceboGrain(-1)); return err }},
		{"params radius", func() error { _, err := p.Deband(clip, Params{Radius: -3}); return err }},
		{"params threshold", func() error { _, err := p.Deband(clip, Params{Thresholds: []int{-1}}); return err }},
		{"params empty grain", func() error { _, err := p.Deband(clip, Params{Grain: []int{}}); return err }},
		{"params grain negative", func() error { _, err := p.Deband(clip, Params{Grain: []int{-1}}); return err }},
		{"grain amount negative", func() error { _, err := p.Grain(clip, -1); return err }},
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
