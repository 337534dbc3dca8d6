package testutil

import (
	"testing"

	"github.com/cwbudde/algo-deband/graph"
)

// PlaneFrame builds a frame from per-plane pixel data. Omitted trailing
// planes stay zero; a plane whose length does not match its dimensions
// fails the test.
func PlaneFrame(tb testing.TB, format graph.Format, width, height int, planes ...[]float64) *graph.Frame {
	tb.Helper()
	f, err := graph.NewFrame(format, width, height)
	if err != nil {
		tb.Fatalf("NewFrame() error = %v", err)
	}
	if len(planes) > len(f.Planes) {
		tb.Fatalf("PlaneFrame: %d planes for %s", len(planes), format)
	}
	for p, data := range planes {
		if data == nil {
			continue
		}
		if len(data) != len(f.Planes[p]) {
			tb.Fatalf("PlaneFrame: plane %d has %d values, want %d", p, len(data), len(f.Planes[p]))
		}
		copy(f.Planes[p], data)
	}
	return f
}

// SourceClip wraps pre-built frames as a source clip of matching length.
// All frames must share the first frame's format and dimensions.
func SourceClip(tb testing.TB, g *graph.Graph, frames ...*graph.Frame) graph.Clip {
	tb.Helper()
	if len(frames) == 0 {
		tb.Fatal("SourceClip: needs at least one frame")
	}
	first := frames[0]
	for i, f := range frames[1:] {
		if f.Format != first.Format || f.Width != first.Width || f.Height != first.Height {
			tb.Fatalf("SourceClip: frame %d is %dx%d %s, want %dx%d %s",
				i+1, f.Width, f.Height, f.Format, first.Width, first.Height, first.Format)
		}
	}
	clip, err := graph.Source(g, first.Width, first.Height, first.Format, len(frames), func(n int) (*graph.Frame, error) {
		return frames[n], nil
	})
	if err != nil {
		tb.Fatalf("Source() error = %v", err)
	}
	return clip
}

// MustBlank creates a blank clip, failing the test on error.
func MustBlank(tb testing.TB, g *graph.Graph, width, height int, format graph.Format, length int) graph.Clip {
	tb.Helper()
	clip, err := graph.BlankClip(g, width, height, format, length)
	if err != nil {
		tb.Fatalf("BlankClip() error = %v", err)
	}
	return clip
}
