package graph

import "testing"

func TestNewFramePlaneSizes(t *testing.T) {
	f, err := NewFrame(YUV420P8, 640, 480)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	if len(f.Planes) != 3 {
		t.Fatalf("planes = %d, want 3", len(f.Planes))
	}
	if len(f.Planes[0]) != 640*480 {
		t.Errorf("luma size = %d, want %d", len(f.Planes[0]), 640*480)
	}
	if len(f.Planes[1]) != 320*240 {
		t.Errorf("chroma size = %d, want %d", len(f.Planes[1]), 320*240)
	}
	w, h := f.PlaneDims(2)
	if w != 320 || h != 240 {
		t.Errorf("PlaneDims(2) = %dx%d, want 320x240", w, h)
	}
}

func TestNewFrameValidation(t *testing.T) {
	if _, err := NewFrame(Format{}, 64, 64); err == nil {
		t.Error("NewFrame() with variable format should fail")
	}
	if _, err := NewFrame(Gray8, 0, 64); err == nil {
		t.Error("NewFrame() with zero width should fail")
	}
	if _, err := NewFrame(YUV420P8, 63, 64); err == nil {
		t.Error("NewFrame() with odd width for 420 should fail")
	}
}

func TestFrameClone(t *testing.T) {
	f, err := NewFrame(Gray8, 4, 4)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	f.Planes[0][0] = 100

	c := f.Clone()
	c.Planes[0][0] = 200

	if f.Planes[0][0] != 100 {
		t.Error("Clone() shares plane storage with the original")
	}
	if c.Format != f.Format || c.Width != f.Width || c.Height != f.Height {
		t.Error("Clone() lost frame properties")
	}
}
