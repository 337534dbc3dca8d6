package deband

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-deband/filter/depth"
	"github.com/cwbudde/algo-deband/filter/resize"
	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

const (
	maxLFScale = 16

	defaultLFRadius    = 30
	defaultLFThreshold = 80
	defaultLFScale     = 2
)

// LFOption mutates the low-frequency recipe configuration.
type LFOption func(*lfConfig) error

type lfConfig struct {
	radius      int
	thresholds  []int
	grain       []int
	scale       int
	scaler      resize.Scaler
	upscaler    resize.Scaler
	hasUpscaler bool
	debander    Debander
}

func defaultLFConfig() lfConfig {
	return lfConfig{
		radius:     defaultLFRadius,
		thresholds: []int{defaultLFThreshold},
		grain:      []int{0},
		scale:      defaultLFScale,
		scaler:     resize.Spline64,
	}
}

// WithLFRadius sets the banding detection range at the reduced resolution.
// Range: [1, 64]. The default is 30.
func WithLFRadius(radius int) LFOption {
	return func(cfg *lfConfig) error {
		if err := checkF3kdbRadius(radius); err != nil {
			return err
		}
		cfg.radius = radius
		return nil
	}
}

// WithLFThresholds sets the per-plane detection thresholds. The default
// is 80.
func WithLFThresholds(thresholds ...int) LFOption {
	return func(cfg *lfConfig) error {
		if err := checkF3kdbThresholds(thresholds); err != nil {
			return err
		}
		cfg.thresholds = append([]int(nil), thresholds...)
		return nil
	}
}

// WithLFGrain adds grain in the debanding pass (luma and chroma amounts).
// The default is no grain.
func WithLFGrain(grain ...int) LFOption {
	return func(cfg *lfConfig) error {
		if err := checkF3kdbGrain(grain); err != nil {
			return err
		}
		if len(grain) > 2 {
			return fmt.Errorf("deband: lfdeband: grain takes at most 2 values, got %d", len(grain))
		}
		cfg.grain = append([]int(nil), grain...)
		return nil
	}
}

// WithLFScale sets the resolution divider for the processing pass.
// Range: [1, 16]. The default is 2.
func WithLFScale(scale int) LFOption {
	return func(cfg *lfConfig) error {
		if scale < 1 || scale > maxLFScale {
			return fmt.Errorf("deband: lfdeband: scale must be in [1, %d]: %d", maxLFScale, scale)
		}
		cfg.scale = scale
		return nil
	}
}

// WithLFScaler sets the kernel used to downscale the clip. The default is
// Spline64.
func WithLFScaler(s resize.Scaler) LFOption {
	return func(cfg *lfConfig) error {
		if s.Kernel().Weight == nil {
			return fmt.Errorf("deband: lfdeband: zero scaler: %w", graph.ErrBadArgument)
		}
		cfg.scaler = s
		return nil
	}
}

// WithLFUpscaler sets the kernel used to bring the correction back to full
// size. The default is the downscaling kernel.
func WithLFUpscaler(s resize.Scaler) LFOption {
	return func(cfg *lfConfig) error {
		if s.Kernel().Weight == nil {
			return fmt.Errorf("deband: lfdeband: zero upscaler: %w", graph.ErrBadArgument)
		}
		cfg.upscaler = s
		cfg.hasUpscaler = true
		return nil
	}
}

// WithLFDebander debands through a custom debander instead of a default
// F3kdb.
func WithLFDebander(d Debander) LFOption {
	return func(cfg *lfConfig) error {
		if d == nil {
			return fmt.Errorf("deband: lfdeband: nil debander: %w", graph.ErrBadArgument)
		}
		cfg.debander = d
		return nil
	}
}

// LFDeband debands at a reduced resolution and upscales only the
// correction: the clip is downscaled (dimensions snapped to the
// subsampling grid), debanded there, and the difference between the two is
// scaled back up and merged onto the source. Banding lives in low
// frequencies, so the shrunken pass catches it while full-resolution
// detail never leaves the source.
func LFDeband(clip graph.Clip, opts ...LFOption) (graph.Clip, error) {
	const name = "deband: lfdeband"
	if err := graph.CheckFixed(clip, name); err != nil {
		return graph.Clip{}, err
	}

	cfg := defaultLFConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return graph.Clip{}, err
		}
	}
	if !cfg.hasUpscaler {
		cfg.upscaler = cfg.scaler
	}

	debander := cfg.debander
	if debander == nil {
		var err error
		if debander, err = NewF3kdb(); err != nil {
			return graph.Clip{}, err
		}
	}

	format := clip.Format()
	wss, hss := 1<<format.SubW, 1<<format.SubH
	w, h := clip.Width(), clip.Height()
	dw := int(math.Round(float64(w) / float64(cfg.scale)))
	dh := int(math.Round(float64(h) / float64(cfg.scale)))
	dw -= dw % wss
	dh -= dh % hss
	if dw < wss || dh < hss {
		return graph.Clip{}, fmt.Errorf("%s: %dx%d too small for scale %d", name, w, h, cfg.scale)
	}

	work, bits, err := depth.Expect(clip, 16)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}

	down, err := cfg.scaler.Scale(work, dw, dh)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	deband, err := debander.Deband(down, Params{
		Radius:     cfg.radius,
		Thresholds: cfg.thresholds,
		Grain:      cfg.grain,
	})
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	correction, err := std.MakeDiff(deband, down)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	full, err := cfg.upscaler.Scale(correction, w, h)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	out, err := std.MergeDiff(work, full)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	out, err = depth.To(out, bits)
	if err != nil {
		return graph.Clip{}, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
