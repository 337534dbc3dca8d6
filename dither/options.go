package dither

import (
	"fmt"
	"math"
)

// Option mutates quantizer construction parameters.
type Option func(*config) error

type config struct {
	seed      uint64
	hasSeed   bool
	amplitude float64
}

func defaultConfig() config {
	return config{amplitude: 1.0}
}

// WithSeed fixes the random dither noise sequence, making quantization
// reproducible. Without a seed every quantizer draws its own sequence.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		cfg.hasSeed = true
		return nil
	}
}

// WithAmplitude scales the random dither noise in quantization steps.
// Range: [0, 4]. Ordered and error-diffusion modes ignore it.
func WithAmplitude(amplitude float64) Option {
	return func(cfg *config) error {
		if amplitude < 0 || amplitude > 4 || math.IsNaN(amplitude) {
			return fmt.Errorf("dither: amplitude must be in [0, 4]: %f", amplitude)
		}
		cfg.amplitude = amplitude
		return nil
	}
}
