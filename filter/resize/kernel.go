package resize

import (
	"fmt"
	"math"
)

// Kernel is a finite-support resampling kernel: a symmetric weight function
// and the half-width beyond which it is zero. Weight is sampled at distances
// from the destination sample's source position; implementations need not
// normalize, the executor normalizes each tap window.
type Kernel struct {
	Name    string
	Support float64
	Weight  func(x float64) float64
}

// PointKernel is nearest-neighbour sampling (a width-1 box).
func PointKernel() Kernel {
	return Kernel{
		Name:    "Point",
		Support: 0.5,
		Weight: func(x float64) float64 {
			if math.Abs(x) <= 0.5 {
				return 1
			}
			return 0
		},
	}
}

// BilinearKernel is the triangle (tent) kernel.
func BilinearKernel() Kernel {
	return Kernel{
		Name:    "Bilinear",
		Support: 1,
		Weight: func(x float64) float64 {
			x = math.Abs(x)
			if x < 1 {
				return 1 - x
			}
			return 0
		},
	}
}

// Spline16Kernel is the 4-tap interpolating cubic spline.
func Spline16Kernel() Kernel {
	return Kernel{
		Name:    "Spline16",
		Support: 2,
		Weight: func(x float64) float64 {
			x = math.Abs(x)
			switch {
			case x < 1:
				return ((x-9.0/5.0)*x-1.0/5.0)*x + 1
			case x < 2:
				x -= 1
				return ((-1.0/3.0*x+4.0/5.0)*x - 7.0/15.0) * x
			default:
				return 0
			}
		},
	}
}

// Spline36Kernel is the 6-tap interpolating cubic spline.
func Spline36Kernel() Kernel {
	return Kernel{
		Name:    "Spline36",
		Support: 3,
		Weight: func(x float64) float64 {
			x = math.Abs(x)
			switch {
			case x < 1:
				return ((13.0/11.0*x-453.0/209.0)*x-3.0/209.0)*x + 1
			case x < 2:
				x -= 1
				return ((-6.0/11.0*x+270.0/209.0)*x - 156.0/209.0) * x
			case x < 3:
				x -= 2
				return ((1.0/11.0*x-45.0/209.0)*x + 26.0/209.0) * x
			default:
				return 0
			}
		},
	}
}

// Spline64Kernel is the 8-tap interpolating cubic spline, the default
// scaler of the low-frequency debanding pipeline.
func Spline64Kernel() Kernel {
	return Kernel{
		Name:    "Spline64",
		Support: 4,
		Weight: func(x float64) float64 {
			x = math.Abs(x)
			switch {
			case x < 1:
				return ((49.0/41.0*x-6387.0/2911.0)*x-3.0/2911.0)*x + 1
			case x < 2:
				x -= 1
				return ((-24.0/41.0*x+4032.0/2911.0)*x - 2328.0/2911.0) * x
			case x < 3:
				x -= 2
				return ((6.0/41.0*x-1008.0/2911.0)*x + 582.0/2911.0) * x
			case x < 4:
				x -= 3
				return ((-1.0/41.0*x+168.0/2911.0)*x - 97.0/2911.0) * x
			default:
				return 0
			}
		},
	}
}

// LanczosKernel is the sinc-windowed sinc kernel with the given tap count
// (support). Taps must be in [1, 16].
func LanczosKernel(taps int) (Kernel, error) {
	if taps < 1 || taps > 16 {
		return Kernel{}, fmt.Errorf("resize: lanczos taps must be in [1, 16]: %d", taps)
	}
	a := float64(taps)
	return Kernel{
		Name:    "Lanczos",
		Support: a,
		Weight: func(x float64) float64 {
			x = math.Abs(x)
			if x >= a {
				return 0
			}
			return sinc(x) * sinc(x/a)
		},
	}, nil
}

// BicubicKernel is the two-parameter cubic family (b=1/3, c=1/3 is
// Mitchell-Netravali; b=0, c=0.5 is Catmull-Rom).
func BicubicKernel(b, c float64) (Kernel, error) {
	if math.IsNaN(b) || math.IsInf(b, 0) || math.IsNaN(c) || math.IsInf(c, 0) {
		return Kernel{}, fmt.Errorf("resize: bicubic parameters must be finite: b=%g c=%g", b, c)
	}
	return Kernel{
		Name:    "Bicubic",
		Support: 2,
		Weight: func(x float64) float64 {
			x = math.Abs(x)
			switch {
			case x < 1:
				return ((12-9*b-6*c)*x*x*x + (-18+12*b+6*c)*x*x + (6 - 2*b)) / 6
			case x < 2:
				return ((-b-6*c)*x*x*x + (6*b+30*c)*x*x + (-12*b-48*c)*x + (8*b + 24*c)) / 6
			default:
				return 0
			}
		},
	}, nil
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}
