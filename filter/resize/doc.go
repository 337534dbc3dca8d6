// Package resize provides kernel-based clip resampling with optional bit
// depth and sample type conversion.
//
// Available kernels:
//
//	scaler        support   character
//	Point         0.5       nearest neighbour
//	Bilinear      1         triangle
//	Spline16      2         interpolating cubic spline, 4 taps
//	Spline36      3         interpolating cubic spline, 6 taps
//	Spline64      4         interpolating cubic spline, 8 taps
//	Lanczos(n)    n         windowed sinc
//	Bicubic(b,c)  2         two-parameter cubic family
//
// Scaling never converts between color families or subsampling layouts;
// WithFormat and WithTargetBits change storage precision only. Depth
// reductions dither with error diffusion unless overridden through
// WithDither. When downscaling, executors stretch the kernel by the scale
// ratio for antialiasing.
package resize
