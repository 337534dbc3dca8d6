package engine

import (
	"github.com/cwbudde/algo-deband/filter/blur"
	"github.com/cwbudde/algo-deband/filter/resize"
	"github.com/cwbudde/algo-deband/filter/std"
	"github.com/cwbudde/algo-deband/graph"
)

// resampleKernels lists the kernel names the resize ops are registered
// under; the op name is resize.OpPrefix plus the kernel name.
var resampleKernels = []string{
	"Point", "Bilinear", "Spline16", "Spline36", "Spline64", "Lanczos", "Bicubic",
}

// Builtin returns a registry pre-populated with reference renderers for
// every op the graph and filter packages construct. External plugin ops
// (f3kdb.Deband, neo_f3kdb.Deband, placebo.Deband) are deliberately absent;
// embedders register their own bindings for those.
func Builtin() *Registry {
	r := NewRegistry()

	r.MustRegister(graph.OpBlankClip, opBlankClip)
	r.MustRegister(graph.OpSource, opSource)

	r.MustRegister(std.OpExpr, opExpr)
	r.MustRegister(std.OpConvolution, opConvolution)
	r.MustRegister(std.OpBoxBlur, opBoxBlur)
	r.MustRegister(std.OpMakeDiff, opMakeDiff)
	r.MustRegister(std.OpMergeDiff, opMergeDiff)
	r.MustRegister(std.OpMaskedMerge, opMaskedMerge)
	r.MustRegister(std.OpBinarize, opBinarize)
	r.MustRegister(std.OpMaximum, opMaximum)
	r.MustRegister(std.OpMinimum, opMinimum)

	r.MustRegister(blur.OpRemoveGrain, opRemoveGrain)

	for _, name := range resampleKernels {
		r.MustRegister(resize.OpPrefix+name, opResample)
	}

	return r
}
